package game

import (
	"testing"

	"github.com/m-giraud/ascent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNextRank(t *testing.T) {
	col := &Column{Suit: models.Hearts, FaceCards: map[models.Rank]*models.Card{}}

	next, ok := col.NextRank()
	require.True(t, ok)
	assert.Equal(t, models.RankAce, next)

	for _, r := range models.SequenceRanks {
		col.Cards = append(col.Cards, models.NewStandardCard(models.Hearts, r))
	}
	_, ok = col.NextRank()
	assert.False(t, ok)
	assert.True(t, col.IsComplete())
}

func TestSplitActivatorPair(t *testing.T) {
	ace := models.NewStandardCard(models.Hearts, models.RankAce)
	seven := models.NewStandardCard(models.Spades, models.RankSeven)
	joker := models.NewJoker(models.Red)

	target, activator, ok := splitActivatorPair([]*models.Card{seven, ace})
	require.True(t, ok)
	assert.Equal(t, ace.ID, target.ID)
	assert.Equal(t, seven.ID, activator.ID)

	// Two activators don't split; a Seven paired with a Joker is ambiguous.
	_, _, ok = splitActivatorPair([]*models.Card{seven, joker})
	assert.False(t, ok)
	_, _, ok = splitActivatorPair([]*models.Card{ace})
	assert.False(t, ok)
}

func TestUnlockColumn(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	ace := models.NewStandardCard(models.Hearts, models.RankAce)
	seven := models.NewStandardCard(models.Spades, models.RankSeven)
	g.Player.Hand = append(g.Player.Hand, ace, seven)

	selectCards(t, g, ace, seven)
	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.Equal(t, "game.column.unlocked", msg)

	col := g.Columns[models.Hearts]
	require.Len(t, col.Cards, 1)
	assert.Equal(t, ace.ID, col.Cards[0].ID)
	assert.True(t, col.HasLuckyCard)
	require.NotNil(t, col.ReserveSuit)
	assert.Equal(t, seven.ID, col.ReserveSuit.ID)

	_, _, found := g.Player.FindCard(ace.ID)
	assert.False(t, found)
	assert.Equal(t, 2, g.PlayedCardsLastTurn)
	assert.True(t, g.HasPlayedAction)
	assert.Empty(t, g.SelectedCards)
}

func TestUnlockRejectsWrongSuit(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	ace := models.NewStandardCard(models.Hearts, models.RankAce)
	seven := models.NewStandardCard(models.Spades, models.RankSeven)
	g.Player.Hand = append(g.Player.Hand, ace, seven)
	handBefore := len(g.Player.Hand)

	selectCards(t, g, ace, seven)
	msg, ok := g.handlePlaceOnColumn(models.Spades)
	assert.False(t, ok)
	assert.Equal(t, "game.placement.rejected", msg)

	// Full-or-nothing: nothing moved, nothing spent.
	assert.Len(t, g.Player.Hand, handBefore)
	assert.Empty(t, g.Columns[models.Spades].Cards)
	assert.False(t, g.HasPlayedAction)
	assert.Len(t, g.SelectedCards, 2)
}

func TestSequencePlacement(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	col := g.Columns[models.Hearts]
	col.HasLuckyCard = true
	col.Cards = []*models.Card{models.NewStandardCard(models.Hearts, models.RankAce)}

	two := models.NewStandardCard(models.Hearts, models.RankTwo)
	g.Player.Hand = append(g.Player.Hand, two)
	selectCards(t, g, two)

	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.Equal(t, "game.card.placed", msg)
	assert.Len(t, col.Cards, 2)
	assert.Equal(t, 1, g.PlayedCardsLastTurn)
}

func TestSequenceRejectsWrongRank(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	col := g.Columns[models.Hearts]
	col.HasLuckyCard = true
	col.Cards = []*models.Card{models.NewStandardCard(models.Hearts, models.RankAce)}

	three := models.NewStandardCard(models.Hearts, models.RankThree)
	g.Player.Hand = append(g.Player.Hand, three)
	selectCards(t, g, three)

	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	assert.False(t, ok)
	assert.Equal(t, "game.placement.rejected", msg)
	assert.Len(t, col.Cards, 1)
	_, _, found := g.Player.FindCard(three.ID)
	assert.True(t, found)
}

func TestSequenceRejectsLockedColumn(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	// Column was never unlocked: a bare Ace cannot start the sequence.
	ace := models.NewStandardCard(models.Diamonds, models.RankAce)
	g.Player.Hand = append(g.Player.Hand, ace)
	selectCards(t, g, ace)

	msg, ok := g.handlePlaceOnColumn(models.Diamonds)
	assert.False(t, ok)
	assert.Equal(t, "game.placement.rejected", msg)
	assert.Empty(t, g.Columns[models.Diamonds].Cards)
}

func TestQueenClaimHealAmounts(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	queen := models.NewStandardCard(models.Clubs, models.RankQueen)
	seven := models.NewStandardCard(models.Hearts, models.RankSeven)
	g.Player.Hand = append(g.Player.Hand, queen, seven)

	selectCards(t, g, queen, seven)
	msg, ok := g.handlePlaceOnColumn(models.Spades)
	require.True(t, ok, msg)
	assert.Equal(t, "game.queen.claimed", msg)
	assert.Equal(t, models.StartingHealth+2, g.Player.Health)
	assert.Equal(t, models.StartingHealth+2, g.Player.MaxHealth)
	assert.Len(t, g.Player.DiscardPile, 2)

	// A Joker activator heals twice as much.
	toActionPhase(g)
	queen2 := models.NewStandardCard(models.Diamonds, models.RankQueen)
	joker := models.NewJoker(models.Red)
	g.Player.Hand = append(g.Player.Hand, queen2, joker)
	selectCards(t, g, queen2, joker)
	msg, ok = g.handlePlaceOnColumn(models.Spades)
	require.True(t, ok, msg)
	assert.Equal(t, models.StartingHealth+6, g.Player.Health)
	assert.Equal(t, models.StartingHealth+6, g.Player.MaxHealth)
}

func TestFaceClaim(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	jack := models.NewStandardCard(models.Hearts, models.RankJack)
	joker := models.NewJoker(models.Black)
	g.Player.Hand = append(g.Player.Hand, jack, joker)

	selectCards(t, g, jack, joker)
	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.Equal(t, "game.face.claimed", msg)

	col := g.Columns[models.Hearts]
	require.NotNil(t, col.FaceCards[models.RankJack])
	assert.Equal(t, jack.ID, col.FaceCards[models.RankJack].ID)
	assert.Equal(t, joker.ID, g.Player.DiscardPile[len(g.Player.DiscardPile)-1].ID)
	assert.Empty(t, col.Cards, "face slots are independent of the sequence")
}

func TestSevenAutoPlaceReturnsParkedCard(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	col := g.Columns[models.Hearts]
	col.HasLuckyCard = true
	for _, r := range models.SequenceRanks[:6] {
		col.Cards = append(col.Cards, models.NewStandardCard(models.Hearts, r))
	}
	parked := models.NewJoker(models.Red)
	col.ReserveSuit = parked

	seven := models.NewStandardCard(models.Hearts, models.RankSeven)
	g.Player.Reserve[0] = seven

	selectCards(t, g, seven)
	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.Equal(t, "game.seven.placed", msg)

	assert.Len(t, col.Cards, 7)
	assert.Equal(t, seven.ID, col.Cards[6].ID)
	assert.Nil(t, col.ReserveSuit)

	// The parked card lands in the exact zone the Seven vacated.
	_, zone, found := g.Player.FindCard(parked.ID)
	require.True(t, found)
	assert.Equal(t, models.ZoneReserve, zone)
}

func TestActivatorExchange(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	col := g.Columns[models.Spades]
	parked := models.NewStandardCard(models.Spades, models.RankSeven)
	col.ReserveSuit = parked

	joker := models.NewJoker(models.Black)
	g.Player.Hand = append(g.Player.Hand, joker)

	selectCards(t, g, joker)
	msg, ok := g.handlePlaceOnColumn(models.Spades)
	require.True(t, ok, msg)
	assert.Equal(t, "game.activator.exchanged", msg)

	assert.Equal(t, joker.ID, col.ReserveSuit.ID)
	_, zone, found := g.Player.FindCard(parked.ID)
	require.True(t, found)
	assert.Equal(t, models.ZoneHand, zone)
}

func TestActivatorParking(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	seven := models.NewStandardCard(models.Diamonds, models.RankSeven)
	g.Player.Hand = append(g.Player.Hand, seven)

	selectCards(t, g, seven)
	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.Equal(t, "game.activator.parked", msg)
	assert.Equal(t, seven.ID, g.Columns[models.Hearts].ReserveSuit.ID)
}

func TestJokerNeverSequencesDirectly(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	col := g.Columns[models.Hearts]
	col.HasLuckyCard = true
	col.Cards = []*models.Card{models.NewStandardCard(models.Hearts, models.RankAce)}

	joker := models.NewJoker(models.Red)
	g.Player.Hand = append(g.Player.Hand, joker)
	selectCards(t, g, joker)

	// With the reserve-suit slot empty the Joker parks instead of taking
	// the next sequence position.
	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.Equal(t, "game.activator.parked", msg)
	assert.Len(t, col.Cards, 1)
}

// internal/game/game_test.go
package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = append(mb.events, ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = nil
}

func (mb *mockBroadcaster) lastEvent() *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.events) == 0 {
		return nil
	}
	return &mb.events[len(mb.events)-1]
}

func (mb *mockBroadcaster) eventsOfType(t GameEventType) []GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []GameEvent
	for _, ev := range mb.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// setupTestGame builds a fresh session with a mock broadcaster attached.
func setupTestGame(t *testing.T) (*AscentGame, *mockBroadcaster) {
	t.Helper()
	owner := &models.User{ID: uuid.New(), Username: "tester"}
	g := NewAscentGame(owner)
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	return g, mb
}

// startTestGame stages the two reserve cards and leaves setup.
func startTestGame(t *testing.T, g *AscentGame) {
	t.Helper()
	for i := 0; i < models.MaxReserveSize; i++ {
		msg, ok := g.handleMoveToReserve(g.Player.Hand[0].ID)
		require.True(t, ok, msg)
	}
	msg, ok := g.handleStart()
	require.True(t, ok, msg)
}

// toActionPhase forces the session into a fresh Action phase with the turn's
// discard and draw obligations already settled.
func toActionPhase(g *AscentGame) {
	g.Phase = PhaseAction
	g.HasDiscarded = true
	g.HasDrawn = true
	g.HasPlayedAction = false
	g.SelectedCards = nil
}

func selectCards(t *testing.T, g *AscentGame, cards ...*models.Card) {
	t.Helper()
	for _, c := range cards {
		msg, ok := g.handleSelectCard(c.ID)
		require.True(t, ok, msg)
	}
}

// countAllCards sums every zone a card can occupy.
func countAllCards(g *AscentGame) int {
	n := len(g.Deck) + len(g.Player.Hand) + len(g.Player.Reserve) + len(g.Player.DiscardPile)
	for _, col := range g.Columns {
		n += col.CardCount()
	}
	return n
}

func TestNewGameDeal(t *testing.T) {
	g, _ := setupTestGame(t)

	assert.Equal(t, PhaseSetup, g.Phase)
	assert.Equal(t, 1, g.Turn)
	assert.Equal(t, models.StartingHealth, g.Player.Health)
	assert.Equal(t, models.StartingHealth, g.Player.MaxHealth)

	require.Len(t, g.Player.Hand, 7)
	jokers := 0
	for _, c := range g.Player.Hand {
		if c.IsJoker() {
			jokers++
		}
	}
	assert.Equal(t, 2, jokers, "both jokers are dealt with the opening hand")
	assert.Len(t, g.Deck, DeckSize-7)
	assert.Empty(t, g.Player.Reserve)
	assert.Equal(t, DeckSize, countAllCards(g))
}

func TestStartRequiresStagedReserve(t *testing.T) {
	g, _ := setupTestGame(t)

	msg, ok := g.handleStart()
	assert.False(t, ok)
	assert.Equal(t, "game.rejected.reserve_not_staged", msg)

	startTestGame(t, g)
	assert.Len(t, g.Player.Reserve, models.MaxReserveSize)
	assert.Len(t, g.Player.Hand, models.MaxHandSize)

	// A full seven-card holding opens the turn in Discard.
	assert.Equal(t, PhaseDiscard, g.Phase)
	assert.False(t, g.HasDiscarded)
}

func TestHandleCommandOwnerOnly(t *testing.T) {
	g, _ := setupTestGame(t)

	res := g.HandleCommand(uuid.New(), models.GameCommand{Type: "draw"})
	assert.False(t, res.Applied)
	assert.Equal(t, "game.rejected.not_owner", res.Message)
	require.NotNil(t, res.State)
}

func TestHandleCommandRouting(t *testing.T) {
	g, mb := setupTestGame(t)
	startTestGame(t, g)
	require.Equal(t, PhaseDiscard, g.Phase)

	target := g.Player.Hand[0]
	res := g.HandleCommand(g.OwnerID, models.GameCommand{
		Type:    "discard",
		Payload: map[string]interface{}{"cardId": target.ID.String()},
	})
	require.True(t, res.Applied, res.Message)
	assert.Equal(t, "game.discard.done", res.Message)
	assert.Equal(t, PhaseDraw, res.State.Phase)

	ev := mb.lastEvent()
	require.NotNil(t, ev)
	assert.Equal(t, EventCommandApplied, ev.Type)
	require.NotNil(t, ev.State)
	assert.Equal(t, PhaseDraw, ev.State.Phase)

	// Unknown and malformed commands reject without events.
	mb.clear()
	res = g.HandleCommand(g.OwnerID, models.GameCommand{Type: "nope"})
	assert.False(t, res.Applied)
	assert.Equal(t, "game.rejected.unknown_command", res.Message)
	res = g.HandleCommand(g.OwnerID, models.GameCommand{Type: "draw", Payload: nil})
	// draw carries no payload, so this one is a legal command
	require.True(t, res.Applied, res.Message)
	assert.Len(t, mb.eventsOfType(EventCommandApplied), 1)
}

func TestDiscardThenDrawCycle(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)

	msg, ok := g.handleDiscard(g.Player.Hand[0].ID)
	require.True(t, ok, msg)
	assert.Equal(t, PhaseDraw, g.Phase)
	assert.True(t, g.HasDiscarded)
	assert.Len(t, g.Player.DiscardPile, 1)

	// Nothing was played last turn, so the draw refills a single card.
	deckBefore := len(g.Deck)
	msg, ok = g.handleDraw()
	require.True(t, ok, msg)
	assert.Equal(t, PhaseAction, g.Phase)
	assert.Equal(t, models.MaxTotalCards, g.Player.TotalCards())
	assert.Equal(t, deckBefore-1, len(g.Deck))

	// Draw is once per turn.
	msg, ok = g.handleDraw()
	assert.False(t, ok)
	assert.Equal(t, "game.rejected.already_drawn", msg)

	assert.Equal(t, DeckSize, countAllCards(g))
}

func TestDrawCountFollowsCardsPlayed(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)

	// Pretend two cards left play last turn and the player holds five.
	g.Player.DiscardPile = append(g.Player.DiscardPile, g.Player.Hand[0], g.Player.Hand[1])
	g.Player.Hand = g.Player.Hand[2:]
	g.Phase = PhaseDraw
	g.HasDiscarded = true
	g.PlayedCardsLastTurn = 2

	msg, ok := g.handleDraw()
	require.True(t, ok, msg)
	assert.Equal(t, models.MaxTotalCards, g.Player.TotalCards())
	assert.Equal(t, 0, g.PlayedCardsLastTurn, "deficit is consumed by the draw")
}

func TestDrawRecyclesDiscardPile(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)

	// Exhaust the deck into the discard pile.
	g.Player.DiscardPile = append(g.Player.DiscardPile, g.Deck...)
	g.Deck = nil
	discarded := g.Player.Hand[0]
	g.Player.DiscardPile = append(g.Player.DiscardPile, discarded)
	g.Player.Hand = g.Player.Hand[1:]
	g.Phase = PhaseDraw
	g.HasDiscarded = true

	msg, ok := g.handleDraw()
	require.True(t, ok, msg)
	assert.Equal(t, models.MaxTotalCards, g.Player.TotalCards())
	assert.Empty(t, g.Player.DiscardPile, "recycle consumes the discard pile")
	assert.NotEmpty(t, g.Deck)
	assert.Equal(t, DeckSize, countAllCards(g))
}

func TestJokerHeal(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	joker := models.NewJoker(models.Red)
	g.Player.Hand = append(g.Player.Hand, joker)

	msg, ok := g.handleJoker(joker.ID, JokerModeHeal)
	require.True(t, ok, msg)
	assert.Equal(t, models.StartingHealth+3, g.Player.Health)
	assert.Equal(t, models.StartingHealth+3, g.Player.MaxHealth)
	assert.True(t, g.HasPlayedAction)
	assert.Equal(t, 1, g.PlayedCardsLastTurn)
	assert.Equal(t, joker.ID, g.Player.DiscardPile[len(g.Player.DiscardPile)-1].ID)
}

func TestJokerAttackBroadcastsOnly(t *testing.T) {
	g, mb := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)
	mb.clear()

	joker := models.NewJoker(models.Black)
	g.Player.Hand = append(g.Player.Hand, joker)

	msg, ok := g.handleJoker(joker.ID, JokerModeAttack)
	require.True(t, ok, msg)
	assert.Equal(t, models.StartingHealth, g.Player.Health, "attack never touches local health")

	attacks := mb.eventsOfType(EventJokerAttack)
	require.Len(t, attacks, 1)
	assert.Equal(t, g.ID, attacks[0].GameID)
}

func TestSkipActionSpendsTheTurn(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	msg, ok := g.handleSkipAction()
	require.True(t, ok, msg)
	assert.True(t, g.HasPlayedAction)

	msg, ok = g.handleSkipAction()
	assert.False(t, ok)
	assert.Equal(t, "game.rejected.action_spent", msg)
}

func TestStrategicReshuffle(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	require.Equal(t, PhaseDiscard, g.Phase)

	g.Player.DiscardPile = append(g.Player.DiscardPile, models.NewStandardCard(models.Hearts, models.RankTwo))
	before := countAllCards(g)

	msg, ok := g.handleStrategicReshuffle()
	require.True(t, ok, msg)
	assert.Len(t, g.Player.Hand, models.MaxHandSize)
	assert.Empty(t, g.Player.DiscardPile)
	assert.Equal(t, PhaseAction, g.Phase)
	assert.True(t, g.HasDiscarded)
	assert.True(t, g.HasDrawn)
	assert.False(t, g.HasPlayedAction, "first reshuffle of the session is free")
	assert.True(t, g.FreeReshuffleUsed)
	assert.True(t, g.Player.HasUsedStrategicShuffle)
	assert.Equal(t, before, countAllCards(g))

	// Once per turn.
	g.Phase = PhaseDiscard
	msg, ok = g.handleStrategicReshuffle()
	assert.False(t, ok)
	assert.Equal(t, "game.rejected.already_reshuffled", msg)

	// A later turn's reshuffle spends the action.
	g.Player.HasUsedStrategicShuffle = false
	g.Phase = PhaseDiscard
	msg, ok = g.handleStrategicReshuffle()
	require.True(t, ok, msg)
	assert.True(t, g.HasPlayedAction)
}

func TestPassTurnGating(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	msg, ok := g.handlePassTurn()
	assert.False(t, ok)
	assert.Equal(t, "game.rejected.action_pending", msg)

	_, ok = g.handleSkipAction()
	require.True(t, ok)

	turnBefore := g.Turn
	g.Player.HasUsedStrategicShuffle = true
	msg, ok = g.handlePassTurn()
	require.True(t, ok, msg)
	assert.Equal(t, turnBefore+1, g.Turn)
	assert.False(t, g.HasPlayedAction)
	assert.False(t, g.Player.HasUsedStrategicShuffle)

	// Full holdings reopen in Discard with the obligation pending.
	assert.Equal(t, PhaseDiscard, g.Phase)
	assert.False(t, g.HasDiscarded)
	assert.False(t, g.HasDrawn)
}

func TestPassTurnSkipsDiscardUnderBudget(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	// Drop below the card budget, then close the turn.
	g.Player.DiscardPile = append(g.Player.DiscardPile, g.Player.Hand[0])
	g.Player.Hand = g.Player.Hand[1:]
	_, ok := g.handleSkipAction()
	require.True(t, ok)

	msg, ok := g.handlePassTurn()
	require.True(t, ok, msg)
	assert.Equal(t, PhaseDraw, g.Phase)
	assert.True(t, g.HasDiscarded, "a turn opening in Draw has no discard obligation")
}

func TestSurrenderEndsGame(t *testing.T) {
	g, mb := setupTestGame(t)
	startTestGame(t, g)
	mb.clear()

	msg, ok := g.handleSurrender()
	require.True(t, ok, msg)
	assert.True(t, g.GameOver)
	assert.Equal(t, OutcomeSurrendered, g.Outcome)

	ends := mb.eventsOfType(EventGameEnd)
	require.Len(t, ends, 1)
	assert.Equal(t, OutcomeSurrendered, ends[0].Data["outcome"])

	res := g.HandleCommand(g.OwnerID, models.GameCommand{Type: "draw"})
	assert.False(t, res.Applied)
	assert.Equal(t, "game.rejected.over", res.Message)
}

func TestApplyDamageEndsGameAtZero(t *testing.T) {
	g, mb := setupTestGame(t)
	startTestGame(t, g)
	mb.clear()

	g.ApplyDamage(3)
	assert.Equal(t, models.StartingHealth-3, g.Player.Health)
	assert.False(t, g.GameOver)

	g.ApplyDamage(100)
	assert.Equal(t, 0, g.Player.Health)
	assert.True(t, g.GameOver)
	assert.Equal(t, OutcomeLost, g.Outcome)
}

func TestWinWhenAllColumnsComplete(t *testing.T) {
	g, mb := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	// Hand-build three complete columns and one at [A..9].
	for _, suit := range models.Suits {
		col := g.Columns[suit]
		col.HasLuckyCard = true
		limit := len(models.SequenceRanks)
		if suit == models.Hearts {
			limit--
		}
		for i := 0; i < limit; i++ {
			col.Cards = append(col.Cards, models.NewStandardCard(suit, models.SequenceRanks[i]))
		}
	}
	finalCard := models.NewStandardCard(models.Hearts, models.RankTen)
	g.Player.Hand = append(g.Player.Hand, finalCard)
	mb.clear()

	selectCards(t, g, finalCard)
	msg, ok := g.handlePlaceOnColumn(models.Hearts)
	require.True(t, ok, msg)
	assert.True(t, g.GameOver)
	assert.Equal(t, OutcomeWon, g.Outcome)

	ends := mb.eventsOfType(EventGameEnd)
	require.Len(t, ends, 1)
	assert.Equal(t, OutcomeWon, ends[0].Data["outcome"])
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	// Park an activator so the column state is non-trivial.
	seven := models.NewStandardCard(models.Clubs, models.RankSeven)
	g.Player.Hand = append(g.Player.Hand, seven)
	selectCards(t, g, seven)
	msg, ok := g.handlePlaceOnColumn(models.Clubs)
	require.True(t, ok, msg)
	assert.Equal(t, "game.activator.parked", msg)

	snap := g.Snapshot()

	// Simulate the persistence boundary.
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var loaded Snapshot
	require.NoError(t, json.Unmarshal(data, &loaded))

	g2 := RestoreGame(&loaded)
	assert.Equal(t, g.ID, g2.ID)
	assert.Equal(t, g.OwnerID, g2.OwnerID)
	assert.Equal(t, g.Phase, g2.Phase)
	assert.Equal(t, g.Turn, g2.Turn)
	assert.Equal(t, g.Player.Health, g2.Player.Health)
	assert.Equal(t, g.Player.TotalCards(), g2.Player.TotalCards())
	assert.Equal(t, g.HasPlayedAction, g2.HasPlayedAction)
	require.NotNil(t, g2.Columns[models.Clubs].ReserveSuit)
	assert.Equal(t, seven.ID, g2.Columns[models.Clubs].ReserveSuit.ID)
	assert.Equal(t, countAllCards(g), countAllCards(g2))

	// The restored session keeps playing.
	g2.BroadcastFn = newMockBroadcaster().broadcastFn
	res := g2.HandleCommand(g2.OwnerID, models.GameCommand{Type: "passTurn"})
	assert.True(t, res.Applied, res.Message)
}

func TestSelectionLimits(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)
	toActionPhase(g)

	c1 := models.NewStandardCard(models.Hearts, models.RankTwo)
	c2 := models.NewStandardCard(models.Hearts, models.RankThree)
	c3 := models.NewStandardCard(models.Hearts, models.RankFour)
	g.Player.Hand = append(g.Player.Hand, c1, c2, c3)

	selectCards(t, g, c1, c2)
	msg, ok := g.handleSelectCard(c3.ID)
	assert.False(t, ok)
	assert.Equal(t, "game.select.limit", msg)

	msg, ok = g.handleSelectCard(c1.ID)
	assert.False(t, ok)
	assert.Equal(t, "game.select.duplicate", msg)

	msg, ok = g.handleDeselectCard(c1.ID)
	require.True(t, ok, msg)
	assert.Len(t, g.SelectedCards, 1)

	// Selection freezes once the action is spent.
	_, ok = g.handleSkipAction()
	require.True(t, ok)
	msg, ok = g.handleSelectCard(c1.ID)
	assert.False(t, ok)
	assert.Equal(t, "game.rejected.action_spent", msg)
}

func TestMoveAndExchangeBetweenZones(t *testing.T) {
	g, _ := setupTestGame(t)
	startTestGame(t, g)

	// Reserve is full after setup.
	msg, ok := g.handleMoveToReserve(g.Player.Hand[0].ID)
	assert.False(t, ok)
	assert.Equal(t, "game.reserve.full", msg)

	handCard := g.Player.Hand[0]
	reserveCard := g.Player.Reserve[0]
	msg, ok = g.handleExchange(handCard.ID, reserveCard.ID)
	require.True(t, ok, msg)
	_, zone, found := g.Player.FindCard(handCard.ID)
	require.True(t, found)
	assert.Equal(t, models.ZoneReserve, zone)
	_, zone, found = g.Player.FindCard(reserveCard.ID)
	require.True(t, found)
	assert.Equal(t, models.ZoneHand, zone)

	// Hand is full, so a plain move back is refused.
	msg, ok = g.handleMoveToHand(handCard.ID)
	assert.False(t, ok)
	assert.Equal(t, "game.hand.full", msg)
}

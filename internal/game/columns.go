package game

import (
	"github.com/m-giraud/ascent/internal/models"
)

// Column is one suit's board state: the ascending sequence, the two optional
// face-card slots, and the reserve-suit slot holding a parked activator.
// The parked activator is independent of the sequence; a column can hold one
// before its Ace is ever placed.
type Column struct {
	Suit         models.Suit                  `json:"suit"`
	Cards        []*models.Card               `json:"cards"`
	HasLuckyCard bool                         `json:"hasLuckyCard"`
	FaceCards    map[models.Rank]*models.Card `json:"faceCards"`
	ReserveSuit  *models.Card                 `json:"reserveSuitCard,omitempty"`
}

func newColumns() map[models.Suit]*Column {
	cols := make(map[models.Suit]*Column, len(models.Suits))
	for _, s := range models.Suits {
		cols[s] = &Column{
			Suit:      s,
			Cards:     []*models.Card{},
			FaceCards: map[models.Rank]*models.Card{},
		}
	}
	return cols
}

// NextRank returns the rank the sequence expects next, or false once the
// column holds the full A..10 run.
func (c *Column) NextRank() (models.Rank, bool) {
	if len(c.Cards) >= len(models.SequenceRanks) {
		return "", false
	}
	return models.SequenceRanks[len(c.Cards)], true
}

// IsComplete reports whether the full ascending run has been placed.
func (c *Column) IsComplete() bool {
	return len(c.Cards) >= len(models.SequenceRanks)
}

// CardCount counts every card physically sitting on the column, used by the
// card-conservation accounting.
func (c *Column) CardCount() int {
	n := len(c.Cards) + len(c.FaceCards)
	if c.ReserveSuit != nil {
		n++
	}
	return n
}

// placementRule is one row of the authoritative placement rule table. Rules
// are evaluated top to bottom against (selection shape, target column); the
// first match applies in full, or the whole command is rejected.
type placementRule struct {
	name  string
	match func(g *AscentGame, sel []*models.Card, col *Column) bool
	apply func(g *AscentGame, sel []*models.Card, col *Column) string
}

var placementRules = []placementRule{
	{"unlock", matchUnlock, applyUnlock},
	{"queen_claim", matchQueenClaim, applyQueenClaim},
	{"face_claim", matchFaceClaim, applyFaceClaim},
	{"seven_autoplace", matchSevenAutoPlace, applySevenAutoPlace},
	{"activator_exchange", matchActivatorExchange, applyActivatorExchange},
	{"sequence", matchSequence, applySequence},
	{"park_activator", matchParkActivator, applyParkActivator},
}

// resolvePlacement runs the selection against the rule table. It returns the
// status message key of the applied rule, or false when nothing matched and
// the column and player are untouched.
func (g *AscentGame) resolvePlacement(col *Column) (string, bool) {
	for _, rule := range placementRules {
		if rule.match(g, g.SelectedCards, col) {
			return rule.apply(g, g.SelectedCards, col), true
		}
	}
	return "", false
}

// splitActivatorPair splits a two-card selection into its non-activator
// target and its activator. Pairs with zero or two activators don't split.
func splitActivatorPair(sel []*models.Card) (target, activator *models.Card, ok bool) {
	if len(sel) != 2 {
		return nil, nil, false
	}
	a, b := sel[0], sel[1]
	switch {
	case a.IsActivator() && !b.IsActivator():
		return b, a, true
	case b.IsActivator() && !a.IsActivator():
		return a, b, true
	default:
		return nil, nil, false
	}
}

// Unlock: Ace of the column's suit plus an activator, on an empty column.
// The Ace seeds the sequence and the activator parks in the reserve-suit slot.
func matchUnlock(g *AscentGame, sel []*models.Card, col *Column) bool {
	target, _, ok := splitActivatorPair(sel)
	return ok &&
		target.Rank == models.RankAce &&
		target.Suit == col.Suit &&
		len(col.Cards) == 0 && !col.HasLuckyCard &&
		col.ReserveSuit == nil
}

func applyUnlock(g *AscentGame, sel []*models.Card, col *Column) string {
	ace, activator, _ := splitActivatorPair(sel)
	g.Player.RemoveCard(ace.ID)
	g.Player.RemoveCard(activator.ID)
	col.Cards = append(col.Cards, ace)
	col.HasLuckyCard = true
	col.ReserveSuit = activator
	return "game.column.unlocked"
}

// Queen claim: a Queen plus an activator, no suit constraint. Both cards are
// discarded and the player's health ceiling rises: +4 for a Joker activator,
// +2 for a Seven.
func matchQueenClaim(g *AscentGame, sel []*models.Card, col *Column) bool {
	target, _, ok := splitActivatorPair(sel)
	return ok && target.Rank == models.RankQueen
}

func applyQueenClaim(g *AscentGame, sel []*models.Card, col *Column) string {
	queen, activator, _ := splitActivatorPair(sel)
	amount := 2
	if activator.IsJoker() {
		amount = 4
	}
	g.Player.RemoveCard(queen.ID)
	g.Player.RemoveCard(activator.ID)
	g.discardCard(queen)
	g.discardCard(activator)
	g.heal(amount)
	return "game.queen.claimed"
}

// Face claim: a Jack or King of the column's suit plus an activator. The face
// card fills its slot regardless of sequence progress; the activator is spent
// to the discard pile.
func matchFaceClaim(g *AscentGame, sel []*models.Card, col *Column) bool {
	target, _, ok := splitActivatorPair(sel)
	return ok &&
		target.IsFaceCard() &&
		target.Suit == col.Suit &&
		col.FaceCards[target.Rank] == nil
}

func applyFaceClaim(g *AscentGame, sel []*models.Card, col *Column) string {
	face, activator, _ := splitActivatorPair(sel)
	g.Player.RemoveCard(face.ID)
	g.Player.RemoveCard(activator.ID)
	col.FaceCards[face.Rank] = face
	g.discardCard(activator)
	return "game.face.claimed"
}

// Seven auto-place: once the sequence sits at [A..6] with a parked activator,
// a held Seven of the suit (or either Joker) takes position seven and the
// parked card returns to the exact hand/reserve slot the placed card vacated.
func matchSevenAutoPlace(g *AscentGame, sel []*models.Card, col *Column) bool {
	if len(sel) != 1 || col.ReserveSuit == nil {
		return false
	}
	c := sel[0]
	if next, ok := col.NextRank(); !ok || next != models.RankSeven {
		return false
	}
	return c.IsJoker() || (c.Rank == models.RankSeven && c.Suit == col.Suit)
}

func applySevenAutoPlace(g *AscentGame, sel []*models.Card, col *Column) string {
	placed := sel[0]
	parked := col.ReserveSuit
	_, zone, _ := g.Player.RemoveCard(placed.ID)
	col.Cards = append(col.Cards, placed)
	col.ReserveSuit = nil
	g.Player.PlaceInZone(parked, zone)
	if placed.IsJoker() {
		return "game.joker.placed"
	}
	return "game.seven.placed"
}

// Activator exchange: a held Seven or Joker swaps directly with the parked
// activator, no hand traversal involved.
func matchActivatorExchange(g *AscentGame, sel []*models.Card, col *Column) bool {
	return len(sel) == 1 && sel[0].IsActivator() && col.ReserveSuit != nil
}

func applyActivatorExchange(g *AscentGame, sel []*models.Card, col *Column) string {
	incoming := sel[0]
	parked := col.ReserveSuit
	_, zone, _ := g.Player.RemoveCard(incoming.ID)
	col.ReserveSuit = incoming
	g.Player.PlaceInZone(parked, zone)
	return "game.activator.exchanged"
}

// Sequential placement: a single suited card whose rank is exactly the next
// expected one, on an unlocked column. Jokers never sequence directly; they
// enter a column only through the position-seven auto-place above.
func matchSequence(g *AscentGame, sel []*models.Card, col *Column) bool {
	if len(sel) != 1 || !col.HasLuckyCard {
		return false
	}
	c := sel[0]
	if c.Kind != models.KindStandard || c.Suit != col.Suit {
		return false
	}
	next, ok := col.NextRank()
	return ok && c.Rank == next
}

func applySequence(g *AscentGame, sel []*models.Card, col *Column) string {
	c := sel[0]
	g.Player.RemoveCard(c.ID)
	col.Cards = append(col.Cards, c)
	return "game.card.placed"
}

// Activator parking: a single Seven or Joker sits down in the empty
// reserve-suit slot, waiting for an unlock or exchange.
func matchParkActivator(g *AscentGame, sel []*models.Card, col *Column) bool {
	return len(sel) == 1 && sel[0].IsActivator() && col.ReserveSuit == nil
}

func applyParkActivator(g *AscentGame, sel []*models.Card, col *Column) string {
	c := sel[0]
	g.Player.RemoveCard(c.ID)
	col.ReserveSuit = c
	return "game.activator.parked"
}

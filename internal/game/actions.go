package game

import (
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/models"
)

// Joker play modes.
const (
	JokerModeHeal   = "heal"
	JokerModeAttack = "attack"
)

// handleStart closes the setup phase. The deal leaves all seven cards in the
// hand; the player must stage exactly two into the reserve before play opens.
func (g *AscentGame) handleStart() (string, bool) {
	if g.Phase != PhaseSetup {
		return "game.rejected.wrong_phase", false
	}
	if len(g.Player.Reserve) != models.MaxReserveSize {
		return "game.rejected.reserve_not_staged", false
	}

	g.Phase = nextPhase(g.Player.TotalCards())
	g.HasDiscarded = g.Phase == PhaseDraw
	g.HasDrawn = false
	g.HasPlayedAction = false
	return "game.started", true
}

// handleSelectCard stages a held card for placement, up to the two-card
// selection limit. Selection is frozen once the turn's action is spent.
func (g *AscentGame) handleSelectCard(cardID uuid.UUID) (string, bool) {
	if g.Phase != PhaseAction {
		return "game.rejected.wrong_phase", false
	}
	if g.HasPlayedAction {
		return "game.rejected.action_spent", false
	}
	if len(g.SelectedCards) >= 2 {
		return "game.select.limit", false
	}
	c, _, found := g.Player.FindCard(cardID)
	if !found {
		return "game.card.not_held", false
	}
	for _, s := range g.SelectedCards {
		if s.ID == cardID {
			return "game.select.duplicate", false
		}
	}
	g.SelectedCards = append(g.SelectedCards, c)
	return "game.card.selected", true
}

func (g *AscentGame) handleDeselectCard(cardID uuid.UUID) (string, bool) {
	if g.HasPlayedAction {
		return "game.rejected.action_spent", false
	}
	for i, s := range g.SelectedCards {
		if s.ID == cardID {
			g.SelectedCards = append(g.SelectedCards[:i], g.SelectedCards[i+1:]...)
			return "game.card.deselected", true
		}
	}
	return "game.select.not_selected", false
}

// handlePlaceOnColumn runs the current selection against the placement rule
// table for the target suit. A successful placement spends the turn's action
// and records how many cards left play for next turn's draw.
func (g *AscentGame) handlePlaceOnColumn(suit models.Suit) (string, bool) {
	if g.Phase != PhaseAction {
		return "game.rejected.wrong_phase", false
	}
	if g.HasPlayedAction {
		return "game.rejected.action_spent", false
	}
	col, ok := g.Columns[suit]
	if !ok {
		return "game.column.unknown", false
	}
	if len(g.SelectedCards) == 0 {
		return "game.select.empty", false
	}
	for _, s := range g.SelectedCards {
		if _, _, held := g.Player.FindCard(s.ID); !held {
			return "game.card.not_held", false
		}
	}

	labels := make([]string, 0, len(g.SelectedCards))
	for _, s := range g.SelectedCards {
		labels = append(labels, s.Label())
	}

	msg, applied := g.resolvePlacement(col)
	if !applied {
		return "game.placement.rejected", false
	}
	log.Printf("game %s: played %s on %s (%s)", g.ID, strings.Join(labels, " + "), suit, msg)

	g.PlayedCardsLastTurn = len(g.SelectedCards)
	g.SelectedCards = nil
	g.HasPlayedAction = true

	if g.allColumnsComplete() {
		g.endGame(OutcomeWon)
	}
	return msg, true
}

// handleJoker spends a held Joker outside the columns: heal raises the
// player's own health ceiling, attack broadcasts a strike for an opposing
// session to absorb. Either way the Joker is discarded.
func (g *AscentGame) handleJoker(cardID uuid.UUID, mode string) (string, bool) {
	if g.Phase != PhaseAction {
		return "game.rejected.wrong_phase", false
	}
	if g.HasPlayedAction {
		return "game.rejected.action_spent", false
	}
	c, _, found := g.Player.FindCard(cardID)
	if !found || !c.IsJoker() {
		return "game.joker.not_held", false
	}

	switch mode {
	case JokerModeHeal:
		g.heal(3)
	case JokerModeAttack:
		g.fireEvent(GameEvent{
			Type:   EventJokerAttack,
			GameID: g.ID,
			Data:   map[string]interface{}{"amount": 3, "from": g.Player.ID},
		})
	default:
		return "game.joker.bad_mode", false
	}

	g.Player.RemoveCard(cardID)
	g.discardCard(c)
	g.SelectedCards = nil
	g.PlayedCardsLastTurn = 1
	g.HasPlayedAction = true
	log.Printf("game %s: %s spent on %s", g.ID, c.Label(), mode)
	return "game.joker.played", true
}

// handleSkipAction forfeits the turn's action.
func (g *AscentGame) handleSkipAction() (string, bool) {
	if g.Phase != PhaseAction {
		return "game.rejected.wrong_phase", false
	}
	if g.HasPlayedAction {
		return "game.rejected.action_spent", false
	}
	g.SelectedCards = nil
	g.HasPlayedAction = true
	return "game.action.skipped", true
}

// handleStrategicReshuffle folds the hand, discard pile, and deck together,
// reshuffles, and deals a fresh five-card hand. It is only open in the
// Discard window of a full-budget turn, once per turn; the first use in a
// session is free, every later use spends the turn's action.
func (g *AscentGame) handleStrategicReshuffle() (string, bool) {
	if g.Phase != PhaseDiscard {
		return "game.rejected.wrong_phase", false
	}
	if g.Player.HasUsedStrategicShuffle {
		return "game.rejected.already_reshuffled", false
	}

	pool := make([]*models.Card, 0, len(g.Deck)+len(g.Player.Hand)+len(g.Player.DiscardPile))
	pool = append(pool, g.Deck...)
	pool = append(pool, g.Player.Hand...)
	pool = append(pool, g.Player.DiscardPile...)
	ShuffleDeck(g.rng, pool)

	var hand []*models.Card
	pool, hand = DrawCards(pool, models.MaxHandSize)
	g.Deck = pool
	g.Player.Hand = hand
	g.Player.DiscardPile = []*models.Card{}
	g.SelectedCards = nil

	g.Player.HasUsedStrategicShuffle = true
	g.HasDiscarded = true
	g.HasDrawn = true
	g.Phase = PhaseAction
	g.HasPlayedAction = g.FreeReshuffleUsed
	g.FreeReshuffleUsed = true
	return "game.reshuffle.done", true
}

// handleSurrender concedes the session immediately.
func (g *AscentGame) handleSurrender() (string, bool) {
	if g.GameOver {
		return "game.rejected.over", false
	}
	g.endGame(OutcomeSurrendered)
	return "game.surrendered", true
}

func (g *AscentGame) allColumnsComplete() bool {
	for _, col := range g.Columns {
		if !col.IsComplete() {
			return false
		}
	}
	return true
}

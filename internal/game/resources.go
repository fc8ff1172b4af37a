package game

import (
	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/models"
)

// discardCard appends a card to the player's discard pile. Callers have
// already removed it from wherever it sat.
func (g *AscentGame) discardCard(c *models.Card) {
	g.Player.DiscardPile = append(g.Player.DiscardPile, c)
}

// heal raises health and the health ceiling together. This is the
// authoritative healing rule for every heal source (Joker, Queen claim).
func (g *AscentGame) heal(amount int) {
	g.Player.MaxHealth += amount
	g.Player.Health += amount
	if g.Player.Health > g.Player.MaxHealth {
		g.Player.Health = g.Player.MaxHealth
	}
}

// ApplyDamage lowers health and ends the game when it reaches zero. Damage
// only arrives from outside the engine (an opposing session, a turn timer);
// nothing in local play reduces health.
// Assumes lock is held.
func (g *AscentGame) ApplyDamage(amount int) {
	if g.GameOver || amount <= 0 {
		return
	}
	g.Player.Health -= amount
	if g.Player.Health <= 0 {
		g.Player.Health = 0
		g.endGame(OutcomeLost)
	}
}

// handleMoveToReserve moves a hand card into the reserve, refusing when the
// reserve already holds its two cards.
func (g *AscentGame) handleMoveToReserve(cardID uuid.UUID) (string, bool) {
	if len(g.Player.Reserve) >= models.MaxReserveSize {
		return "game.reserve.full", false
	}
	_, zone, found := g.Player.FindCard(cardID)
	if !found || zone != models.ZoneHand {
		return "game.card.not_in_hand", false
	}
	c, _, _ := g.Player.RemoveCard(cardID)
	g.Player.Reserve = append(g.Player.Reserve, c)
	return "game.reserve.moved", true
}

// handleMoveToHand moves a reserve card back into the hand, refusing when the
// hand is at capacity.
func (g *AscentGame) handleMoveToHand(cardID uuid.UUID) (string, bool) {
	if len(g.Player.Hand) >= models.MaxHandSize {
		return "game.hand.full", false
	}
	_, zone, found := g.Player.FindCard(cardID)
	if !found || zone != models.ZoneReserve {
		return "game.card.not_in_reserve", false
	}
	c, _, _ := g.Player.RemoveCard(cardID)
	g.Player.Hand = append(g.Player.Hand, c)
	return "game.hand.moved", true
}

// handleExchange swaps one hand card with one reserve card. Both cards must
// be found in their stated origin or nothing moves.
func (g *AscentGame) handleExchange(handID, reserveID uuid.UUID) (string, bool) {
	_, handZone, handFound := g.Player.FindCard(handID)
	_, resZone, resFound := g.Player.FindCard(reserveID)
	if !handFound || handZone != models.ZoneHand || !resFound || resZone != models.ZoneReserve {
		return "game.exchange.invalid", false
	}
	handCard, _, _ := g.Player.RemoveCard(handID)
	reserveCard, _, _ := g.Player.RemoveCard(reserveID)
	g.Player.Hand = append(g.Player.Hand, reserveCard)
	g.Player.Reserve = append(g.Player.Reserve, handCard)
	return "game.exchange.done", true
}

// handleDiscard discards one held card. Legal only during the Discard phase
// and once per turn; it advances the phase to Draw.
func (g *AscentGame) handleDiscard(cardID uuid.UUID) (string, bool) {
	if g.Phase != PhaseDiscard {
		return "game.rejected.wrong_phase", false
	}
	if g.HasDiscarded {
		return "game.rejected.already_discarded", false
	}
	c, _, found := g.Player.RemoveCard(cardID)
	if !found {
		return "game.card.not_held", false
	}
	g.discardCard(c)
	g.HasDiscarded = true
	g.SelectedCards = nil
	g.Phase = PhaseDraw
	return "game.discard.done", true
}

// handleDraw refills the player up to the 7-card budget. The draw count
// follows the cards played last turn (or one, when none were played), capped
// by remaining capacity; drawing zero cards is still a completed draw.
func (g *AscentGame) handleDraw() (string, bool) {
	if g.Phase != PhaseDraw {
		return "game.rejected.wrong_phase", false
	}
	if g.HasDrawn {
		return "game.rejected.already_drawn", false
	}

	capacityLeft := models.MaxTotalCards - g.Player.TotalCards()
	want := 1
	if g.PlayedCardsLastTurn > 0 {
		want = g.PlayedCardsLastTurn
	}
	if want > capacityLeft {
		want = capacityLeft
	}

	drawn := g.drawFromDeck(want)
	for _, c := range drawn {
		if len(g.Player.Hand) < models.MaxHandSize {
			g.Player.Hand = append(g.Player.Hand, c)
		} else {
			g.Player.Reserve = append(g.Player.Reserve, c)
		}
	}

	g.PlayedCardsLastTurn = 0
	g.HasDrawn = true
	g.Phase = PhaseAction
	return "game.draw.done", true
}

// drawFromDeck takes up to n cards, recycling the discard pile into a fresh
// shuffled deck whenever the deck runs dry. If both piles are empty the
// result is simply short.
func (g *AscentGame) drawFromDeck(n int) []*models.Card {
	drawn := make([]*models.Card, 0, n)
	for len(drawn) < n {
		if len(g.Deck) == 0 {
			g.recycleDiscardPile()
			if len(g.Deck) == 0 {
				break
			}
		}
		var batch []*models.Card
		g.Deck, batch = DrawCards(g.Deck, n-len(drawn))
		drawn = append(drawn, batch...)
	}
	return drawn
}

// recycleDiscardPile shuffles the discard pile into the empty deck.
func (g *AscentGame) recycleDiscardPile() {
	if len(g.Deck) > 0 || len(g.Player.DiscardPile) == 0 {
		return
	}
	g.Deck = g.Player.DiscardPile
	g.Player.DiscardPile = []*models.Card{}
	ShuffleDeck(g.rng, g.Deck)
}

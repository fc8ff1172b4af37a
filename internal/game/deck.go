package game

import (
	"math/rand"

	"github.com/m-giraud/ascent/internal/models"
)

// DeckSize is the fixed card count a session conserves at all times:
// 52 suited cards plus the two jokers.
const DeckSize = 54

// BuildStandardDeck returns the full 54-card deck in suit/rank order.
// Callers shuffle it themselves so tests can pin the random source.
func BuildStandardDeck() []*models.Card {
	return append(buildSuitedCards(), models.NewJoker(models.Red), models.NewJoker(models.Black))
}

// buildSuitedCards returns the 52 suited cards without the jokers; the deal
// keeps the jokers out of the deck and hands them to the player directly.
func buildSuitedCards() []*models.Card {
	deck := make([]*models.Card, 0, DeckSize)
	for _, suit := range models.Suits {
		for _, rank := range models.AllRanks {
			deck = append(deck, models.NewStandardCard(suit, rank))
		}
	}
	return deck
}

// ShuffleDeck permutes the deck in place with a Fisher-Yates shuffle over the
// given source, so every permutation is equally likely.
func ShuffleDeck(r *rand.Rand, deck []*models.Card) {
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// DrawCards takes up to n cards from the front of the deck. If fewer than n
// remain it returns what exists; callers recycle the discard pile and draw
// again when they need the shortfall covered.
func DrawCards(deck []*models.Card, n int) (remaining, drawn []*models.Card) {
	if n > len(deck) {
		n = len(deck)
	}
	if n < 0 {
		n = 0
	}
	return deck[n:], deck[:n]
}

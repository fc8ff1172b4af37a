package models

import "github.com/google/uuid"

// Suit identifies one of the four column suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists the four column suits in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank is a standard card rank. Jokers carry no rank.
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
)

// SequenceRanks is the ascending run a column must hold, in order.
var SequenceRanks = []Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive,
	RankSix, RankSeven, RankEight, RankNine, RankTen,
}

// AllRanks covers every rank a standard card can carry.
var AllRanks = []Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
}

type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// CardKind is the closed variant tag distinguishing standard cards from jokers.
// A joker never carries a suit or rank; a standard card always carries both.
type CardKind string

const (
	KindStandard CardKind = "standard"
	KindJoker    CardKind = "joker"
)

// Card is an immutable playing card. Cards are compared by ID, never by value:
// the two jokers share kind and rank-lessness and differ only by color.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Kind  CardKind  `json:"kind"`
	Suit  Suit      `json:"suit,omitempty"`
	Rank  Rank      `json:"rank,omitempty"`
	Color Color     `json:"color"`
}

// NewStandardCard builds a suited, ranked card with a fresh identity.
func NewStandardCard(suit Suit, rank Rank) *Card {
	return &Card{
		ID:    uuid.New(),
		Kind:  KindStandard,
		Suit:  suit,
		Rank:  rank,
		Color: suitColor(suit),
	}
}

// NewJoker builds one of the two jokers.
func NewJoker(color Color) *Card {
	return &Card{
		ID:    uuid.New(),
		Kind:  KindJoker,
		Color: color,
	}
}

func suitColor(suit Suit) Color {
	if suit == Hearts || suit == Diamonds {
		return Red
	}
	return Black
}

// IsJoker reports whether the card is one of the two jokers.
func (c *Card) IsJoker() bool {
	return c.Kind == KindJoker
}

// IsActivator reports whether the card can unlock a column or power a
// special action: any Seven or either joker.
func (c *Card) IsActivator() bool {
	return c.IsJoker() || c.Rank == RankSeven
}

// IsFaceCard reports whether the card claims a column face slot (Jack or King).
func (c *Card) IsFaceCard() bool {
	return c.Kind == KindStandard && (c.Rank == RankJack || c.Rank == RankKing)
}

// Label is a short human-readable form used in log lines.
func (c *Card) Label() string {
	if c.IsJoker() {
		return string(c.Color) + " joker"
	}
	return string(c.Rank) + " of " + string(c.Suit)
}

package models

import "github.com/google/uuid"

// Capacity limits for a player's holdings. The hand and reserve budgets are
// fixed by the rules; their sum bounds the total cards a player may hold
// outside of the setup deal.
const (
	MaxHandSize    = 5
	MaxReserveSize = 2
	MaxTotalCards  = MaxHandSize + MaxReserveSize

	StartingHealth = 10
)

// CardZone names where a held card currently sits.
type CardZone string

const (
	ZoneHand    CardZone = "hand"
	ZoneReserve CardZone = "reserve"
)

// Player owns the mutable per-player resources: health, the bounded
// hand/reserve, and the discard pile.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"maxHealth"`

	Hand        []*Card `json:"hand"`
	Reserve     []*Card `json:"reserve"`
	DiscardPile []*Card `json:"discardPile"`

	// HasUsedStrategicShuffle marks the once-per-cycle reshuffle budget;
	// it resets when the turn advances.
	HasUsedStrategicShuffle bool `json:"hasUsedStrategicShuffle"`

	User *User `json:"-"`
}

// NewPlayer builds a player at full starting health with empty holdings.
func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		Health:      StartingHealth,
		MaxHealth:   StartingHealth,
		Hand:        []*Card{},
		Reserve:     []*Card{},
		DiscardPile: []*Card{},
	}
}

// TotalCards is the combined hand + reserve count.
func (p *Player) TotalCards() int {
	return len(p.Hand) + len(p.Reserve)
}

// FindCard locates a held card by ID in the hand or reserve.
func (p *Player) FindCard(id uuid.UUID) (*Card, CardZone, bool) {
	for _, c := range p.Hand {
		if c.ID == id {
			return c, ZoneHand, true
		}
	}
	for _, c := range p.Reserve {
		if c.ID == id {
			return c, ZoneReserve, true
		}
	}
	return nil, "", false
}

// RemoveCard takes a card out of whichever zone holds it, returning the zone
// it vacated. The caller decides where the card goes next.
func (p *Player) RemoveCard(id uuid.UUID) (*Card, CardZone, bool) {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, ZoneHand, true
		}
	}
	for i, c := range p.Reserve {
		if c.ID == id {
			p.Reserve = append(p.Reserve[:i], p.Reserve[i+1:]...)
			return c, ZoneReserve, true
		}
	}
	return nil, "", false
}

// PlaceInZone appends a card to the named zone without capacity checks;
// callers use it to return a card to a slot they just vacated.
func (p *Player) PlaceInZone(c *Card, zone CardZone) {
	if zone == ZoneReserve {
		p.Reserve = append(p.Reserve, c)
		return
	}
	p.Hand = append(p.Hand, c)
}

// internal/game/snapshot.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/models"
)

// Snapshot is the full JSON form of a session: what the room sees after every
// command and what the persistence boundary stores and restores. A solo
// session has no hidden information, so the deck ships in the clear.
type Snapshot struct {
	GameID  uuid.UUID `json:"gameId"`
	OwnerID uuid.UUID `json:"ownerId"`

	Player  *models.Player          `json:"player"`
	Deck    []*models.Card          `json:"deck"`
	Columns map[models.Suit]*Column `json:"columns"`

	Phase Phase `json:"phase"`
	Turn  int   `json:"turn"`

	SelectedCardIDs     []uuid.UUID `json:"selectedCardIds"`
	HasDiscarded        bool        `json:"hasDiscarded"`
	HasDrawn            bool        `json:"hasDrawn"`
	HasPlayedAction     bool        `json:"hasPlayedAction"`
	PlayedCardsLastTurn int         `json:"playedCardsLastTurn"`
	FreeReshuffleUsed   bool        `json:"freeReshuffleUsed"`

	GameOver bool   `json:"gameOver"`
	Outcome  string `json:"outcome,omitempty"`

	CommandIndex int `json:"commandIndex"`
}

// buildSnapshot deep-copies the session into a Snapshot. Assumes lock is
// held; the copy is safe to marshal after the lock is released.
func (g *AscentGame) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		GameID:              g.ID,
		OwnerID:             g.OwnerID,
		Player:              copyPlayer(g.Player),
		Deck:                copyCards(g.Deck),
		Columns:             make(map[models.Suit]*Column, len(g.Columns)),
		Phase:               g.Phase,
		Turn:                g.Turn,
		SelectedCardIDs:     make([]uuid.UUID, 0, len(g.SelectedCards)),
		HasDiscarded:        g.HasDiscarded,
		HasDrawn:            g.HasDrawn,
		HasPlayedAction:     g.HasPlayedAction,
		PlayedCardsLastTurn: g.PlayedCardsLastTurn,
		FreeReshuffleUsed:   g.FreeReshuffleUsed,
		GameOver:            g.GameOver,
		Outcome:             g.Outcome,
		CommandIndex:        g.commandIndex,
	}
	for _, c := range g.SelectedCards {
		snap.SelectedCardIDs = append(snap.SelectedCardIDs, c.ID)
	}
	for suit, col := range g.Columns {
		snap.Columns[suit] = copyColumn(col)
	}
	return snap
}

// Snapshot returns a consistent copy of the session state.
func (g *AscentGame) Snapshot() *Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.buildSnapshot()
}

// RestoreGame rebuilds a live session from a persisted snapshot. The restored
// game gets a fresh random source; shuffle order is not part of saved state.
func RestoreGame(snap *Snapshot) *AscentGame {
	g := &AscentGame{
		ID:                  snap.GameID,
		OwnerID:             snap.OwnerID,
		Player:              copyPlayer(snap.Player),
		Deck:                copyCards(snap.Deck),
		Columns:             make(map[models.Suit]*Column, len(snap.Columns)),
		Phase:               snap.Phase,
		Turn:                snap.Turn,
		HasDiscarded:        snap.HasDiscarded,
		HasDrawn:            snap.HasDrawn,
		HasPlayedAction:     snap.HasPlayedAction,
		PlayedCardsLastTurn: snap.PlayedCardsLastTurn,
		FreeReshuffleUsed:   snap.FreeReshuffleUsed,
		GameOver:            snap.GameOver,
		Outcome:             snap.Outcome,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
		commandIndex:        snap.CommandIndex,
	}
	for suit, col := range snap.Columns {
		g.Columns[suit] = copyColumn(col)
	}
	for _, id := range snap.SelectedCardIDs {
		if c, _, ok := g.Player.FindCard(id); ok {
			g.SelectedCards = append(g.SelectedCards, c)
		}
	}
	return g
}

func copyCards(cards []*models.Card) []*models.Card {
	out := make([]*models.Card, len(cards))
	for i, c := range cards {
		cc := *c
		out[i] = &cc
	}
	return out
}

func copyPlayer(p *models.Player) *models.Player {
	cp := *p
	cp.Hand = copyCards(p.Hand)
	cp.Reserve = copyCards(p.Reserve)
	cp.DiscardPile = copyCards(p.DiscardPile)
	cp.User = nil
	return &cp
}

func copyColumn(col *Column) *Column {
	cc := &Column{
		Suit:         col.Suit,
		Cards:        copyCards(col.Cards),
		HasLuckyCard: col.HasLuckyCard,
		FaceCards:    make(map[models.Rank]*models.Card, len(col.FaceCards)),
	}
	for rank, c := range col.FaceCards {
		fc := *c
		cc.FaceCards[rank] = &fc
	}
	if col.ReserveSuit != nil {
		rs := *col.ReserveSuit
		cc.ReserveSuit = &rs
	}
	return cc
}

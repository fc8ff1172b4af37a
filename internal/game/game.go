// internal/game/game.go
package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/cache"
	"github.com/m-giraud/ascent/internal/models"
)

// GameEventType is an enum-like type for broadcasting game events.
type GameEventType string

const (
	EventCommandApplied GameEventType = "game_command_applied" // A command committed; carries the fresh snapshot
	EventJokerAttack    GameEventType = "game_joker_attack"    // Outward-facing strike for an opposing session
	EventStateSync      GameEventType = "game_state_sync"      // Full snapshot on connect/reconnect
	EventGameEnd        GameEventType = "game_end"             // Session finished + outcome
)

// GameEvent holds data about an event broadcast to the session's room.
type GameEvent struct {
	Type   GameEventType          `json:"type"`
	GameID uuid.UUID              `json:"gameId"`
	Data   map[string]interface{} `json:"data,omitempty"`
	State  *Snapshot              `json:"state,omitempty"`
}

// Session outcomes.
const (
	OutcomeWon         = "won"
	OutcomeLost        = "lost"
	OutcomeSurrendered = "surrendered"
)

// CommandResult is what a command returns to its sender: whether it applied,
// the status message key, and the post-command snapshot.
type CommandResult struct {
	Applied bool      `json:"applied"`
	Message string    `json:"message"`
	State   *Snapshot `json:"state"`
}

// AscentGame holds the entire state of one solo session in memory. All
// mutation goes through HandleCommand under Mu; a command either applies in
// full or rejects with state unchanged.
type AscentGame struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	Player  *models.Player
	Deck    []*models.Card
	Columns map[models.Suit]*Column

	Phase Phase
	Turn  int

	SelectedCards       []*models.Card
	HasDiscarded        bool
	HasDrawn            bool
	HasPlayedAction     bool
	PlayedCardsLastTurn int
	FreeReshuffleUsed   bool

	GameOver bool
	Outcome  string

	Mu sync.Mutex

	// BroadcastFn sends events to the session's room. If nil, no broadcast
	// is done.
	BroadcastFn func(ev GameEvent)

	rng          *rand.Rand
	commandIndex int
}

// NewAscentGame builds a fresh session for the owning user: the 52 suited
// cards shuffled into the deck, five dealt to the hand, both Jokers handed
// over on top. The session opens in Setup with the reserve still empty.
func NewAscentGame(owner *models.User) *AscentGame {
	id, _ := uuid.NewRandom()
	player := models.NewPlayer(owner.ID, owner.Username)
	player.User = owner
	g := &AscentGame{
		ID:      id,
		OwnerID: owner.ID,
		Player:  player,
		Columns: newColumns(),
		Phase:   PhaseSetup,
		Turn:    1,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	deck := buildSuitedCards()
	ShuffleDeck(g.rng, deck)
	deck, hand := DrawCards(deck, models.MaxHandSize)
	g.Deck = deck
	g.Player.Hand = append(hand, models.NewJoker(models.Red), models.NewJoker(models.Black))
	return g
}

// HandleCommand is the single mutation entry point. Only the owner may act;
// anyone else watching the room is read-only. The returned snapshot reflects
// the session after the command, applied or not.
func (g *AscentGame) HandleCommand(userID uuid.UUID, cmd models.GameCommand) CommandResult {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	msg, applied := g.dispatch(userID, cmd)
	if applied {
		g.logCommand(userID, cmd)
		g.fireEvent(GameEvent{
			Type:   EventCommandApplied,
			GameID: g.ID,
			Data: map[string]interface{}{
				"command": cmd,
				"message": msg,
			},
			State: g.buildSnapshot(),
		})
	}
	return CommandResult{Applied: applied, Message: msg, State: g.buildSnapshot()}
}

// dispatch routes a command to its handler. Assumes lock is held.
func (g *AscentGame) dispatch(userID uuid.UUID, cmd models.GameCommand) (string, bool) {
	if userID != g.OwnerID {
		return "game.rejected.not_owner", false
	}
	if g.GameOver {
		return "game.rejected.over", false
	}

	switch cmd.Type {
	case "start":
		return g.handleStart()
	case "moveToReserve":
		id, ok := payloadUUID(cmd.Payload, "cardId")
		if !ok {
			return "game.rejected.bad_payload", false
		}
		return g.handleMoveToReserve(id)
	case "moveToHand":
		id, ok := payloadUUID(cmd.Payload, "cardId")
		if !ok {
			return "game.rejected.bad_payload", false
		}
		return g.handleMoveToHand(id)
	case "exchange":
		handID, ok1 := payloadUUID(cmd.Payload, "handCardId")
		reserveID, ok2 := payloadUUID(cmd.Payload, "reserveCardId")
		if !ok1 || !ok2 {
			return "game.rejected.bad_payload", false
		}
		return g.handleExchange(handID, reserveID)
	case "discard":
		id, ok := payloadUUID(cmd.Payload, "cardId")
		if !ok {
			return "game.rejected.bad_payload", false
		}
		return g.handleDiscard(id)
	case "draw":
		return g.handleDraw()
	case "selectCard":
		id, ok := payloadUUID(cmd.Payload, "cardId")
		if !ok {
			return "game.rejected.bad_payload", false
		}
		return g.handleSelectCard(id)
	case "deselectCard":
		id, ok := payloadUUID(cmd.Payload, "cardId")
		if !ok {
			return "game.rejected.bad_payload", false
		}
		return g.handleDeselectCard(id)
	case "placeOnColumn":
		suit, ok := payloadString(cmd.Payload, "suit")
		if !ok {
			return "game.rejected.bad_payload", false
		}
		return g.handlePlaceOnColumn(models.Suit(suit))
	case "playJoker":
		id, ok1 := payloadUUID(cmd.Payload, "cardId")
		mode, ok2 := payloadString(cmd.Payload, "mode")
		if !ok1 || !ok2 {
			return "game.rejected.bad_payload", false
		}
		return g.handleJoker(id, mode)
	case "skipAction":
		return g.handleSkipAction()
	case "strategicReshuffle":
		return g.handleStrategicReshuffle()
	case "passTurn":
		return g.handlePassTurn()
	case "surrender":
		return g.handleSurrender()
	default:
		return "game.rejected.unknown_command", false
	}
}

// endGame marks the session finished with the given outcome. Assumes lock is
// held. No further commands apply once set.
func (g *AscentGame) endGame(outcome string) {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.Outcome = outcome
	g.SelectedCards = nil
	g.fireEvent(GameEvent{
		Type:   EventGameEnd,
		GameID: g.ID,
		Data:   map[string]interface{}{"outcome": outcome},
		State:  g.buildSnapshot(),
	})
}

// fireEvent broadcasts to the session's room. Assumes lock is held.
func (g *AscentGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// logCommand asynchronously publishes the applied command to the historian
// queue. Assumes lock is held for the index increment.
func (g *AscentGame) logCommand(actorID uuid.UUID, cmd models.GameCommand) {
	g.commandIndex++
	payload := cmd.Payload
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.CommandRecord{
		GameID:       g.ID,
		CommandIndex: g.commandIndex,
		ActorUserID:  actorID,
		CommandType:  cmd.Type,
		Payload:      payload,
		Timestamp:    time.Now().UnixMilli(),
	}
	go func(rec cache.CommandRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishCommand(ctx, rec); err != nil {
			log.Printf("Error publishing command %d to Redis for game %s: %v", rec.CommandIndex, g.ID, err)
		}
	}(record)
}

func payloadUUID(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	raw, ok := payload[key]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func payloadString(payload map[string]interface{}, key string) (string, bool) {
	raw, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

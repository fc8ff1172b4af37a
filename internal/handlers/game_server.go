// internal/handlers/game_server.go
package handlers

import (
	"log"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/game"
	"github.com/m-giraud/ascent/internal/models"
)

// GameServer holds the in-memory session store and the per-session rooms
// that fan events out to websocket viewers.
type GameServer struct {
	GameStore *game.GameStore
	Logf      func(f string, v ...interface{})

	roomsMu sync.Mutex
	rooms   map[uuid.UUID]*gameRoom
}

// gameRoom tracks the websocket connections subscribed to one session. The
// owner's connection sits in the same map as read-only viewers; authority is
// decided per command, not per connection.
type gameRoom struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]uuid.UUID
}

func NewGameServer() *GameServer {
	return &GameServer{
		GameStore: game.NewGameStore(),
		Logf:      log.Printf,
		rooms:     make(map[uuid.UUID]*gameRoom),
	}
}

// NewGameForUser creates a fresh in-memory session owned by the given user,
// wires its broadcast into the session's room, and registers it in the store.
func (gs *GameServer) NewGameForUser(owner *models.User) *game.AscentGame {
	g := game.NewAscentGame(owner)
	gs.attachGame(g)
	return g
}

// AttachRestoredGame registers a session rebuilt from a persisted snapshot.
func (gs *GameServer) AttachRestoredGame(g *game.AscentGame) {
	gs.attachGame(g)
}

func (gs *GameServer) attachGame(g *game.AscentGame) {
	room := gs.getOrCreateRoom(g.ID)
	g.BroadcastFn = room.broadcastFunc(gs.Logf)
	gs.GameStore.AddGame(g)
}

// dropSession removes a finished session and its room from memory. Open
// connections keep their room reference and drain on their own.
func (gs *GameServer) dropSession(gameID uuid.UUID) {
	gs.GameStore.DeleteGame(gameID)
	gs.roomsMu.Lock()
	delete(gs.rooms, gameID)
	gs.roomsMu.Unlock()
}

func (gs *GameServer) getOrCreateRoom(gameID uuid.UUID) *gameRoom {
	gs.roomsMu.Lock()
	defer gs.roomsMu.Unlock()
	room, ok := gs.rooms[gameID]
	if !ok {
		room = &gameRoom{conns: make(map[*websocket.Conn]uuid.UUID)}
		gs.rooms[gameID] = room
	}
	return room
}

func (r *gameRoom) add(c *websocket.Conn, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = userID
}

func (r *gameRoom) remove(c *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

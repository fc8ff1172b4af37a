// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/database"
	"github.com/m-giraud/ascent/internal/game"
	"github.com/m-giraud/ascent/internal/middleware"
	"github.com/m-giraud/ascent/internal/models"
	"github.com/sirupsen/logrus"
)

// commandReply wraps a CommandResult for the sending client. Broadcast events
// go to the whole room; the reply goes only to whoever issued the command.
type commandReply struct {
	Type   string              `json:"type"`
	Result *game.CommandResult `json:"result"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for a specific game
// session. The connection joins the session's room: the owner may issue
// commands, everyone else receives broadcasts read-only.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract game ID from URL path: /game/ws/{game_id}
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing game_id in path (/game/ws/{game_id})", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "Invalid game_id format", http.StatusBadRequest)
			return
		}

		// Authenticate before the upgrade so the ephemeral cookie can still be
		// set on the HTTP response.
		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed for game %s: %v", gameID, err)
			http.Error(w, "Authentication failed", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		// Finished sessions leave the store, so resolve the id after the
		// upgrade and close with a game-level code when it is gone.
		g, ok := gs.GameStore.GetGame(gameID)
		if !ok {
			logger.Warnf("Client connected for unknown game %s.", gameID)
			c.Close(InvalidGameIDError, "Game does not exist or has already ended.")
			return
		}

		room := gs.getOrCreateRoom(gameID)
		room.add(c, userID)
		defer room.remove(c)

		// Send the full state so a reconnecting client can resume mid-turn.
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		sendWsMessage(ctx, c, game.GameEvent{
			Type:   game.EventStateSync,
			GameID: g.ID,
			State:  g.Snapshot(),
		})

		readGameMessages(ctx, c, g, userID, gs, logger)

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// broadcastFunc returns a function suitable for AscentGame.BroadcastFn. It is
// called while the game lock is held, so it only snapshots the room's
// connection list and hands the write off to a goroutine.
func (r *gameRoom) broadcastFunc(logf func(f string, v ...interface{})) func(ev game.GameEvent) {
	return func(ev game.GameEvent) {
		r.mu.Lock()
		conns := make([]*websocket.Conn, 0, len(r.conns))
		for c := range r.conns {
			conns = append(conns, c)
		}
		r.mu.Unlock()

		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logf("Failed to marshal broadcast event (%s) for game %s: %v", ev.Type, ev.GameID, err)
			return
		}

		go func(conns []*websocket.Conn, data []byte, gameID uuid.UUID) {
			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logf("Failed to write broadcast message for game %s: %v", gameID, err)
				}
			}
		}(conns, msgBytes, ev.GameID)
	}
}

// readGameMessages continuously reads commands from a client's WebSocket
// connection and routes them through the session's command entry point. The
// session does its own locking and owner checks; the loop just decodes,
// dispatches, and replies.
func readGameMessages(ctx context.Context, c *websocket.Conn, g *game.AscentGame, userID uuid.UUID, gs *GameServer, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for user %s in game %s.", userID, g.ID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for user %s in game %s.", userID, g.ID)
			} else {
				logger.Warnf("Error reading from WebSocket for user %s in game %s: %v (Status: %d)", userID, g.ID, err, status)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from user %s in game %s. Ignoring.", msgType, userID, g.ID)
			continue
		}

		var cmd models.GameCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warnf("Invalid JSON received from user %s in game %s: %v. Data: %s", userID, g.ID, err, string(data))
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		if cmd.Type == "ping" {
			logger.Tracef("Received ping from user %s, sending pong.", userID)
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
			continue
		}
		if cmd.Type == "" {
			sendWsError(ctx, c, "Missing command type.")
			continue
		}

		logger.Debugf("Received command '%s' from user %s in game %s.", cmd.Type, userID, g.ID)
		result := g.HandleCommand(userID, cmd)
		sendWsMessage(ctx, c, commandReply{Type: "command_result", Result: &result})

		if result.Applied && result.State != nil && result.State.GameOver {
			gs.dropSession(g.ID)
			go func(snap *game.Snapshot) {
				dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := database.RecordGameOutcome(dbCtx, snap.GameID, snap.OwnerID, snap.Outcome); err != nil {
					logger.Warnf("failed to record outcome for game %s: %v", snap.GameID, err)
				}
			}(result.State)
		}

		select {
		case <-ctx.Done():
			logger.Infof("Context canceled after processing message for user %s in game %s.", userID, g.ID)
			return
		default:
		}
	}
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
// Includes logging for errors and uses a write timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		log.Println("Error: Attempted to send WebSocket message on nil connection.")
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Write(writeCtx, websocket.MessageText, msgBytes)
	if err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !strings.Contains(err.Error(), "context deadline exceeded") {
			log.Printf("Error writing WebSocket message: %v (Status: %d)", err, status)
		} else if strings.Contains(err.Error(), "context deadline exceeded") {
			log.Printf("Timeout writing WebSocket message: %v", err)
		}
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

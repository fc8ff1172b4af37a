// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/m-giraud/ascent/internal/database"
	"github.com/m-giraud/ascent/internal/game"
)

// ServeHTTP routes the REST game endpoints. Websocket traffic goes through
// GameWSHandler instead.
func (gs *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/game/create" && r.Method == http.MethodPost:
		gs.handleCreateGame(w, r)
	case strings.HasPrefix(r.URL.Path, "/game/save/") && r.Method == http.MethodPost:
		gs.handleSaveGame(w, r)
	case strings.HasPrefix(r.URL.Path, "/game/load/") && r.Method == http.MethodPost:
		gs.handleLoadGame(w, r)
	default:
		http.Error(w, "unsupported route, use /game/ws/{id} for websockets", http.StatusNotFound)
	}
}

// handleCreateGame creates a new session owned by the requesting user, or
// returns the user's running session when one already exists. A guest cookie
// is issued when the request arrives unauthenticated.
func (gs *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := EnsureEphemeralUser(w, r)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}
	// Finished sessions leave the store, so a hit here is always resumable.
	if existing := gs.GameStore.GetGameByOwnerID(userID); existing != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"game_id": existing.ID,
			"state":   existing.Snapshot(),
		})
		return
	}

	user, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	g := gs.NewGameForUser(user)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"game_id": g.ID,
		"state":   g.Snapshot(),
	})
}

// handleSaveGame persists the current session snapshot under its id. Only the
// session owner may save.
func (gs *GameServer) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r, "/game/save/")
	if !ok {
		return
	}
	userID, err := authenticatedUserID(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}

	g, found := gs.GameStore.GetGame(gameID)
	if !found {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if g.OwnerID != userID {
		http.Error(w, "not your game", http.StatusForbidden)
		return
	}

	snap := g.Snapshot()
	if err := database.SaveGameState(r.Context(), userID, snap); err != nil {
		gs.Logf("failed to save game %s: %v", gameID, err)
		http.Error(w, "failed to save game", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"game_id": gameID,
		"saved":   true,
	})
}

// handleLoadGame restores a saved session into memory and re-registers it so
// the owner can reconnect over websocket and keep playing.
func (gs *GameServer) handleLoadGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r, "/game/load/")
	if !ok {
		return
	}
	userID, err := authenticatedUserID(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}

	snap, err := database.LoadGameState(r.Context(), gameID)
	if errors.Is(err, database.ErrGameNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		gs.Logf("failed to load game %s: %v", gameID, err)
		http.Error(w, "failed to load game", http.StatusInternalServerError)
		return
	}
	if snap.OwnerID != userID {
		http.Error(w, "not your game", http.StatusForbidden)
		return
	}

	g := game.RestoreGame(snap)
	gs.AttachRestoredGame(g)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"game_id": g.ID,
		"state":   g.Snapshot(),
	})
}

func parseGameID(w http.ResponseWriter, r *http.Request, prefix string) (uuid.UUID, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, prefix)
	gameID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return gameID, true
}

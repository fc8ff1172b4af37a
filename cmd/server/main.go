// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/m-giraud/ascent/internal/auth"
	"github.com/m-giraud/ascent/internal/cache"
	"github.com/m-giraud/ascent/internal/database"
	"github.com/m-giraud/ascent/internal/handlers"
	"github.com/m-giraud/ascent/internal/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	auth.Init()
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		// The historian queue is best-effort; the game runs without it.
		log.Printf("redis unavailable, command history disabled: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)

	srv := handlers.NewGameServer()

	// game websocket
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	// game REST endpoints (create/save/load)
	mux.Handle("/game/", middleware.LogMiddleware(logger)(srv))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

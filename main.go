package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"snakeduel-backend/auth"
	"snakeduel-backend/game"
	"snakeduel-backend/handlers"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	gameManager := game.NewManager()
	wsHandler := handlers.NewWebSocketHandler(gameManager)

	r := chi.NewRouter()
	r.Get("/ws", wsHandler.ServeHTTP)
	r.Post("/auth/guest", auth.GuestHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("WebSocket endpoint: /ws")
	log.Fatal(http.ListenAndServe(":"+port, r))
}

package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/freehand-live/freehand/internal/api"
	"github.com/freehand-live/freehand/internal/canvas"
	"github.com/freehand-live/freehand/internal/store"
	"github.com/freehand-live/freehand/internal/ws"
)

func main() {
	dbPath := os.Getenv("FREEHAND_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/freehand.db"
	}

	maxStrokes := canvas.DefaultMaxStrokes
	if v := os.Getenv("FREEHAND_MAX_STROKES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid FREEHAND_MAX_STROKES: %q", v)
		}
		maxStrokes = n
	}

	directory, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize room directory: %v", err)
	}
	defer directory.Close()

	hub := ws.NewHub(directory, maxStrokes)
	go hub.Run()

	apiHandler := api.New(hub, directory)

	// WebSocket endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})

	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/api/rooms", apiHandler.RoomsRouter)
	http.HandleFunc("/api/rooms/", apiHandler.RoomsRouter)

	// Apply CORS middleware
	handler := corsMiddleware(http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		directory.Close()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🎨 Freehand server starting on :%s", port)
	log.Printf("📁 Room directory: %s", dbPath)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Rooms:     GET /api/rooms")
	log.Println("  - Room:      GET /api/rooms/{id}")

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

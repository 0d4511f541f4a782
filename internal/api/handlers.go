package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/freehand-live/freehand/internal/store"
	"github.com/freehand-live/freehand/internal/ws"
)

// Read-only HTTP surface next to the WebSocket endpoint. Rooms are
// never created or mutated over REST; they exist only through joins.
type API struct {
	hub       *ws.Hub
	directory *store.Store
}

func New(hub *ws.Hub, directory *store.Store) *API {
	return &API{
		hub:       hub,
		directory: directory,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.RoomCount(),
		"active_clients": a.hub.ClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.directory != nil {
		totals, err := a.directory.GetStats()
		if err == nil {
			stats["total_rooms"] = totals.RoomCount
			stats["total_strokes"] = totals.StrokeCount
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

type RoomResponse struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	LastActiveAt  time.Time `json:"last_active_at"`
	ActiveUsers   int       `json:"active_users"`
	TotalStrokes  int       `json:"total_strokes"`
	CanvasStrokes int       `json:"canvas_strokes"`
}

// Routes GET /api/rooms and GET /api/rooms/{id}
func (a *API) RoomsRouter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if a.directory == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Room directory disabled")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/rooms")
	path = strings.Trim(path, "/")

	if path == "" {
		a.listRooms(w, r)
		return
	}
	a.getRoom(w, path)
}

func (a *API) listRooms(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	rooms, err := a.directory.ListRooms(limit, offset)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to list rooms")
		return
	}

	activeRooms := a.hub.ActiveRooms()

	response := make([]RoomResponse, len(rooms))
	for i, info := range rooms {
		response[i] = a.roomResponse(info, activeRooms[info.ID])
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"rooms":  response,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *API) getRoom(w http.ResponseWriter, id string) {
	info, err := a.directory.GetRoom(id)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to get room")
		return
	}
	if info == nil {
		errorResponse(w, http.StatusNotFound, "Room not found")
		return
	}

	jsonResponse(w, http.StatusOK, a.roomResponse(*info, a.hub.ActiveRooms()[id]))
}

func (a *API) roomResponse(info store.RoomInfo, activeUsers int) RoomResponse {
	// A room with no live session has no canvas to count
	canvasStrokes := a.hub.RoomStrokeCount(info.ID)
	if canvasStrokes < 0 {
		canvasStrokes = 0
	}
	return RoomResponse{
		ID:            info.ID,
		CreatedAt:     info.CreatedAt,
		LastActiveAt:  info.LastActiveAt,
		ActiveUsers:   activeUsers,
		TotalStrokes:  info.StrokeCount,
		CanvasStrokes: canvasStrokes,
	}
}

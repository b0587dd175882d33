package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sleepingqueens/queens-server-go/internal/game"
	"github.com/sleepingqueens/queens-server-go/internal/repository"
	"github.com/sleepingqueens/queens-server-go/internal/room"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
	maxBodyBytes        = 1 << 16
)

// ResultLister reads archived matches.
type ResultLister interface {
	RecentResults(ctx context.Context, limit int) ([]repository.MatchResult, error)
}

// Server serves the JSON API and the WebSocket endpoint.
type Server struct {
	rooms   *room.Manager
	hub     *Hub
	results ResultLister
	origins []string
	logger  *zap.Logger
}

// NewServer wires the API to the room registry. results may be nil when the
// archive is disabled.
func NewServer(rooms *room.Manager, hub *Hub, results ResultLister, allowedOrigins []string, logger *zap.Logger) *Server {
	return &Server{
		rooms:   rooms,
		hub:     hub,
		results: results,
		origins: allowedOrigins,
		logger:  logger,
	}
}

// Handler returns the routed API with recovery, logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("GET /rooms/{roomID}", s.handleGetState)
	mux.HandleFunc("DELETE /rooms/{roomID}", s.handleDeleteRoom)
	mux.HandleFunc("POST /rooms/{roomID}/join", s.handleJoin)
	mux.HandleFunc("POST /rooms/{roomID}/start", s.handleStart)
	mux.HandleFunc("POST /rooms/{roomID}/play", s.handlePlay)
	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return s.recoverer(s.requestLogger(s.cors(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rooms": s.rooms.Count()})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, _ *http.Request) {
	r := s.rooms.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"roomId": r.ID})
}

func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.List())
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	view, sum, err := s.rooms.View(r.PathValue("roomID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	etag := strconv.Quote(sum)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if err := s.rooms.Delete(roomID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Refresh(roomID)
	w.WriteHeader(http.StatusNoContent)
}

type joinRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "BadRequest"})
		return
	}

	playerID, err := s.rooms.Join(r.PathValue("roomID"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"playerId": playerID})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	view, err := s.rooms.Start(r.PathValue("roomID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type playRequest struct {
	PlayerID     string   `json:"playerId"`
	CardIDs      []string `json:"cardIds"`
	CardID       string   `json:"cardId"`
	TargetCardID string   `json:"targetCardId"`
}

func (req playRequest) move() room.Move {
	cardIDs := req.CardIDs
	if len(cardIDs) == 0 && req.CardID != "" {
		cardIDs = []string{req.CardID}
	}
	return room.Move{PlayerID: req.PlayerID, CardIDs: cardIDs, TargetID: req.TargetCardID}
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "BadRequest"})
		return
	}

	view, err := s.rooms.Play(r.Context(), r.PathValue("roomID"), req.move())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer", Code: "BadRequest"})
			return
		}
		limit = min(n, maxResultsLimit)
	}

	if s.results == nil {
		writeJSON(w, http.StatusOK, []repository.MatchResult{})
		return
	}
	results, err := s.results.RecentResults(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []repository.MatchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.ServeWS(w, r); err != nil {
		s.writeError(w, r, err)
	}
}

// RoomStateSource adapts the room registry for the hub.
func RoomStateSource(rooms *room.Manager) StateSource {
	return func(roomID string) (game.View, error) {
		view, _, err := rooms.View(roomID)
		return view, err
	}
}

// decodeBody reads an optional JSON body; an empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

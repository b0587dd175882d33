package room

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/sleepingqueens/queens-server-go/internal/game"
	"github.com/sleepingqueens/queens-server-go/internal/repository"
)

// ResultRecorder archives finished matches
type ResultRecorder interface {
	RecordResult(ctx context.Context, result repository.MatchResult) error
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxPlayers caps the number of seats per room
func WithMaxPlayers(n int) Option {
	return func(m *Manager) { m.maxPlayers = n }
}

// WithResultRecorder archives every finished match through r
func WithResultRecorder(r ResultRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// Manager is the registry of live rooms
type Manager struct {
	engine     *game.Engine
	logger     *zap.Logger
	maxPlayers int
	recorder   ResultRecorder

	rooms map[string]*Room
	mu    sync.RWMutex

	handlerMu sync.RWMutex
	handler   game.NotificationHandler
}

// NewManager creates a registry whose rooms all run on engine, taking over the
// engine's notification handler
func NewManager(engine *game.Engine, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		engine: engine,
		logger: logger,
		rooms:  make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(m)
	}
	engine.SetNotificationHandler(m.relay)
	return m
}

// SetNotificationHandler registers the receiver for game notifications of
// every room. Notification.GameID is the room id
func (m *Manager) SetNotificationHandler(handler game.NotificationHandler) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.handler = handler
}

// relay runs on the goroutine the engine started for the notification
func (m *Manager) relay(n game.Notification) {
	m.handlerMu.RLock()
	handler := m.handler
	m.handlerMu.RUnlock()

	if handler != nil {
		handler(n)
	}
}

// Create opens a new room with an unstarted game
func (m *Manager) Create() *Room {
	r := newRoom(m.engine, m.maxPlayers)

	m.mu.Lock()
	m.rooms[r.ID] = r
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("room created", zap.String("room_id", r.ID))
	}
	return r
}

// Get looks up a room
func (m *Manager) Get(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return r, nil
}

// Delete closes a room
func (m *Manager) Delete(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[roomID]; !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	delete(m.rooms, roomID)

	if m.logger != nil {
		m.logger.Info("room removed", zap.String("room_id", roomID))
	}
	return nil
}

// List returns a summary of every room, oldest first
func (m *Manager) List() []Summary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	summaries := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// Count returns the number of open rooms
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Join seats a player in a room
func (m *Manager) Join(roomID, name string) (string, error) {
	r, err := m.Get(roomID)
	if err != nil {
		return "", err
	}
	return r.Join(name)
}

// Start deals the cards in a room
func (m *Manager) Start(roomID string) (game.View, error) {
	r, err := m.Get(roomID)
	if err != nil {
		return game.View{}, err
	}
	return r.Start()
}

// Play applies a move in a room and archives the match if it ends with it.
// Archive failures are logged and do not fail the move
func (m *Manager) Play(ctx context.Context, roomID string, move Move) (game.View, error) {
	r, err := m.Get(roomID)
	if err != nil {
		return game.View{}, err
	}

	view, result, err := r.Play(move)
	if err != nil {
		return game.View{}, err
	}

	if result != nil && m.recorder != nil {
		if err := m.recorder.RecordResult(ctx, *result); err != nil && m.logger != nil {
			m.logger.Warn("failed to archive match result",
				zap.String("room_id", roomID),
				zap.String("winner_id", result.WinnerID),
				zap.Error(err),
			)
		}
	}
	return view, nil
}

// View returns the projection of a room and its checksum
func (m *Manager) View(roomID string) (game.View, string, error) {
	r, err := m.Get(roomID)
	if err != nil {
		return game.View{}, "", err
	}
	view, sum := r.View()
	return view, sum, nil
}

package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sleepingqueens/queens-server-go/internal/game"
	"github.com/sleepingqueens/queens-server-go/internal/repository"
)

var (
	// ErrRoomNotFound is returned for unknown room ids
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when every seat is taken
	ErrRoomFull = errors.New("room is full")
)

// Move is a player's request to play cards
type Move struct {
	PlayerID string
	CardIDs  []string
	TargetID string
}

// Summary describes a room in listings
type Summary struct {
	ID          string    `json:"id"`
	Started     bool      `json:"started"`
	PlayerCount int       `json:"playerCount"`
	WinnerID    *string   `json:"winnerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Room serializes every engine call on its game. The room id is the game id
type Room struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	engine     *game.Engine
	game       *game.Game
	maxPlayers int
}

func newRoom(engine *game.Engine, maxPlayers int) *Room {
	g := engine.NewGame()
	return &Room{
		ID:         g.ID(),
		CreatedAt:  time.Now(),
		engine:     engine,
		game:       g,
		maxPlayers: maxPlayers,
	}
}

// Join seats a player and returns their id
func (r *Room) Join(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.game.Started() && r.maxPlayers > 0 && r.game.PlayerCount() >= r.maxPlayers {
		return "", fmt.Errorf("%w: %d seats", ErrRoomFull, r.maxPlayers)
	}
	p, err := r.engine.AddPlayer(r.game, name)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// Start deals the cards
func (r *Room) Start() (game.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.engine.Start(r.game); err != nil {
		return game.View{}, err
	}
	return r.game.View(), nil
}

// Play applies a move and returns the match result as well when the move
// wins the game
func (r *Room) Play(m Move) (game.View, *repository.MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasOver := r.game.Finished()
	if err := r.engine.PlayCards(r.game, m.PlayerID, m.CardIDs, m.TargetID); err != nil {
		return game.View{}, nil, err
	}

	view := r.game.View()
	if wasOver || !r.game.Finished() {
		return view, nil, nil
	}
	return view, matchResult(view), nil
}

// View returns the current projection and a checksum of that projection
func (r *Room) View() (game.View, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.View(), r.game.ViewChecksum()
}

// Summary returns the listing entry for the room
func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		ID:          r.ID,
		Started:     r.game.Started(),
		PlayerCount: r.game.PlayerCount(),
		CreatedAt:   r.CreatedAt,
	}
	if w := r.game.WinnerID(); w != "" {
		s.WinnerID = &w
	}
	return s
}

func matchResult(v game.View) *repository.MatchResult {
	result := &repository.MatchResult{
		GameID:     v.ID,
		Players:    make([]repository.PlayerResult, 0, len(v.Players)),
		FinishedAt: time.Now().UTC(),
	}
	if v.WinnerID != nil {
		result.WinnerID = *v.WinnerID
	}
	for _, p := range v.Players {
		if p.ID == result.WinnerID {
			result.WinnerName = p.Name
		}
		result.Players = append(result.Players, repository.PlayerResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Queens:   len(p.QueensAwake),
		})
	}
	return result
}

package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
	"github.com/sleepingqueens/queens-server-go/internal/game/rules"
)

// Notification types
const (
	NotificationPlayerJoined = "PLAYER_JOINED"
	NotificationGameStarted  = "GAME_STARTED"
	NotificationMovePlayed   = "MOVE_PLAYED"
	NotificationGameWon      = "GAME_WON"
)

// Notification describes a committed change to a game
type Notification struct {
	Type      string
	GameID    string
	PlayerID  string
	Message   string
	Timestamp time.Time
}

// NotificationHandler receives notifications on its own goroutine
type NotificationHandler func(Notification)

// Option configures an Engine
type Option func(*Engine)

// WithSeed makes every game created by the engine shuffle deterministically.
// Games are seeded with seed and a per-engine counter
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// Engine owns the rules of play. It holds no game state of its own; every
// call operates on the Game passed in
type Engine struct {
	logger *zap.Logger

	seed    uint64
	seeded  bool
	counter uint64

	mu                  sync.RWMutex
	notificationHandler NotificationHandler
}

// NewEngine creates an engine. A nil logger disables logging
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetNotificationHandler registers the receiver for committed changes
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

func (e *Engine) emit(n Notification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler != nil {
		n.Timestamp = time.Now()
		go handler(n)
	}
}

func (e *Engine) newRand() *rand.Rand {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seeded {
		e.counter++
		return rand.New(rand.NewPCG(e.seed, e.counter))
	}

	// crypto/rand.Read never returns an error since Go 1.24
	var b [16]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// NewGame creates an unstarted game with a freshly shuffled full deck
func (e *Engine) NewGame() *Game {
	g := newGame(uuid.NewString(), e.newRand())

	if e.logger != nil {
		e.logger.Info("game created", zap.String("game_id", g.id))
	}
	return g
}

// AddPlayer seats a new player. Players can only join before the game starts
func (e *Engine) AddPlayer(g *Game, name string) (*Player, error) {
	if g.started {
		return nil, rules.Reject(rules.CodeGameAlreadyStarted, "game already started")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}

	p := &Player{ID: uuid.NewString(), Name: name, Hand: make([]cards.Card, 0, rules.HandSize+1)}
	g.players[p.ID] = p
	g.seats = append(g.seats, p.ID)
	g.awake[p.ID] = make([]cards.Card, 0, 5)

	if e.logger != nil {
		e.logger.Info("player joined",
			zap.String("game_id", g.id),
			zap.String("player_id", p.ID),
			zap.String("name", name),
		)
	}
	e.emit(Notification{Type: NotificationPlayerJoined, GameID: g.id, PlayerID: p.ID})

	return p, nil
}

// Start puts every queen to sleep, deals five cards to each player one at a
// time and hands the turn to the first player who joined. Starting a started
// game does nothing
func (e *Engine) Start(g *Game) error {
	if g.started {
		return nil
	}
	if len(g.seats) == 0 {
		return rules.Reject(rules.CodeNeedPlayers, "need players")
	}

	deck := make([]cards.Card, 0, len(g.deck))
	for _, c := range g.deck {
		if c.Type == cards.TypeQueen {
			g.sleeping = append(g.sleeping, c)
		} else {
			deck = append(deck, c)
		}
	}
	g.deck = deck

	for round := 0; round < rules.HandSize; round++ {
		for _, id := range g.seats {
			g.draw(g.players[id], 1)
		}
	}

	g.turnPlayerID = g.seats[0]
	g.started = true
	g.lastMessage = "Game started!"

	if e.logger != nil {
		e.logger.Info("game started",
			zap.String("game_id", g.id),
			zap.Int("players", len(g.seats)),
			zap.Int("deck_size", len(g.deck)),
		)
	}
	e.emit(Notification{Type: NotificationGameStarted, GameID: g.id, PlayerID: g.turnPlayerID, Message: g.lastMessage})

	return nil
}

// PlayCards is the single entry point for moves. With the rose bonus pending
// the move must name a sleeping queen and no cards; otherwise cardIDs are the
// cards played from the hand and targetID the queen they act on, if any.
// A rejected move returns a *rules.MoveError and leaves the game untouched
func (e *Engine) PlayCards(g *Game, playerID string, cardIDs []string, targetID string) error {
	if err := e.playCards(g, playerID, cardIDs, targetID); err != nil {
		if e.logger != nil {
			e.logger.Debug("move rejected",
				zap.String("game_id", g.id),
				zap.String("player_id", playerID),
				zap.String("code", string(rules.CodeOf(err))),
				zap.Error(err),
			)
		}
		return err
	}

	if err := g.Audit(); err != nil && e.logger != nil {
		e.logger.Error("card zones inconsistent after move",
			zap.String("game_id", g.id),
			zap.Error(err),
		)
	}

	if e.logger != nil {
		e.logger.Debug("move played",
			zap.String("game_id", g.id),
			zap.String("player_id", playerID),
			zap.String("message", g.lastMessage),
			zap.String("next_player_id", g.turnPlayerID),
		)
	}

	e.emit(Notification{Type: NotificationMovePlayed, GameID: g.id, PlayerID: playerID, Message: g.lastMessage})
	if g.winnerID == playerID {
		if e.logger != nil {
			e.logger.Info("game won",
				zap.String("game_id", g.id),
				zap.String("winner_id", playerID),
			)
		}
		e.emit(Notification{Type: NotificationGameWon, GameID: g.id, PlayerID: playerID, Message: g.lastMessage})
	}
	return nil
}

func (e *Engine) playCards(g *Game, playerID string, cardIDs []string, targetID string) error {
	if !g.started {
		return rules.Reject(rules.CodeNotStarted, "game not started")
	}
	if g.winnerID != "" {
		return rules.Reject(rules.CodeGameOver, "game is over")
	}
	if playerID != g.turnPlayerID {
		return rules.Reject(rules.CodeNotYourTurn, "not your turn")
	}
	p, ok := g.players[playerID]
	if !ok {
		return rules.Reject(rules.CodeUnknownPlayer, "unknown player")
	}

	if g.pendingRoseWake {
		return e.claimRoseBonus(g, p, cardIDs, targetID)
	}

	played, err := selectCards(p, cardIDs)
	if err != nil {
		return err
	}

	kind := played[0].Type
	if kind.Defensive() || kind == cards.TypeQueen {
		return rules.Reject(rules.CodeCardNotPlayable, "%s cannot be played as a move", kind)
	}
	if kind != cards.TypeNumber && len(played) > 1 {
		return rules.Reject(rules.CodeMustPlaySingly, "%s cards must be played singly", kind)
	}

	var out outcome
	switch kind {
	case cards.TypeNumber:
		out, err = resolveNumbers(p, played)
	case cards.TypeKing:
		out, err = resolveKing(g, p, targetID)
	case cards.TypeKnight:
		out, err = resolveKnight(g, p, targetID)
	case cards.TypePotion:
		out, err = resolvePotion(g, p, targetID)
	case cards.TypeJester:
		out = resolveJester(g, p)
	default:
		return rules.Reject(rules.CodeCardNotPlayable, "%s cannot be played as a move", kind)
	}
	if err != nil {
		return err
	}

	g.finishTurn(p, played, out)
	return nil
}

// selectCards resolves ids against the hand and checks they share one type
func selectCards(p *Player, cardIDs []string) ([]cards.Card, error) {
	if len(cardIDs) == 0 {
		return nil, rules.Reject(rules.CodeCardNotInHand, "no cards selected")
	}

	seen := make(map[string]bool, len(cardIDs))
	played := make([]cards.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		idx := cards.IndexOf(p.Hand, id)
		if idx < 0 || seen[id] {
			return nil, rules.Reject(rules.CodeCardNotInHand, "card %s not in hand", id)
		}
		seen[id] = true
		played = append(played, p.Hand[idx])
	}

	for _, c := range played[1:] {
		if c.Type != played[0].Type {
			return nil, rules.Reject(rules.CodeMixedCardTypes, "cannot mix card types")
		}
	}
	return played, nil
}

func (e *Engine) claimRoseBonus(g *Game, p *Player, cardIDs []string, targetID string) error {
	if len(cardIDs) > 0 || targetID == "" {
		return rules.Reject(rules.CodeBonusChoiceRequired, "rose bonus: select a sleeping queen")
	}
	idx := cards.IndexOf(g.sleeping, targetID)
	if idx < 0 {
		return rules.Reject(rules.CodeTargetNotSleeping, "target is not a sleeping queen")
	}
	if !rules.CanTakeQueen(g.awake[p.ID], g.sleeping[idx]) {
		return rules.Reject(rules.CodeAnimalConflict, "cannot take %s (animal conflict)", g.sleeping[idx].Name)
	}

	queen := g.wake(p.ID, idx)
	g.pendingRoseWake = false
	g.finishTurn(p, nil, outcome{message: fmt.Sprintf("%s used the Rose Bonus to wake %s!", p.Name, queen.Name)})
	return nil
}

// finishTurn discards what was played, refills the hand, scores, checks for a
// win and passes the turn unless a bonus or extra turn keeps it
func (g *Game) finishTurn(p *Player, played []cards.Card, out outcome) {
	for _, c := range played {
		var ok bool
		var spent cards.Card
		if p.Hand, spent, ok = cards.Take(p.Hand, c.ID); ok {
			g.discard = append(g.discard, spent)
		}
	}
	g.refill(p, rules.HandSize)

	g.lastMessage = out.message
	g.refreshScores()

	if rules.HasWon(g.awake[p.ID], len(g.seats)) {
		g.winnerID = p.ID
		g.pendingRoseWake = false
		g.lastMessage = fmt.Sprintf("%s GAME OVER! %s WINS!", out.message, p.Name)
		return
	}

	if g.pendingRoseWake {
		g.lastMessage += " (Rose Bonus: pick another sleeping queen!)"
		return
	}

	if !out.extraTurn {
		g.turnPlayerID = g.nextSeat(p.ID)
	}
}

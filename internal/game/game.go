package game

import (
	"math/rand/v2"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
	"github.com/sleepingqueens/queens-server-go/internal/game/rules"
)

// Player is a seated participant. Score is derived from the player's awake queens
type Player struct {
	ID    string
	Name  string
	Hand  []cards.Card
	Score int
}

// Game is the authoritative state of one table. Every card lives in exactly
// one zone: a hand, the deck, the discard pile, the sleeping pool or an
// awake collection.
//
// A Game is not safe for concurrent use, callers serialize access per game
type Game struct {
	id      string
	players map[string]*Player
	seats   []string // join order, fixed once started

	turnPlayerID string

	deck     []cards.Card // top is the last element
	discard  []cards.Card
	sleeping []cards.Card
	awake    map[string][]cards.Card

	started         bool
	winnerID        string
	pendingRoseWake bool
	lastMessage     string

	rng *rand.Rand
}

func newGame(id string, rng *rand.Rand) *Game {
	return &Game{
		id:      id,
		players: make(map[string]*Player),
		seats:   make([]string, 0, 5),
		deck:    cards.NewShuffledDeck(rng),
		discard: make([]cards.Card, 0, cards.DeckSize),
		awake:   make(map[string][]cards.Card),
		rng:     rng,
	}
}

// ID returns the game identifier
func (g *Game) ID() string { return g.id }

// Started reports whether cards have been dealt
func (g *Game) Started() bool { return g.started }

// WinnerID returns the winner, or "" while the game is running
func (g *Game) WinnerID() string { return g.winnerID }

// Finished reports whether the game is terminal
func (g *Game) Finished() bool { return g.winnerID != "" }

// TurnPlayerID returns the player expected to act
func (g *Game) TurnPlayerID() string { return g.turnPlayerID }

// PendingRoseWake reports whether the turn holder owes a free queen pick
func (g *Game) PendingRoseWake() bool { return g.pendingRoseWake }

// LastMessage returns the description of the most recent action
func (g *Game) LastMessage() string { return g.lastMessage }

// PlayerCount returns the number of seated players
func (g *Game) PlayerCount() int { return len(g.seats) }

// DeckSize returns the number of face-down cards left to draw
func (g *Game) DeckSize() int { return len(g.deck) }

// Player returns a seated player by id
func (g *Game) Player(playerID string) (*Player, bool) {
	p, ok := g.players[playerID]
	return p, ok
}

// nextSeat returns the player seated after playerID, wrapping around
func (g *Game) nextSeat(playerID string) string {
	return g.seatFrom(playerID, 1)
}

// seatFrom counts offset seats forward from playerID
func (g *Game) seatFrom(playerID string, offset int) string {
	if len(g.seats) == 0 {
		return ""
	}
	idx := g.seatIndex(playerID)
	if idx < 0 {
		return g.seats[0]
	}
	n := len(g.seats)
	return g.seats[((idx+offset)%n+n)%n]
}

func (g *Game) seatIndex(playerID string) int {
	for i, id := range g.seats {
		if id == playerID {
			return i
		}
	}
	return -1
}

// wake moves the sleeping queen at idx into playerID's awake collection
func (g *Game) wake(playerID string, idx int) cards.Card {
	var queen cards.Card
	g.sleeping, queen = cards.Remove(g.sleeping, idx)
	g.awake[playerID] = append(g.awake[playerID], queen)
	return queen
}

// findOpponentQueen locates an awake queen owned by anyone but playerID
func (g *Game) findOpponentQueen(playerID, queenID string) (string, int) {
	for _, owner := range g.seats {
		if owner == playerID {
			continue
		}
		if idx := cards.IndexOf(g.awake[owner], queenID); idx >= 0 {
			return owner, idx
		}
	}
	return "", -1
}

// firstOfType returns the index of the first card of type t in hand, or -1
func firstOfType(hand []cards.Card, t cards.Type) int {
	for i, c := range hand {
		if c.Type == t {
			return i
		}
	}
	return -1
}

// refreshScores recomputes every player's score from their awake queens
func (g *Game) refreshScores() {
	for id, p := range g.players {
		p.Score = rules.Score(g.awake[id])
	}
}

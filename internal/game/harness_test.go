package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
	"github.com/sleepingqueens/queens-server-go/internal/game/rules"
)

// matcher selects a card for test setup.
type matcher func(cards.Card) bool

func ofType(t cards.Type) matcher {
	return func(c cards.Card) bool { return c.Type == t }
}

func number(v int) matcher {
	return func(c cards.Card) bool { return c.Type == cards.TypeNumber && c.Value == v }
}

func newStartedGame(t *testing.T, names ...string) (*Engine, *Game) {
	t.Helper()

	e := NewEngine(zaptest.NewLogger(t), WithSeed(42))
	g := e.NewGame()
	for _, name := range names {
		_, err := e.AddPlayer(g, name)
		require.NoError(t, err)
	}
	require.NoError(t, e.Start(g))
	require.NoError(t, g.Audit())
	return e, g
}

func seat(g *Game, i int) *Player {
	return g.players[g.seats[i]]
}

// pull removes a matching card from the deck, the discard pile or, failing
// that, another player's hand (which gets a number card from the deck back).
func pull(t *testing.T, g *Game, m matcher) cards.Card {
	t.Helper()

	for i := len(g.deck) - 1; i >= 0; i-- {
		if m(g.deck[i]) {
			var c cards.Card
			g.deck, c = cards.Remove(g.deck, i)
			return c
		}
	}
	for i, c := range g.discard {
		if m(c) {
			g.discard, c = cards.Remove(g.discard, i)
			return c
		}
	}
	for _, id := range g.seats {
		p := g.players[id]
		for i, c := range p.Hand {
			if !m(c) {
				continue
			}
			p.Hand, c = cards.Remove(p.Hand, i)
			p.Hand = append(p.Hand, pull(t, g, ofType(cards.TypeNumber)))
			return c
		}
	}
	t.Fatalf("no card available for matcher")
	return cards.Card{}
}

// setHand returns the player's hand to the bottom of the deck and deals the
// requested cards instead.
func setHand(t *testing.T, g *Game, p *Player, specs ...matcher) []cards.Card {
	t.Helper()

	g.deck = append(append([]cards.Card(nil), p.Hand...), g.deck...)
	p.Hand = nil
	for _, m := range specs {
		p.Hand = append(p.Hand, pull(t, g, m))
	}
	require.NoError(t, g.Audit())
	return p.Hand
}

// putOnTop moves a matching card to the top of the deck.
func putOnTop(t *testing.T, g *Game, m matcher) cards.Card {
	t.Helper()

	c := pull(t, g, m)
	g.deck = append(g.deck, c)
	return c
}

// wakeQueen hands a named sleeping queen to the player.
func wakeQueen(t *testing.T, g *Game, playerID, name string) cards.Card {
	t.Helper()

	for i, q := range g.sleeping {
		if q.Name == name {
			return g.wake(playerID, i)
		}
	}
	t.Fatalf("queen %s is not sleeping", name)
	return cards.Card{}
}

// sleepingFirst moves the named sleeping queen to the front of the pool.
func sleepingFirst(t *testing.T, g *Game, name string) cards.Card {
	t.Helper()

	idx := -1
	for i, q := range g.sleeping {
		if q.Name == name {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0, "queen %s is not sleeping", name)
	var q cards.Card
	g.sleeping, q = cards.Remove(g.sleeping, idx)
	g.sleeping = append([]cards.Card{q}, g.sleeping...)
	return q
}

func sleepingID(t *testing.T, g *Game, name string) string {
	t.Helper()

	for _, q := range g.sleeping {
		if q.Name == name {
			return q.ID
		}
	}
	t.Fatalf("queen %s is not sleeping", name)
	return ""
}

func ids(pile ...cards.Card) []string {
	out := make([]string, len(pile))
	for i, c := range pile {
		out[i] = c.ID
	}
	return out
}

// requireRejected plays a move that must fail with code and leave the game as it was.
func requireRejected(t *testing.T, e *Engine, g *Game, code rules.Code, playerID string, cardIDs []string, targetID string) {
	t.Helper()

	before := g.Checksum()
	err := e.PlayCards(g, playerID, cardIDs, targetID)
	require.Error(t, err)
	require.Equal(t, code, rules.CodeOf(err), "unexpected rejection: %v", err)
	require.Equal(t, before, g.Checksum(), "rejected move changed the game")
}

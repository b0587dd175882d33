package game

import (
	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
)

// PlayerView is a seated player as exposed to clients
type PlayerView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Score       int          `json:"score"`
	Hand        []cards.Card `json:"hand"`
	QueensAwake []cards.Card `json:"queensAwake"`
}

// View is the client-facing projection of a game. The deck is only ever
// exposed as a count
type View struct {
	ID              string       `json:"id"`
	LastMessage     string       `json:"lastMessage"`
	WinnerID        *string      `json:"winnerId"`
	PendingRoseWake bool         `json:"pendingRoseWake"`
	Started         bool         `json:"started"`
	TurnPlayerID    *string      `json:"turnPlayerId"`
	DiscardPile     []cards.Card `json:"discardPile"`
	Players         []PlayerView `json:"players"`
	QueensSleeping  []cards.Card `json:"queensSleeping"`
	DeckSize        int          `json:"deckSize"`
}

// View copies the current state into a projection that shares no slices
// with the game
func (g *Game) View() View {
	players := make([]PlayerView, 0, len(g.seats))
	for _, id := range g.seats {
		p := g.players[id]
		players = append(players, PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			Hand:        clonePile(p.Hand),
			QueensAwake: clonePile(g.awake[id]),
		})
	}

	return View{
		ID:              g.id,
		LastMessage:     g.lastMessage,
		WinnerID:        optional(g.winnerID),
		PendingRoseWake: g.pendingRoseWake,
		Started:         g.started,
		TurnPlayerID:    optional(g.turnPlayerID),
		DiscardPile:     clonePile(g.discard),
		Players:         players,
		QueensSleeping:  clonePile(g.sleeping),
		DeckSize:        len(g.deck),
	}
}

func clonePile(pile []cards.Card) []cards.Card {
	out := make([]cards.Card, len(pile))
	copy(out, pile)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

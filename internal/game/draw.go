package game

import (
	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
)

// recycleDiscard turns the discard pile into a freshly shuffled deck when the
// deck has run out and reports whether the deck holds any card afterwards
func (g *Game) recycleDiscard() bool {
	if len(g.deck) > 0 {
		return true
	}
	if len(g.discard) == 0 {
		return false
	}
	g.deck = append(g.deck, g.discard...)
	g.discard = g.discard[:0]
	cards.Shuffle(g.deck, g.rng)
	return true
}

// popDeck removes the top card, recycling the discard pile first if needed
func (g *Game) popDeck() (cards.Card, bool) {
	if !g.recycleDiscard() {
		return cards.Card{}, false
	}
	top := g.deck[len(g.deck)-1]
	g.deck = g.deck[:len(g.deck)-1]
	return top, true
}

// draw moves up to count cards into the player's hand and returns how many
// were drawn. Fewer than count means both deck and discard are exhausted
func (g *Game) draw(p *Player, count int) int {
	drawn := 0
	for ; drawn < count; drawn++ {
		card, ok := g.popDeck()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, card)
	}
	return drawn
}

// refill tops the hand up to the standard hand size
func (g *Game) refill(p *Player, size int) int {
	if need := size - len(p.Hand); need > 0 {
		return g.draw(p, need)
	}
	return 0
}

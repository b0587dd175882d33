package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
)

// Checksum returns a SHA-256 over the complete game state including the
// hidden deck order. Never hand it to clients
func (g *Game) Checksum() string {
	sum := sha256.Sum256(g.buildDeterministicRepresentation(true))
	return hex.EncodeToString(sum[:])
}

// ViewChecksum hashes only what View exposes, so the deck contributes its
// size and not its order
func (g *Game) ViewChecksum() string {
	sum := sha256.Sum256(g.buildDeterministicRepresentation(false))
	return hex.EncodeToString(sum[:])
}

// buildDeterministicRepresentation writes every field in a fixed order, maps
// walked in seating order
func (g *Game) buildDeterministicRepresentation(withDeck bool) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%t|%s|%s|%t\n",
		g.id,
		g.started,
		g.turnPlayerID,
		g.winnerID,
		g.pendingRoseWake,
	)
	fmt.Fprintf(&buf, "MESSAGE:%s\n", g.lastMessage)
	fmt.Fprintf(&buf, "SEATS:%s\n", strings.Join(g.seats, ","))

	for _, id := range g.seats {
		p := g.players[id]
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d\n", id, p.Name, p.Score)
		writePile(&buf, "  HAND", p.Hand)
		writePile(&buf, "  AWAKE", g.awake[id])
	}

	if withDeck {
		writePile(&buf, "DECK", g.deck)
	} else {
		fmt.Fprintf(&buf, "DECK:%d\n", len(g.deck))
	}
	writePile(&buf, "DISCARD", g.discard)
	writePile(&buf, "SLEEPING", g.sleeping)

	return buf.Bytes()
}

func writePile(buf *bytes.Buffer, label string, pile []cards.Card) {
	ids := make([]string, len(pile))
	for i, c := range pile {
		ids[i] = c.ID
	}
	fmt.Fprintf(buf, "%s:%s\n", label, strings.Join(ids, ","))
}

// Audit verifies that every card of the set is in exactly one zone.
func (g *Game) Audit() error {
	seen := make(map[string]string, cards.DeckSize)
	check := func(zone string, pile []cards.Card) error {
		for _, c := range pile {
			if prev, dup := seen[c.ID]; dup {
				return fmt.Errorf("card %s in both %s and %s", c.ID, prev, zone)
			}
			seen[c.ID] = zone
		}
		return nil
	}

	if err := check("deck", g.deck); err != nil {
		return err
	}
	if err := check("discard", g.discard); err != nil {
		return err
	}
	if err := check("sleeping", g.sleeping); err != nil {
		return err
	}
	for _, id := range g.seats {
		if err := check("hand:"+id, g.players[id].Hand); err != nil {
			return err
		}
		if err := check("awake:"+id, g.awake[id]); err != nil {
			return err
		}
	}

	if len(seen) != cards.DeckSize {
		return fmt.Errorf("expected %d cards across zones, found %d", cards.DeckSize, len(seen))
	}
	return nil
}

package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
	"github.com/sleepingqueens/queens-server-go/internal/game/rules"
)

// outcome is what a resolver reports back to the turn engine
type outcome struct {
	message   string
	extraTurn bool
}

// Each resolver checks everything it needs before touching the game, so a
// returned error always leaves the state as it was

func resolveNumbers(p *Player, played []cards.Card) (outcome, error) {
	if !rules.ValidNumberCombo(played) {
		return outcome{}, rules.Reject(rules.CodeInvalidNumberCombo, "invalid number combination")
	}

	values := make([]string, len(played))
	for i, c := range played {
		values[i] = strconv.Itoa(c.Value)
	}
	return outcome{message: fmt.Sprintf("%s discarded numbers: %s", p.Name, strings.Join(values, ", "))}, nil
}

func resolveKing(g *Game, p *Player, targetID string) (outcome, error) {
	if targetID == "" {
		return outcome{}, rules.Reject(rules.CodeTargetRequired, "select a sleeping queen")
	}
	idx := cards.IndexOf(g.sleeping, targetID)
	if idx < 0 {
		return outcome{}, rules.Reject(rules.CodeTargetNotSleeping, "target is not a sleeping queen")
	}
	target := g.sleeping[idx]
	if !rules.CanTakeQueen(g.awake[p.ID], target) {
		return outcome{}, rules.Reject(rules.CodeAnimalConflict, "cannot take %s (animal conflict)", target.Name)
	}

	queen := g.wake(p.ID, idx)
	if queen.IsQueen(cards.QueenRose) {
		g.armRoseBonus(p.ID)
	}
	return outcome{message: fmt.Sprintf("%s woke up %s!", p.Name, queen.Name)}, nil
}

func resolveKnight(g *Game, p *Player, targetID string) (outcome, error) {
	if targetID == "" {
		return outcome{}, rules.Reject(rules.CodeTargetRequired, "select an opponent's queen")
	}
	ownerID, idx := g.findOpponentQueen(p.ID, targetID)
	if idx < 0 {
		return outcome{}, rules.Reject(rules.CodeQueenNotFound, "queen not found")
	}
	target := g.awake[ownerID][idx]
	if !rules.CanTakeQueen(g.awake[p.ID], target) {
		return outcome{}, rules.Reject(rules.CodeAnimalConflict, "cannot steal %s (animal conflict)", target.Name)
	}

	defender := g.players[ownerID]
	if g.counter(defender, cards.TypeDragon) {
		return outcome{message: fmt.Sprintf("Attack blocked! %s used Dragon!", defender.Name)}, nil
	}

	var queen cards.Card
	g.awake[ownerID], queen = cards.Remove(g.awake[ownerID], idx)
	g.awake[p.ID] = append(g.awake[p.ID], queen)
	return outcome{message: fmt.Sprintf("%s stole %s from %s!", p.Name, queen.Name, defender.Name)}, nil
}

func resolvePotion(g *Game, p *Player, targetID string) (outcome, error) {
	if targetID == "" {
		return outcome{}, rules.Reject(rules.CodeTargetRequired, "select an opponent's queen")
	}
	ownerID, idx := g.findOpponentQueen(p.ID, targetID)
	if idx < 0 {
		return outcome{}, rules.Reject(rules.CodeQueenNotFound, "queen not found")
	}

	defender := g.players[ownerID]
	if g.counter(defender, cards.TypeWand) {
		return outcome{message: fmt.Sprintf("Attack blocked! %s used Wand!", defender.Name)}, nil
	}

	var queen cards.Card
	g.awake[ownerID], queen = cards.Remove(g.awake[ownerID], idx)
	g.sleeping = append(g.sleeping, queen)
	return outcome{message: fmt.Sprintf("%s put %s's %s to sleep!", p.Name, defender.Name, queen.Name)}, nil
}

func resolveJester(g *Game, p *Player) outcome {
	revealed, ok := g.popDeck()
	if !ok {
		return outcome{message: fmt.Sprintf("%s played Jester but no card could be revealed!", p.Name)}
	}

	msg := fmt.Sprintf("%s played Jester and revealed %s", p.Name, revealed.Type)
	if revealed.Type != cards.TypeNumber {
		p.Hand = append(p.Hand, revealed)
		return outcome{
			message:   msg + ". It's a power card! " + p.Name + " keeps it and plays again.",
			extraTurn: true,
		}
	}

	msg += " " + strconv.Itoa(revealed.Value)
	g.discard = append(g.discard, revealed)

	// A count of 1 lands on the jester's player
	beneficiaryID := g.seatFrom(p.ID, revealed.Value-1)
	beneficiary := g.players[beneficiaryID]

	if len(g.sleeping) == 0 {
		return outcome{message: msg + ". No sleeping queens left!"}
	}
	idx := rules.FirstClaimable(g.sleeping, g.awake[beneficiaryID])
	if idx < 0 {
		return outcome{message: fmt.Sprintf("%s. Counted %d to %s, but they couldn't take any queen!", msg, revealed.Value, beneficiary.Name)}
	}

	queen := g.wake(beneficiaryID, idx)
	msg = fmt.Sprintf("%s. Counted %d to %s, who woke %s!", msg, revealed.Value, beneficiary.Name, queen.Name)

	if queen.IsQueen(cards.QueenRose) {
		if beneficiaryID == p.ID {
			g.armRoseBonus(p.ID)
		} else if n := len(g.sleeping); n > 0 {
			// The bonus pick cannot wait for a player who is not about to act,
			// so they get the top of the sleeping pool straight away
			bonus := g.wake(beneficiaryID, n-1)
			msg += fmt.Sprintf(" (Rose Bonus: %s also got %s!)", beneficiary.Name, bonus.Name)
		}
	}
	return outcome{message: msg}
}

// counter spends the defender's first card of type t and draws a replacement,
// reporting whether the defence happened
func (g *Game) counter(defender *Player, t cards.Type) bool {
	idx := firstOfType(defender.Hand, t)
	if idx < 0 {
		return false
	}
	var spent cards.Card
	defender.Hand, spent = cards.Remove(defender.Hand, idx)
	g.discard = append(g.discard, spent)
	g.draw(defender, 1)
	return true
}

// armRoseBonus puts the game into the bonus-choice state only when playerID
// has a legal sleeping queen to pick. Arming it with nothing claimable would
// leave the turn stuck, so waking the Rose Queen then grants no bonus
func (g *Game) armRoseBonus(playerID string) {
	if rules.FirstClaimable(g.sleeping, g.awake[playerID]) >= 0 {
		g.pendingRoseWake = true
	}
}

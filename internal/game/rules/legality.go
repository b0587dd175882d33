package rules

import (
	"sort"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
)

// HandSize is the number of cards a hand is refilled to after every move.
const HandSize = 5

// ValidNumberCombo reports whether a set of number cards may be discarded
// together: a single card, a set of equal ranks, or an equation of three or
// more cards whose smaller values add up to the largest.
func ValidNumberCombo(played []cards.Card) bool {
	if len(played) == 0 {
		return false
	}
	if len(played) == 1 {
		return true
	}

	values := make([]int, len(played))
	for i, c := range played {
		values[i] = c.Value
	}
	sort.Ints(values)

	same := true
	for _, v := range values[1:] {
		if v != values[0] {
			same = false
			break
		}
	}
	if same {
		return true
	}

	if len(values) < 3 {
		return false
	}
	sum := 0
	for _, v := range values[:len(values)-1] {
		sum += v
	}
	return sum == values[len(values)-1]
}

// CanTakeQueen reports whether a player owning awake may add queen without
// holding both the Dog and the Cat queen.
func CanTakeQueen(awake []cards.Card, queen cards.Card) bool {
	var hasDog, hasCat bool
	for _, q := range awake {
		switch {
		case q.IsQueen(cards.QueenDog):
			hasDog = true
		case q.IsQueen(cards.QueenCat):
			hasCat = true
		}
	}
	if queen.IsQueen(cards.QueenDog) && hasCat {
		return false
	}
	if queen.IsQueen(cards.QueenCat) && hasDog {
		return false
	}
	return true
}

// FirstClaimable returns the index of the first queen in sleeping that a
// player owning awake may take, or -1.
func FirstClaimable(sleeping, awake []cards.Card) int {
	for i, q := range sleeping {
		if CanTakeQueen(awake, q) {
			return i
		}
	}
	return -1
}

package rules

import "github.com/sleepingqueens/queens-server-go/internal/game/cards"

// Threshold is the pair of limits either of which wins the game.
type Threshold struct {
	Queens int
	Score  int
}

// WinThreshold returns the limits for a table of playerCount players.
func WinThreshold(playerCount int) Threshold {
	if playerCount <= 3 {
		return Threshold{Queens: 5, Score: 50}
	}
	return Threshold{Queens: 4, Score: 40}
}

// Score sums the point values of awake queens.
func Score(awake []cards.Card) int {
	total := 0
	for _, q := range awake {
		total += q.Value
	}
	return total
}

// HasWon reports whether awake crosses either threshold for the table size.
func HasWon(awake []cards.Card, playerCount int) bool {
	th := WinThreshold(playerCount)
	return len(awake) >= th.Queens || Score(awake) >= th.Score
}

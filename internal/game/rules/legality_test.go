package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
)

func numbers(values ...int) []cards.Card {
	out := make([]cards.Card, len(values))
	for i, v := range values {
		out[i] = cards.Card{ID: string(rune('a' + i)), Type: cards.TypeNumber, Value: v}
	}
	return out
}

func TestValidNumberCombo(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		valid  bool
	}{
		{"empty", nil, false},
		{"single", []int{7}, true},
		{"pair", []int{3, 3}, true},
		{"triple", []int{9, 9, 9}, true},
		{"mismatched pair", []int{3, 4}, false},
		{"equation", []int{2, 3, 5}, true},
		{"equation unordered", []int{5, 2, 3}, true},
		{"long equation", []int{1, 2, 3, 6}, true},
		{"not an equation", []int{2, 3, 4}, false},
		{"equation with repeat", []int{4, 4, 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidNumberCombo(numbers(tt.values...)))
		})
	}
}

func TestCanTakeQueen(t *testing.T) {
	dog := cards.Card{ID: "dog", Type: cards.TypeQueen, Value: 15, Name: cards.QueenDog}
	cat := cards.Card{ID: "cat", Type: cards.TypeQueen, Value: 15, Name: cards.QueenCat}
	moon := cards.Card{ID: "moon", Type: cards.TypeQueen, Value: 10, Name: "Moon Queen"}

	assert.True(t, CanTakeQueen(nil, dog))
	assert.True(t, CanTakeQueen([]cards.Card{moon}, cat))
	assert.False(t, CanTakeQueen([]cards.Card{cat}, dog))
	assert.False(t, CanTakeQueen([]cards.Card{moon, dog}, cat))
	assert.True(t, CanTakeQueen([]cards.Card{dog}, moon))
}

func TestFirstClaimable(t *testing.T) {
	dog := cards.Card{ID: "dog", Type: cards.TypeQueen, Name: cards.QueenDog}
	cat := cards.Card{ID: "cat", Type: cards.TypeQueen, Name: cards.QueenCat}
	star := cards.Card{ID: "star", Type: cards.TypeQueen, Name: "Star Queen"}

	assert.Equal(t, 1, FirstClaimable([]cards.Card{dog, star}, []cards.Card{cat}))
	assert.Equal(t, 0, FirstClaimable([]cards.Card{dog, star}, nil))
	assert.Equal(t, -1, FirstClaimable([]cards.Card{dog}, []cards.Card{cat}))
	assert.Equal(t, -1, FirstClaimable(nil, nil))
}

func TestWinThresholds(t *testing.T) {
	queen := func(v int) cards.Card { return cards.Card{Type: cards.TypeQueen, Value: v} }

	five := []cards.Card{queen(5), queen(5), queen(5), queen(5), queen(5)}
	assert.True(t, HasWon(five, 3), "five queens wins a 3 player game below 50 points")
	assert.Equal(t, 25, Score(five))

	four := five[:4]
	assert.False(t, HasWon(four, 2))
	assert.True(t, HasWon(four, 4))

	rich := []cards.Card{queen(20), queen(15), queen(15)}
	assert.True(t, HasWon(rich, 2))
	assert.True(t, HasWon(rich, 5))

	forty := []cards.Card{queen(20), queen(20)}
	assert.False(t, HasWon(forty, 3))
	assert.True(t, HasWon(forty, 4))
}

func TestMoveErrorCodes(t *testing.T) {
	err := Reject(CodeAnimalConflict, "cannot take %s", cards.QueenDog)
	assert.Equal(t, "cannot take Dog Queen", err.Error())
	assert.Equal(t, CodeAnimalConflict, CodeOf(err))
	assert.True(t, IsCode(err, CodeAnimalConflict))
	assert.ErrorIs(t, err, &MoveError{Code: CodeAnimalConflict})
	assert.NotErrorIs(t, err, &MoveError{Code: CodeNotYourTurn})
	assert.Equal(t, CodeUnknown, CodeOf(assert.AnError))
}

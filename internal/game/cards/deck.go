package cards

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// DeckSize is the number of cards in a complete set.
const DeckSize = 76

type queenSpec struct {
	name  string
	value int
}

var queenSpecs = []queenSpec{
	{QueenRose, 5},
	{QueenDog, 15},
	{QueenCat, 15},
	{"Sunflower Queen", 10},
	{"Rainbow Queen", 10},
	{"Moon Queen", 10},
	{"Star Queen", 10},
	{"Heart Queen", 15},
	{"Pancake Queen", 15},
	{"Ice Cream Queen", 20},
}

var actionCounts = []struct {
	t     Type
	count int
}{
	{TypeKing, 8},
	{TypeKnight, 4},
	{TypePotion, 4},
	{TypeDragon, 3},
	{TypeWand, 3},
	{TypeJester, 4},
}

// NewDeck builds the full 76-card set in canonical order with fresh ids.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)

	for _, q := range queenSpecs {
		deck = append(deck, Card{ID: uuid.NewString(), Type: TypeQueen, Value: q.value, Name: q.name})
	}

	for _, a := range actionCounts {
		for i := 0; i < a.count; i++ {
			deck = append(deck, Card{ID: uuid.NewString(), Type: a.t})
		}
	}

	for value := 1; value <= 10; value++ {
		for i := 0; i < 4; i++ {
			deck = append(deck, Card{ID: uuid.NewString(), Type: TypeNumber, Value: value})
		}
	}

	return deck
}

// Shuffle permutes the pile in place with a uniform Fisher-Yates shuffle.
func Shuffle(pile []Card, rng *rand.Rand) {
	rng.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
}

// NewShuffledDeck builds the full set and shuffles it with rng.
func NewShuffledDeck(rng *rand.Rand) []Card {
	deck := NewDeck()
	Shuffle(deck, rng)
	return deck
}

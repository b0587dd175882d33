package cards

import (
	"fmt"
)

// Type identifies the family a card belongs to.
type Type int

const (
	TypeNumber Type = iota
	TypeQueen
	TypeKing
	TypeKnight
	TypePotion
	TypeDragon
	TypeWand
	TypeJester
)

var typeNames = map[Type]string{
	TypeNumber: "number",
	TypeQueen:  "queen",
	TypeKing:   "king",
	TypeKnight: "knight",
	TypePotion: "potion",
	TypeDragon: "dragon",
	TypeWand:   "wand",
	TypeJester: "jester",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type_%d", int(t))
}

// MarshalText encodes the type as its lowercase wire name.
func (t Type) MarshalText() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown card type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a lowercase wire name.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType resolves a wire name such as "king" to its Type.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown card type %q", name)
}

// Defensive reports whether the type only resolves as an automatic counter.
func (t Type) Defensive() bool {
	return t == TypeDragon || t == TypeWand
}

// Queen names with rules attached to them.
const (
	QueenRose = "Rose Queen"
	QueenDog  = "Dog Queen"
	QueenCat  = "Cat Queen"
)

// Card is an immutable playing card. Value is the rank for number cards and
// the point value for queens; Name is set for queens only.
type Card struct {
	ID    string `json:"id"`
	Type  Type   `json:"type"`
	Value int    `json:"value"`
	Name  string `json:"name"`
}

func (c Card) String() string {
	switch c.Type {
	case TypeQueen:
		return fmt.Sprintf("%s(%d)", c.Name, c.Value)
	case TypeNumber:
		return fmt.Sprintf("number(%d)", c.Value)
	default:
		return c.Type.String()
	}
}

// IsQueen reports whether the card is the named queen.
func (c Card) IsQueen(name string) bool {
	return c.Type == TypeQueen && c.Name == name
}

// IndexOf returns the position of the card with the given id, or -1.
func IndexOf(pile []Card, id string) int {
	for i := range pile {
		if pile[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the card at index i preserving the order of the rest.
func Remove(pile []Card, i int) ([]Card, Card) {
	card := pile[i]
	out := append(pile[:i:i], pile[i+1:]...)
	return out, card
}

// Take removes the card with the given id from the pile.
func Take(pile []Card, id string) ([]Card, Card, bool) {
	i := IndexOf(pile, id)
	if i < 0 {
		return pile, Card{}, false
	}
	out, card := Remove(pile, i)
	return out, card, true
}

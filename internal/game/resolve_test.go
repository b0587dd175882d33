package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleepingqueens/queens-server-go/internal/game/cards"
	"github.com/sleepingqueens/queens-server-go/internal/game/rules"
)

func TestKing(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	hand := setHand(t, g, alice, ofType(cards.TypeKing), number(1), number(2), number(3), number(4))
	king := hand[0]

	requireRejected(t, e, g, rules.CodeTargetRequired, alice.ID, ids(king), "")
	requireRejected(t, e, g, rules.CodeTargetNotSleeping, alice.ID, ids(king), "nope")

	moonID := sleepingID(t, g, "Moon Queen")
	require.NoError(t, e.PlayCards(g, alice.ID, ids(king), moonID))

	assert.Equal(t, moonID, g.awake[alice.ID][0].ID)
	assert.Equal(t, -1, cards.IndexOf(g.sleeping, moonID))
	assert.Equal(t, 10, alice.Score)
	assert.Equal(t, king.ID, g.discard[len(g.discard)-1].ID)
	assert.Equal(t, "Alice woke up Moon Queen!", g.LastMessage())
	assert.Equal(t, bob.ID, g.TurnPlayerID())
}

func TestKingAnimalConflict(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice := seat(g, 0)

	wakeQueen(t, g, alice.ID, cards.QueenDog)
	hand := setHand(t, g, alice, ofType(cards.TypeKing), number(1), number(2), number(3), number(4))

	requireRejected(t, e, g, rules.CodeAnimalConflict, alice.ID, ids(hand[0]), sleepingID(t, g, cards.QueenCat))
	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), sleepingID(t, g, "Pancake Queen")))
	assert.Equal(t, 30, alice.Score)
}

func TestKnightSteals(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	heart := wakeQueen(t, g, bob.ID, "Heart Queen")
	setHand(t, g, bob, number(1), number(2), number(3), number(4), number(5))
	hand := setHand(t, g, alice, ofType(cards.TypeKnight), number(6), number(7), number(8), number(9))

	requireRejected(t, e, g, rules.CodeTargetRequired, alice.ID, ids(hand[0]), "")
	requireRejected(t, e, g, rules.CodeQueenNotFound, alice.ID, ids(hand[0]), sleepingID(t, g, "Moon Queen"))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), heart.ID))
	assert.Empty(t, g.awake[bob.ID])
	assert.Equal(t, heart.ID, g.awake[alice.ID][0].ID)
	assert.Equal(t, 15, alice.Score)
	assert.Zero(t, bob.Score)
	assert.Equal(t, "Alice stole Heart Queen from Bob!", g.LastMessage())
}

func TestKnightCannotTargetOwnQueen(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice := seat(g, 0)

	own := wakeQueen(t, g, alice.ID, "Star Queen")
	hand := setHand(t, g, alice, ofType(cards.TypeKnight), number(1), number(2), number(3), number(4))

	requireRejected(t, e, g, rules.CodeQueenNotFound, alice.ID, ids(hand[0]), own.ID)
}

func TestKnightAnimalConflict(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	wakeQueen(t, g, alice.ID, cards.QueenCat)
	dog := wakeQueen(t, g, bob.ID, cards.QueenDog)
	hand := setHand(t, g, alice, ofType(cards.TypeKnight), number(1), number(2), number(3), number(4))

	requireRejected(t, e, g, rules.CodeAnimalConflict, alice.ID, ids(hand[0]), dog.ID)
}

func TestKnightBlockedByDragon(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	heart := wakeQueen(t, g, bob.ID, "Heart Queen")
	bobHand := setHand(t, g, bob, number(1), ofType(cards.TypeDragon), number(3), number(4), number(5))
	dragon := bobHand[1]
	hand := setHand(t, g, alice, ofType(cards.TypeKnight), number(6), number(7), number(8), number(9))
	knight := hand[0]

	require.NoError(t, e.PlayCards(g, alice.ID, ids(knight), heart.ID))

	assert.Equal(t, heart.ID, g.awake[bob.ID][0].ID)
	assert.Empty(t, g.awake[alice.ID])
	assert.Equal(t, -1, cards.IndexOf(bob.Hand, dragon.ID))
	assert.GreaterOrEqual(t, cards.IndexOf(g.discard, dragon.ID), 0)
	assert.GreaterOrEqual(t, cards.IndexOf(g.discard, knight.ID), 0)
	assert.Len(t, bob.Hand, rules.HandSize)
	assert.Len(t, alice.Hand, rules.HandSize)
	assert.Equal(t, "Attack blocked! Bob used Dragon!", g.LastMessage())
	assert.Equal(t, bob.ID, g.TurnPlayerID())
}

func TestPotion(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	// Potions are not limited by the animal rule.
	wakeQueen(t, g, alice.ID, cards.QueenCat)
	dog := wakeQueen(t, g, bob.ID, cards.QueenDog)
	setHand(t, g, bob, number(1), number(2), number(3), number(4), number(5))
	hand := setHand(t, g, alice, ofType(cards.TypePotion), number(6), number(7), number(8), number(9))

	requireRejected(t, e, g, rules.CodeTargetRequired, alice.ID, ids(hand[0]), "")

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), dog.ID))
	assert.Empty(t, g.awake[bob.ID])
	assert.Equal(t, dog.ID, g.sleeping[len(g.sleeping)-1].ID)
	assert.Equal(t, "Alice put Bob's Dog Queen to sleep!", g.LastMessage())
}

func TestPotionBlockedByWand(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	moon := wakeQueen(t, g, bob.ID, "Moon Queen")
	bobHand := setHand(t, g, bob, ofType(cards.TypeWand), ofType(cards.TypeDragon), number(3), number(4), number(5))
	hand := setHand(t, g, alice, ofType(cards.TypePotion), number(6), number(7), number(8), number(9))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), moon.ID))

	assert.Equal(t, moon.ID, g.awake[bob.ID][0].ID)
	assert.Equal(t, -1, cards.IndexOf(bob.Hand, bobHand[0].ID))
	assert.GreaterOrEqual(t, cards.IndexOf(bob.Hand, bobHand[1].ID), 0, "dragon does not stop a potion")
	assert.Equal(t, "Attack blocked! Bob used Wand!", g.LastMessage())
}

func TestJesterRevealsPowerCard(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice := seat(g, 0)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(1), number(2), number(3), number(4))
	king := putOnTop(t, g, ofType(cards.TypeKing))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))

	assert.GreaterOrEqual(t, cards.IndexOf(alice.Hand, king.ID), 0)
	assert.Len(t, alice.Hand, rules.HandSize)
	assert.Equal(t, alice.ID, g.TurnPlayerID())
	assert.Contains(t, g.LastMessage(), "power card")
}

func TestJesterCountsToOpponent(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob", "Carol")
	alice, bob, carol := seat(g, 0), seat(g, 1), seat(g, 2)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(1), number(2), number(3), number(4))
	moon := sleepingFirst(t, g, "Moon Queen")
	three := putOnTop(t, g, number(3))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))

	assert.Equal(t, moon.ID, g.awake[carol.ID][0].ID)
	assert.Empty(t, g.awake[alice.ID])
	assert.GreaterOrEqual(t, cards.IndexOf(g.discard, three.ID), 0)
	assert.Equal(t, bob.ID, g.TurnPlayerID())
	assert.Contains(t, g.LastMessage(), "Counted 3 to Carol, who woke Moon Queen!")
}

func TestJesterCountWrapsAround(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(1), number(2), number(3), number(4))
	star := sleepingFirst(t, g, "Star Queen")
	putOnTop(t, g, number(4))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))
	assert.Equal(t, star.ID, g.awake[bob.ID][0].ID)
}

func TestJesterSkipsConflictingQueen(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice := seat(g, 0)

	wakeQueen(t, g, alice.ID, cards.QueenDog)
	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(2), number(3), number(4), number(5))
	sleepingFirst(t, g, "Heart Queen")
	sleepingFirst(t, g, cards.QueenCat)
	putOnTop(t, g, number(1))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))
	require.Len(t, g.awake[alice.ID], 2)
	assert.Equal(t, "Heart Queen", g.awake[alice.ID][1].Name)
}

func TestJesterRoseToSelfArmsBonus(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice := seat(g, 0)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(2), number(3), number(4), number(5))
	sleepingFirst(t, g, cards.QueenRose)
	putOnTop(t, g, number(1))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))
	assert.True(t, g.PendingRoseWake())
	assert.Equal(t, alice.ID, g.TurnPlayerID())

	require.NoError(t, e.PlayCards(g, alice.ID, nil, sleepingID(t, g, "Ice Cream Queen")))
	assert.Equal(t, 25, alice.Score)
	assert.False(t, g.PendingRoseWake())
}

func TestJesterRoseToOpponentGrantsLastSleeping(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(1), number(3), number(4), number(5))
	sleepingFirst(t, g, cards.QueenRose)
	last := g.sleeping[len(g.sleeping)-1]
	putOnTop(t, g, number(2))

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))

	require.Len(t, g.awake[bob.ID], 2)
	assert.Equal(t, cards.QueenRose, g.awake[bob.ID][0].Name)
	assert.Equal(t, last.ID, g.awake[bob.ID][1].ID)
	assert.False(t, g.PendingRoseWake())
	assert.Equal(t, bob.ID, g.TurnPlayerID())
	assert.Contains(t, g.LastMessage(), "Rose Bonus")
}

func TestJesterWithNothingToReveal(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice, bob := seat(g, 0), seat(g, 1)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(1), number(2), number(3), number(4))
	jester := hand[0]
	bob.Hand = append(bob.Hand, g.deck...)
	bob.Hand = append(bob.Hand, g.discard...)
	g.deck, g.discard = nil, nil

	require.NoError(t, e.PlayCards(g, alice.ID, ids(jester), ""))

	assert.Contains(t, g.LastMessage(), "no card could be revealed")
	// The jester is the only card left to recycle, so the refill draws it back.
	assert.GreaterOrEqual(t, cards.IndexOf(alice.Hand, jester.ID), 0)
	assert.Empty(t, g.discard)
	assert.Equal(t, bob.ID, g.TurnPlayerID())
	require.NoError(t, g.Audit())
}

func TestJesterRevealsFromRecycledDiscard(t *testing.T) {
	e, g := newStartedGame(t, "Alice", "Bob")
	alice := seat(g, 0)

	hand := setHand(t, g, alice, ofType(cards.TypeJester), number(1), number(2), number(3), number(4))
	king := pull(t, g, ofType(cards.TypeKing))
	g.discard = append(g.discard, g.deck...)
	g.deck = nil
	// Only power cards in the recycled pile, so the reveal is predictable.
	for i := len(g.discard) - 1; i >= 0; i-- {
		if g.discard[i].Type == cards.TypeNumber {
			var c cards.Card
			g.discard, c = cards.Remove(g.discard, i)
			seat(g, 1).Hand = append(seat(g, 1).Hand, c)
		}
	}
	g.discard = append(g.discard, king)
	require.NoError(t, g.Audit())

	require.NoError(t, e.PlayCards(g, alice.ID, ids(hand[0]), ""))

	assert.Contains(t, g.LastMessage(), "power card")
	assert.Equal(t, alice.ID, g.TurnPlayerID())
	require.NoError(t, g.Audit())
}

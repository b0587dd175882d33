package rules

import (
	"errors"
	"fmt"
)

// Code is a machine-readable reason a move was rejected.
type Code string

const (
	CodeUnknown Code = "Unknown"

	// Lifecycle
	CodeNotStarted         Code = "NotStarted"
	CodeGameOver           Code = "GameOver"
	CodeGameAlreadyStarted Code = "GameAlreadyStarted"
	CodeNeedPlayers        Code = "NeedPlayers"

	// Turn
	CodeNotYourTurn         Code = "NotYourTurn"
	CodeUnknownPlayer       Code = "UnknownPlayer"
	CodeBonusChoiceRequired Code = "BonusChoiceRequired"

	// Card selection
	CodeCardNotInHand      Code = "CardNotInHand"
	CodeMixedCardTypes     Code = "MixedCardTypes"
	CodeCardNotPlayable    Code = "CardNotPlayable"
	CodeMustPlaySingly     Code = "MustPlaySingly"
	CodeInvalidNumberCombo Code = "InvalidNumberCombo"

	// Targets
	CodeTargetRequired    Code = "TargetRequired"
	CodeTargetNotSleeping Code = "TargetNotSleeping"
	CodeQueenNotFound     Code = "QueenNotFound"
	CodeAnimalConflict    Code = "AnimalConflict"
)

// MoveError is an invalid-move rejection. The game is unchanged when one is returned.
type MoveError struct {
	Code    Code
	Message string
}

func (e *MoveError) Error() string {
	return e.Message
}

// Is matches any MoveError carrying the same code.
func (e *MoveError) Is(target error) bool {
	var other *MoveError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// Reject builds a MoveError with a formatted message.
func Reject(code Code, format string, args ...any) *MoveError {
	return &MoveError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the rejection code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *MoveError
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err is a rejection with the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

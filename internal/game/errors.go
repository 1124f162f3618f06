package game

import "errors"

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrTooManyTaps   = errors.New("too many taps in this turn")
	ErrInvalidSymbol = errors.New("symbol out of range")
)

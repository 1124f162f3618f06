package ws

import (
	"errors"

	"github.com/TheRealNinjyata/memro/internal/game"
)

var (
	ErrInvalidName   = errors.New("invalid game name")
	ErrInvalidRoomID = errors.New("invalid game id")
	ErrNotJoinable   = errors.New("cannot join this game")
	ErrNotActive     = errors.New("game not active")
	ErrWrongRoom     = errors.New("invalid game room")
	ErrAlreadyInRoom = errors.New("already in a game")
)

// errorMessage maps internal errors to the protocol error strings. The
// "Not your turn" string is a contract with the client: it is the one
// rejection that does not force a board reset.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return "Invalid game name"
	case errors.Is(err, ErrInvalidRoomID):
		return "Invalid game ID"
	case errors.Is(err, ErrNotJoinable):
		return "Cannot join this game"
	case errors.Is(err, ErrNotActive):
		return "Game not active"
	case errors.Is(err, ErrWrongRoom):
		return "Invalid game room"
	case errors.Is(err, ErrAlreadyInRoom):
		return "Already in a game"
	case errors.Is(err, game.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, game.ErrTooManyTaps):
		return "Too many taps in this turn"
	case errors.Is(err, game.ErrInvalidSymbol):
		return "Invalid square"
	default:
		return "Internal error"
	}
}

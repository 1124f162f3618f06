package game

// SymbolCount is the size of the 3x3 grid; a tap carries the index of the
// square that was hit.
const SymbolCount = 9

// Seat identifies a participant within a single game, independent of any
// connection identity.
type Seat int

const (
	SeatCreator Seat = iota
	SeatJoiner
)

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	if s == SeatCreator {
		return SeatJoiner
	}
	return SeatCreator
}

func (s Seat) String() string {
	if s == SeatCreator {
		return "creator"
	}
	return "joiner"
}

// Outcome is the result of applying one valid tap.
type Outcome int

const (
	// OutcomeReplaying means the tap matched the established sequence and the
	// actor is still mid-turn.
	OutcomeReplaying Outcome = iota
	// OutcomeExtended means the actor finished replaying the sequence and
	// appended one new symbol; the turn has passed to the opponent.
	OutcomeExtended
	// OutcomeMismatch means the tap contradicted the established sequence;
	// the actor has lost.
	OutcomeMismatch
)

// Engine is the apply-tap contract shared by game variants. Memory is the
// networked two-player implementation; implementations are not goroutine-safe
// and rely on the owning session to serialize access.
type Engine interface {
	// Start resets all progress and hands the first turn to the given seat.
	Start(first Seat)
	// ApplyTap processes one tap from the given seat. A non-nil error means
	// the tap was rejected and no state changed.
	ApplyTap(seat Seat, symbol int) (Outcome, error)
	// CurrentSeat is the seat that must act next.
	CurrentSeat() Seat
	// FirstSeat is the seat that started the current (or last) game.
	FirstSeat() Seat
	// Sequence is the established symbol sequence.
	Sequence() []int
	// TurnTaps is the number of taps submitted so far this turn.
	TurnTaps() int
}

package game

// Memory is the escalating memory-sequence game: each turn the actor replays
// the whole established sequence and then appends one new symbol. Validation
// is strictly by position, so each tap is checked in O(1).
//
// Memory is not goroutine-safe; the owning room serializes all calls.
type Memory struct {
	sequence []int
	turnTaps []int
	current  Seat
	first    Seat
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Start(first Seat) {
	m.sequence = m.sequence[:0]
	m.turnTaps = m.turnTaps[:0]
	m.current = first
	m.first = first
}

func (m *Memory) CurrentSeat() Seat { return m.current }
func (m *Memory) FirstSeat() Seat   { return m.first }
func (m *Memory) TurnTaps() int     { return len(m.turnTaps) }

func (m *Memory) Sequence() []int {
	out := make([]int, len(m.sequence))
	copy(out, m.sequence)
	return out
}

func (m *Memory) ApplyTap(seat Seat, symbol int) (Outcome, error) {
	if seat != m.current {
		return 0, ErrNotYourTurn
	}
	// The legitimate maximum for a turn is len(sequence)+1 taps; anything past
	// that is a stale or duplicate message and must not mutate anything.
	if len(m.turnTaps) > len(m.sequence) {
		return 0, ErrTooManyTaps
	}
	if symbol < 0 || symbol >= SymbolCount {
		return 0, ErrInvalidSymbol
	}

	m.turnTaps = append(m.turnTaps, symbol)

	// Still replaying the established sequence: compare by position.
	if n := len(m.turnTaps); n <= len(m.sequence) {
		if m.sequence[n-1] != symbol {
			return OutcomeMismatch, nil
		}
		return OutcomeReplaying, nil
	}

	// Full replay plus one new symbol: extend and flip the turn.
	m.sequence = append(m.sequence, symbol)
	m.turnTaps = m.turnTaps[:0]
	m.current = m.current.Other()
	return OutcomeExtended, nil
}

package game

import (
	"errors"
	"testing"
)

func TestSeatOther(t *testing.T) {
	if SeatCreator.Other() != SeatJoiner {
		t.Fatal("creator's opponent should be joiner")
	}
	if SeatJoiner.Other() != SeatCreator {
		t.Fatal("joiner's opponent should be creator")
	}
}

func TestFirstTurnExtendsImmediately(t *testing.T) {
	m := NewMemory()
	m.Start(SeatCreator)

	// Empty sequence: the very first tap is already the extension.
	out, err := m.ApplyTap(SeatCreator, 3)
	if err != nil {
		t.Fatalf("ApplyTap: %v", err)
	}
	if out != OutcomeExtended {
		t.Fatalf("outcome = %v; want OutcomeExtended", out)
	}
	if got := m.Sequence(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("sequence = %v; want [3]", got)
	}
	if m.CurrentSeat() != SeatJoiner {
		t.Fatalf("current seat = %v; want joiner", m.CurrentSeat())
	}
}

func TestReplayThenExtend(t *testing.T) {
	m := NewMemory()
	m.Start(SeatCreator)

	mustTap := func(seat Seat, symbol int, want Outcome) {
		t.Helper()
		out, err := m.ApplyTap(seat, symbol)
		if err != nil {
			t.Fatalf("ApplyTap(%v, %d): %v", seat, symbol, err)
		}
		if out != want {
			t.Fatalf("ApplyTap(%v, %d) = %v; want %v", seat, symbol, out, want)
		}
	}

	mustTap(SeatCreator, 3, OutcomeExtended)
	mustTap(SeatJoiner, 3, OutcomeReplaying)
	mustTap(SeatJoiner, 7, OutcomeExtended)

	if got := m.Sequence(); len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Fatalf("sequence = %v; want [3 7]", got)
	}
	if m.CurrentSeat() != SeatCreator {
		t.Fatalf("turn should be back with the creator, got %v", m.CurrentSeat())
	}
}

func TestMismatchEndsTurn(t *testing.T) {
	m := NewMemory()
	m.Start(SeatCreator)

	if _, err := m.ApplyTap(SeatCreator, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ApplyTap(SeatJoiner, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ApplyTap(SeatJoiner, 7); err != nil {
		t.Fatal(err)
	}

	// sequence=[3 7], creator must replay starting with 3.
	out, err := m.ApplyTap(SeatCreator, 5)
	if err != nil {
		t.Fatalf("ApplyTap: %v", err)
	}
	if out != OutcomeMismatch {
		t.Fatalf("outcome = %v; want OutcomeMismatch", out)
	}
	if got := m.Sequence(); len(got) != 2 {
		t.Fatalf("sequence must not change on mismatch, got %v", got)
	}
}

func TestRejections(t *testing.T) {
	cases := []struct {
		name   string
		seat   Seat
		symbol int
		want   error
	}{
		{"wrong seat", SeatJoiner, 0, ErrNotYourTurn},
		{"symbol too large", SeatCreator, 9, ErrInvalidSymbol},
		{"symbol negative", SeatCreator, -1, ErrInvalidSymbol},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMemory()
			m.Start(SeatCreator)
			if _, err := m.ApplyTap(tc.seat, tc.symbol); !errors.Is(err, tc.want) {
				t.Fatalf("ApplyTap = %v; want %v", err, tc.want)
			}
			if len(m.Sequence()) != 0 || m.TurnTaps() != 0 {
				t.Fatal("rejected tap must not mutate state")
			}
		})
	}
}

func TestTurnTapsNeverExceedSequencePlusOne(t *testing.T) {
	m := NewMemory()
	m.Start(SeatCreator)

	seat := SeatCreator
	// Play several clean rounds, checking the invariant between taps.
	for round := 0; round < 6; round++ {
		seq := m.Sequence()
		for i, s := range seq {
			if _, err := m.ApplyTap(seat, s); err != nil {
				t.Fatalf("round %d replay tap %d: %v", round, i, err)
			}
			if m.TurnTaps() > len(m.Sequence())+1 {
				t.Fatal("turn tap count exceeded sequence length + 1")
			}
		}
		out, err := m.ApplyTap(seat, round%SymbolCount)
		if err != nil {
			t.Fatalf("round %d extension: %v", round, err)
		}
		if out != OutcomeExtended {
			t.Fatalf("round %d: outcome = %v; want OutcomeExtended", round, out)
		}
		seat = seat.Other()
	}

	if len(m.Sequence()) != 6 {
		t.Fatalf("sequence length = %d; want 6", len(m.Sequence()))
	}
}

func TestRestartAlternatesFirstSeat(t *testing.T) {
	m := NewMemory()
	m.Start(SeatCreator)
	if _, err := m.ApplyTap(SeatCreator, 1); err != nil {
		t.Fatal(err)
	}

	m.Start(m.FirstSeat().Other())
	if m.FirstSeat() != SeatJoiner {
		t.Fatalf("first seat after restart = %v; want joiner", m.FirstSeat())
	}
	if m.CurrentSeat() != SeatJoiner {
		t.Fatalf("current seat after restart = %v; want joiner", m.CurrentSeat())
	}
	if len(m.Sequence()) != 0 || m.TurnTaps() != 0 {
		t.Fatal("restart must clear sequence and turn taps")
	}
}

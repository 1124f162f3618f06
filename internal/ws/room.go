package ws

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/TheRealNinjyata/memro/internal/game"
)

// Room is one game's authoritative state. A single mutex serializes every
// mutation: tap handling, monitor ticks, timeout reports, rematch votes and
// teardown. Rooms never call back into the Hub, so the Hub may hold its own
// lock while touching a Room but not the other way around.
type Room struct {
	ID   string
	Name string

	mu           sync.Mutex
	state        string
	destroyed    bool
	creator      *Client
	joiner       *Client
	engine       game.Engine
	lastAction   time.Time
	rematchVotes [2]bool
	monitorStop  chan struct{}

	clock        clockwork.Clock
	turnTimeout  time.Duration
	tickInterval time.Duration
}

func newRoom(id, name string, creator *Client, clock clockwork.Clock, turnTimeout, tickInterval time.Duration) *Room {
	return &Room{
		ID:           id,
		Name:         name,
		state:        StateWaiting,
		creator:      creator,
		engine:       game.NewMemory(),
		clock:        clock,
		turnTimeout:  turnTimeout,
		tickInterval: tickInterval,
	}
}

func (r *Room) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) IsWaiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.destroyed && r.state == StateWaiting
}

func (r *Room) HasParticipant(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return false
	}
	_, ok := r.seatOf(c)
	return ok
}

// ParticipantIDs reports the connection ids of both participants, for
// registry cleanup after the room is torn down.
func (r *Room) ParticipantIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participantIDs()
}

func (r *Room) participantIDs() []string {
	ids := make([]string, 0, 2)
	if r.creator != nil {
		ids = append(ids, r.creator.ID)
	}
	if r.joiner != nil {
		ids = append(ids, r.joiner.ID)
	}
	return ids
}

func (r *Room) seatOf(c *Client) (game.Seat, bool) {
	switch {
	case r.creator != nil && c.ID == r.creator.ID:
		return game.SeatCreator, true
	case r.joiner != nil && c.ID == r.joiner.ID:
		return game.SeatJoiner, true
	}
	return 0, false
}

func (r *Room) clientAt(seat game.Seat) *Client {
	if seat == game.SeatCreator {
		return r.creator
	}
	return r.joiner
}

// Join seats the second player and starts the game. The first actor of the
// initial game is chosen at random; rematches alternate strictly.
func (r *Room) Join(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed || r.state != StateWaiting || r.joiner != nil || c.ID == r.creator.ID {
		return ErrNotJoinable
	}

	r.joiner = c
	first := game.SeatCreator
	if rand.Intn(2) == 1 {
		first = game.SeatJoiner
	}
	r.startGame(first)
	return nil
}

// startGame resets the engine and transitions to playing. Lock held.
func (r *Room) startGame(first game.Seat) {
	r.engine.Start(first)
	r.state = StatePlaying
	r.lastAction = r.clock.Now()
	r.rematchVotes = [2]bool{}
	r.notifyStarted()
	r.startMonitor()
	gamesStarted.Inc()

	log.Info().
		Str("room_id", r.ID).
		Str("first", first.String()).
		Msg("game started")
}

func (r *Room) notifyStarted() {
	first := r.engine.FirstSeat()
	for _, seat := range []game.Seat{game.SeatCreator, game.SeatJoiner} {
		cl := r.clientAt(seat)
		if cl == nil {
			continue
		}
		cl.enqueue(encode(MsgGameStarted, GameStartedPayload{
			PlayerID: cl.ID,
			IsFirst:  seat == first,
			RoomID:   r.ID,
		}))
	}
}

// HandleTap applies one tap from the given connection. Rejections never
// mutate state; a valid tap is broadcast to both participants before the
// outcome is acted on.
func (r *Room) HandleTap(c *Client, symbol int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed || r.state != StatePlaying {
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrNotActive)}))
		return
	}
	seat, ok := r.seatOf(c)
	if !ok {
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(ErrNotActive)}))
		return
	}

	outcome, err := r.engine.ApplyTap(seat, symbol)
	if err != nil {
		log.Debug().
			Err(err).
			Str("room_id", r.ID).
			Str("client_id", c.ID).
			Int("symbol", symbol).
			Msg("tap rejected")
		c.enqueue(encode(MsgError, ErrorPayload{Message: errorMessage(err)}))
		return
	}

	r.lastAction = r.clock.Now()
	tapsProcessed.Inc()
	r.broadcast(MsgTap, TapBroadcastPayload{SquareID: symbol})

	switch outcome {
	case game.OutcomeExtended:
		next := r.clientAt(r.engine.CurrentSeat())
		r.broadcast(MsgTurn, TurnPayload{CurrentPlayer: next.ID})
	case game.OutcomeMismatch:
		r.finish(seat, reasonMismatch)
	}
}

// HandleTimeoutReport honors a client-reported deadline breach only after
// re-validating the acting player and the room state; the server never
// trusts the client's claim that time has elapsed.
func (r *Room) HandleTimeoutReport(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed || r.state != StatePlaying {
		return
	}
	seat, ok := r.seatOf(c)
	if !ok || seat != r.engine.CurrentSeat() {
		log.Debug().
			Str("room_id", r.ID).
			Str("client_id", c.ID).
			Msg("ignoring invalid timeout report")
		return
	}
	r.finish(seat, reasonTimeout)
}

// finish is the single end-game path for mismatch and timeout: both parties
// are notified with the pre-failure sequence length and the monitor is
// stopped before returning. Lock held.
func (r *Room) finish(loser game.Seat, reason string) {
	if r.state != StatePlaying {
		return
	}
	score := len(r.engine.Sequence())
	r.state = StateEnded
	r.stopMonitor()

	if lc := r.clientAt(loser); lc != nil {
		lc.enqueue(encode(MsgLose, ScorePayload{SequenceLength: score}))
	}
	if wc := r.clientAt(loser.Other()); wc != nil {
		wc.enqueue(encode(MsgWin, ScorePayload{SequenceLength: score}))
	}
	gamesFinished.WithLabelValues(reason).Inc()

	log.Info().
		Str("room_id", r.ID).
		Str("loser", loser.String()).
		Str("reason", reason).
		Int("sequence_length", score).
		Msg("game over")
}

// HandleRematchRequest notifies the opponent of a rematch offer. It records
// nothing; both sides still have to accept.
func (r *Room) HandleRematchRequest(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed || r.state != StateEnded {
		return
	}
	seat, ok := r.seatOf(c)
	if !ok {
		return
	}
	if opp := r.clientAt(seat.Other()); opp != nil {
		opp.enqueue(encode(MsgRematchOffer, nil))
	}
}

// HandleAcceptRematch records a vote. When both seats have voted the room
// restarts with the starting player reversed from the previous game.
func (r *Room) HandleAcceptRematch(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed || r.state != StateEnded {
		return
	}
	seat, ok := r.seatOf(c)
	if !ok {
		return
	}

	r.rematchVotes[seat] = true
	if r.rematchVotes[game.SeatCreator] && r.rematchVotes[game.SeatJoiner] {
		r.startGame(r.engine.FirstSeat().Other())
		return
	}
	c.enqueue(encode(MsgRematchWaiting, nil))
}

// HandleDeclineRematch notifies the opponent and tears the room down. It
// reports whether the caller must remove the room from the registry.
func (r *Room) HandleDeclineRematch(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return false
	}
	seat, ok := r.seatOf(c)
	if !ok {
		return false
	}
	if opp := r.clientAt(seat.Other()); opp != nil {
		opp.enqueue(encode(MsgRematchDeclined, nil))
	}
	r.teardown()
	return true
}

type leaveResult struct {
	Destroyed    bool
	Participants []string
}

// Leave is the shared exit/disconnect path. If a game was in progress the
// remaining participant wins with the current sequence length. The room is
// torn down regardless of its prior state.
func (r *Room) Leave(c *Client, reason string) leaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return leaveResult{}
	}
	seat, ok := r.seatOf(c)
	if !ok {
		return leaveResult{}
	}

	if r.state == StatePlaying {
		if opp := r.clientAt(seat.Other()); opp != nil {
			opp.enqueue(encode(MsgWin, ScorePayload{SequenceLength: len(r.engine.Sequence())}))
			opp.enqueue(encode(MsgOpponentDisconnected, nil))
		}
		gamesFinished.WithLabelValues(reason).Inc()
	}

	log.Info().
		Str("room_id", r.ID).
		Str("client_id", c.ID).
		Str("state", r.state).
		Str("reason", reason).
		Msg("participant left, tearing down room")

	ids := r.participantIDs()
	r.teardown()
	return leaveResult{Destroyed: true, Participants: ids}
}

// teardown marks the room dead and stops the monitor. Lock held. Late
// monitor ticks and stale messages check the destroyed flag and no-op.
func (r *Room) teardown() {
	r.state = StateEnded
	r.destroyed = true
	r.rematchVotes = [2]bool{}
	r.stopMonitor()
}

// startMonitor launches the per-room timeout watcher. At most one monitor
// runs per room; the stop channel is owned by the room so the monitor
// cannot outlive it or be double-cancelled. Lock held.
func (r *Room) startMonitor() {
	r.stopMonitor()
	stop := make(chan struct{})
	r.monitorStop = stop
	go r.runMonitor(stop)
}

// stopMonitor cancels the running monitor, if any. Lock held.
func (r *Room) stopMonitor() {
	if r.monitorStop != nil {
		close(r.monitorStop)
		r.monitorStop = nil
	}
}

func (r *Room) runMonitor(stop <-chan struct{}) {
	ticker := r.clock.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			r.checkDeadline()
		}
	}
}

func (r *Room) checkDeadline() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed || r.state != StatePlaying {
		return
	}
	if r.clock.Since(r.lastAction) > r.turnTimeout {
		r.finish(r.engine.CurrentSeat(), reasonTimeout)
	}
}

// broadcast sends one message to both participants. Sends are buffered
// channel pushes; nothing blocks while the room lock is held.
func (r *Room) broadcast(msgType string, payload any) {
	data := encode(msgType, payload)
	if r.creator != nil {
		r.creator.enqueue(data)
	}
	if r.joiner != nil {
		r.joiner.enqueue(data)
	}
}

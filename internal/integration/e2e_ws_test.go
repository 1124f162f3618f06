package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/TheRealNinjyata/memro/internal/config"
	httpserver "github.com/TheRealNinjyata/memro/internal/http"
	"github.com/TheRealNinjyata/memro/internal/ws"
)

func newServer(t *testing.T, turnTimeout, tick time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{
		WSRateLimit:  1000,
		WSRateWindow: time.Minute,
	}
	hub := ws.NewHub(clockwork.NewRealClock(), turnTimeout, tick)
	httpserver.RegisterRoutes(r, hub, cfg, "test")
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// startReader runs a single reader goroutine per connection to avoid
// concurrent ReadMessage calls.
func startReader(conn *websocket.Conn) chan map[string]any {
	out := make(chan map[string]any, 32)
	go func() {
		defer close(out)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var obj map[string]any
			if json.Unmarshal(msg, &obj) == nil {
				out <- obj
			}
		}
	}()
	return out
}

// waitFor drains the channel until a frame of the wanted type arrives.
func waitFor(t *testing.T, ch chan map[string]any, want string) map[string]any {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case obj, ok := <-ch:
			if !ok {
				t.Fatalf("connection closed waiting for %q", want)
			}
			if obj["type"] == want {
				return obj
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %q", want)
		}
	}
}

func payload(obj map[string]any) map[string]any {
	p, _ := obj["payload"].(map[string]any)
	return p
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func sendTap(t *testing.T, conn *websocket.Conn, roomID string, square int) {
	t.Helper()
	send(t, conn, fmt.Sprintf(`{"type":"tap","payload":{"squareId":%d,"roomId":%q}}`, square, roomID))
}

// createAndJoin takes two connected clients through create_game/join_game and
// returns (roomID, firstConn, firstCh, secondConn, secondCh).
func createAndJoin(t *testing.T, connA, connB *websocket.Conn, chA, chB chan map[string]any) (string, *websocket.Conn, chan map[string]any, *websocket.Conn, chan map[string]any) {
	t.Helper()
	send(t, connA, `{"type":"create_game","payload":{"name":"e2e"}}`)
	created := waitFor(t, chA, "game_created")
	roomID, _ := payload(created)["roomId"].(string)
	if roomID == "" {
		t.Fatalf("game_created carried no roomId: %v", created)
	}

	send(t, connB, fmt.Sprintf(`{"type":"join_game","payload":{"roomId":%q}}`, roomID))
	startedA := waitFor(t, chA, "game_started")
	waitFor(t, chB, "game_started")

	if isFirst, _ := payload(startedA)["isFirst"].(bool); isFirst {
		return roomID, connA, chA, connB, chB
	}
	return roomID, connB, chB, connA, chA
}

func TestE2E_FullRoundAndMismatch(t *testing.T) {
	ts := newServer(t, 10*time.Second, time.Second)

	connA := dial(t, ts)
	connB := dial(t, ts)
	chA := startReader(connA)
	chB := startReader(connB)

	roomID, first, firstCh, second, secondCh := createAndJoin(t, connA, connB, chA, chB)

	// opening move: no sequence yet, one tap extends immediately.
	// Consume the turn broadcast on both connections so later waits
	// cannot pick up a stale frame.
	sendTap(t, first, roomID, 3)
	turn := waitFor(t, secondCh, "turn")
	waitFor(t, firstCh, "turn")
	if payload(turn)["currentPlayer"] == "" {
		t.Fatalf("turn carried no currentPlayer")
	}

	// second player replays [3] and extends with 7
	sendTap(t, second, roomID, 3)
	sendTap(t, second, roomID, 7)
	waitFor(t, firstCh, "turn")
	waitFor(t, secondCh, "turn")

	// first player fails the replay: sequence is [3 7], tapping 5 mismatches
	sendTap(t, first, roomID, 5)
	lose := waitFor(t, firstCh, "lose")
	win := waitFor(t, secondCh, "win")
	if got := payload(lose)["sequenceLength"].(float64); got != 2 {
		t.Fatalf("lose sequenceLength = %v, want 2", got)
	}
	if got := payload(win)["sequenceLength"].(float64); got != 2 {
		t.Fatalf("win sequenceLength = %v, want 2", got)
	}

	// taps after the game ended are rejected
	sendTap(t, first, roomID, 0)
	errMsg := waitFor(t, firstCh, "error")
	if got := payload(errMsg)["message"]; got != "Game not active" {
		t.Fatalf("post-game tap error = %v", got)
	}
}

func TestE2E_RematchReversesFirstPlayer(t *testing.T) {
	ts := newServer(t, 10*time.Second, time.Second)

	connA := dial(t, ts)
	connB := dial(t, ts)
	chA := startReader(connA)
	chB := startReader(connB)

	roomID, first, firstCh, _, secondCh := createAndJoin(t, connA, connB, chA, chB)

	// end the game quickly: first extends, then mismatches the replay
	sendTap(t, first, roomID, 1)
	waitFor(t, secondCh, "turn")
	waitFor(t, firstCh, "turn")
	sendTap(t, first, roomID, 4) // out of turn, rejected
	errMsg := waitFor(t, firstCh, "error")
	if got := payload(errMsg)["message"]; got != "Not your turn" {
		t.Fatalf("out of turn error = %v", got)
	}

	second := connA
	if first == connA {
		second = connB
	}
	sendTap(t, second, roomID, 1)
	sendTap(t, second, roomID, 2)
	waitFor(t, firstCh, "turn")
	waitFor(t, secondCh, "turn")
	sendTap(t, first, roomID, 8)
	waitFor(t, firstCh, "lose")
	waitFor(t, secondCh, "win")

	// both accept a rematch
	send(t, connA, fmt.Sprintf(`{"type":"rematch_request","payload":{"roomId":%q}}`, roomID))
	waitFor(t, chB, "rematch_offer")
	send(t, connA, fmt.Sprintf(`{"type":"accept_rematch","payload":{"roomId":%q}}`, roomID))
	waitFor(t, chA, "rematch_waiting")
	send(t, connB, fmt.Sprintf(`{"type":"accept_rematch","payload":{"roomId":%q}}`, roomID))

	restartedA := waitFor(t, chA, "game_started")
	restartedB := waitFor(t, chB, "game_started")

	// the player who opened the first game must not open the rematch
	var firstCount int
	for _, started := range []map[string]any{restartedA, restartedB} {
		if isFirst, _ := payload(started)["isFirst"].(bool); isFirst {
			firstCount++
		}
	}
	if firstCount != 1 {
		t.Fatalf("expected exactly one first player after rematch, got %d", firstCount)
	}
	var restartedFirstIsA bool
	if isFirst, _ := payload(restartedA)["isFirst"].(bool); isFirst {
		restartedFirstIsA = true
	}
	if (first == connA) == restartedFirstIsA {
		t.Fatalf("rematch did not reverse the first player")
	}
}

func TestE2E_DisconnectForfeitsAndClearsLobby(t *testing.T) {
	ts := newServer(t, 10*time.Second, time.Second)

	connA := dial(t, ts)
	connB := dial(t, ts)
	chA := startReader(connA)
	chB := startReader(connB)

	roomID, first, firstCh, second, secondCh := createAndJoin(t, connA, connB, chA, chB)
	sendTap(t, first, roomID, 0)
	waitFor(t, secondCh, "turn")
	waitFor(t, firstCh, "turn")

	// the first player vanishes mid-game
	first.Close()
	waitFor(t, secondCh, "win")
	waitFor(t, secondCh, "opponentDisconnected")

	// survivor is free again and the room is gone from the lobby
	send(t, second, `{"type":"get_lobby"}`)
	lobby := waitFor(t, secondCh, "update_lobby")
	if rooms, ok := lobby["payload"].([]any); ok && len(rooms) != 0 {
		t.Fatalf("lobby still lists %d rooms after teardown", len(rooms))
	}
	send(t, second, `{"type":"create_game","payload":{"name":"again"}}`)
	waitFor(t, secondCh, "game_created")
}

func TestE2E_TurnTimeoutForfeits(t *testing.T) {
	ts := newServer(t, 200*time.Millisecond, 20*time.Millisecond)

	connA := dial(t, ts)
	connB := dial(t, ts)
	chA := startReader(connA)
	chB := startReader(connB)

	_, _, firstCh, _, secondCh := createAndJoin(t, connA, connB, chA, chB)

	// the opening player never taps; the monitor forfeits them
	waitFor(t, firstCh, "lose")
	waitFor(t, secondCh, "win")
}

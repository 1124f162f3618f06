package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	dialer := websocket.DefaultDialer

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws", port)

	connA, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	send := func(conn *websocket.Conn, name, frame string) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
	}

	// read frames until one of the wanted type arrives, printing everything
	waitFor := func(conn *websocket.Conn, name, want string) map[string]any {
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				continue
			}
			log.Printf("%s got: %s", name, string(msg))
			var obj map[string]any
			_ = json.Unmarshal(msg, &obj)
			if t, ok := obj["type"].(string); ok && t == want {
				return obj
			}
		}
		log.Fatalf("%s: no %q within deadline", name, want)
		return nil
	}

	send(connA, "A", `{"type":"create_game","payload":{"name":"smoke"}}`)
	created := waitFor(connA, "A", "game_created")

	payload, _ := created["payload"].(map[string]any)
	roomID, _ := payload["roomId"].(string)
	if roomID == "" {
		log.Fatal("game_created carried no roomId")
	}

	send(connB, "B", fmt.Sprintf(`{"type":"join_game","payload":{"roomId":%q}}`, roomID))
	startedA := waitFor(connA, "A", "game_started")
	waitFor(connB, "B", "game_started")

	pa, _ := startedA["payload"].(map[string]any)
	first, second := connA, connB
	firstName, secondName := "A", "B"
	if isFirst, _ := pa["isFirst"].(bool); !isFirst {
		first, second = connB, connA
		firstName, secondName = "B", "A"
	}

	tap := func(conn *websocket.Conn, name string, square int) {
		send(conn, name, fmt.Sprintf(`{"type":"tap","payload":{"squareId":%d,"roomId":%q}}`, square, roomID))
	}

	// first player opens the sequence with one symbol
	tap(first, firstName, 3)
	waitFor(second, secondName, "turn")

	// second player replays it and extends
	tap(second, secondName, 3)
	tap(second, secondName, 7)
	waitFor(first, firstName, "turn")

	log.Println("smoke test finished")
}

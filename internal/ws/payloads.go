package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client → server
type CreateGamePayload struct {
	Name string `json:"name"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type TapPayload struct {
	SquareID int    `json:"squareId"`
	RoomID   string `json:"roomId"`
}

// server → client
type GameCreatedPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type LobbyEntry struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	State  string `json:"state"`
}

type GameStartedPayload struct {
	PlayerID string `json:"playerId"`
	IsFirst  bool   `json:"isFirst"`
	RoomID   string `json:"roomId"`
}

type TapBroadcastPayload struct {
	SquareID int `json:"squareId"`
}

type TurnPayload struct {
	CurrentPlayer string `json:"currentPlayer"`
}

type ScorePayload struct {
	SequenceLength int `json:"sequenceLength"`
}

type ExitConfirmedPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// encode marshals an outbound message. Payloads are plain structs and slices,
// so a marshal failure is a programming error; it is logged and dropped.
func encode(msgType string, payload any) []byte {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("type", msgType).Msg("marshal payload")
			return nil
		}
		raw = data
	}

	data, err := json.Marshal(Message{Type: msgType, Payload: raw})
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("marshal message")
		return nil
	}
	return data
}

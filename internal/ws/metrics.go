package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Currently connected websocket clients",
		},
	)
	roomsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_open",
			Help: "Rooms currently held by the session registry",
		},
	)
	gamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "games_started_total",
			Help: "Games started, including rematch restarts",
		},
	)
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Games finished, by ending reason",
		},
		[]string{"reason"},
	)
	tapsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taps_processed_total",
			Help: "Taps accepted by the turn engine",
		},
	)
)

func init() {
	prometheus.MustRegister(connectionsActive)
	prometheus.MustRegister(roomsOpen)
	prometheus.MustRegister(gamesStarted)
	prometheus.MustRegister(gamesFinished)
	prometheus.MustRegister(tapsProcessed)
}

// game ending reasons
const (
	reasonMismatch   = "mismatch"
	reasonTimeout    = "timeout"
	reasonDisconnect = "disconnect"
	reasonForfeit    = "forfeit"
)

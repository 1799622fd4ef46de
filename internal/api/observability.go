package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality (no per-participant labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent advancing one simulation tick",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.016},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_player_count",
		Help: "Players currently in the simulation",
	})

	avatarCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_avatar_count",
		Help: "Avatars currently on the pitch",
	})

	simPhase = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_phase",
		Help: "Current game phase (0=waiting 1=countdown 2=playing 3=afterGoal 4=postGame)",
	})

	goalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_goals_total",
		Help: "Goals scored since process start",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket state broadcasts",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by the rate limiter or join cap",
	}, []string{"reason"}) // bounded: "rate_limit", "full"
)

// ObserveTickDuration records how long one simulation step took.
func ObserveTickDuration(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

var lastScores [2]uint8

// UpdateSimGauges refreshes the simulation gauges from a tick summary.
// Score increases are folded into the goals counter.
func UpdateSimGauges(s Summary) {
	playerCount.Set(float64(s.PlayerCount))
	avatarCount.Set(float64(len(s.Avatars)))
	simPhase.Set(float64(phaseOrdinal(s.Phase)))

	for team, score := range s.Scores {
		if score > lastScores[team] {
			goalsTotal.Add(float64(score - lastScores[team]))
		}
		lastScores[team] = score
	}
}

// UpdateWSConnections sets the active connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one broadcast.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// RecordConnectionRejected counts a rejected connection by reason.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

func phaseOrdinal(name string) int {
	switch name {
	case "waitingForPlayers":
		return 0
	case "countDown":
		return 1
	case "playing":
		return 2
	case "afterAGoal":
		return 3
	case "postGame":
		return 4
	default:
		return -1
	}
}

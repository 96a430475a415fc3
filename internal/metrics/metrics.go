// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pegfall",
		Name:      "sessions_active",
		Help:      "Live game sessions.",
	})

	SessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "sessions_ended_total",
		Help:      "Sessions ended, by reason.",
	}, []string{"reason"})

	Frames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "frames_total",
		Help:      "Simulation frames advanced across all sessions.",
	})

	BallsSpawned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "balls_spawned_total",
		Help:      "Balls fired from the cannon.",
	})

	Spins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "jackpot_spins_total",
		Help:      "Evaluated jackpot spins, by payout tier.",
	}, []string{"tier"})

	GamesOver = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "games_over_total",
		Help:      "Rounds that reached game over.",
	})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "commands_total",
		Help:      "Player commands, by type and whether they were accepted.",
	}, []string{"type", "accepted"})

	HighScores = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pegfall",
		Name:      "high_scores_total",
		Help:      "High scores recorded on the leaderboard.",
	})
)

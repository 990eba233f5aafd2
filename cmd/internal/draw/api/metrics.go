package drawapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	setupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "santa_setups_total",
		Help: "Completed draw setups.",
	})

	revealsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "santa_reveals_total",
		Help: "Reveal requests by outcome.",
	}, []string{"outcome"})

	remindersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "santa_reminders_total",
		Help: "Administrative reminder sweeps.",
	})
)

const (
	outcomeFirst   = "first"
	outcomeRepeat  = "repeat"
	outcomeInvalid = "invalid_token"
	outcomeError   = "error"
)

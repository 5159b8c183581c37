package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backstage_booking_transitions_total",
		Help: "Booking state transitions by action and outcome.",
	}, []string{"action", "outcome"})

	ledgerCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backstage_ledger_commits_total",
		Help: "Ledger commits by kind and outcome.",
	}, []string{"kind", "outcome"})
)

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

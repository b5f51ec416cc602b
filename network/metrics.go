package network

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors updated by a Network.
type Metrics struct {
	Rounds  prometheus.Counter     // Rounds run.
	Packets *prometheus.CounterVec // Packets routed, by destination kind.
	Wakes   prometheus.Counter     // Packets sent by the gateway to wake the network.
	Idle    prometheus.Gauge       // Nodes quiet for at least two rounds.
}

// NewMetrics creates network metrics, registered with reg if it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Rounds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "intcode",
			Subsystem: "network",
			Name:      "rounds_total",
			Help:      "Number of network rounds run.",
		}),
		Packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intcode",
			Subsystem: "network",
			Name:      "packets_total",
			Help:      "Number of packets routed, by destination kind.",
		}, []string{"kind"}),
		Wakes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "intcode",
			Subsystem: "network",
			Name:      "nat_wakes_total",
			Help:      "Number of packets sent by the NAT to wake an idle network.",
		}),
		Idle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "intcode",
			Subsystem: "network",
			Name:      "idle_nodes",
			Help:      "Number of nodes quiet for at least two consecutive rounds.",
		}),
	}
}

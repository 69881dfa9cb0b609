// Package metrics defines the Prometheus metrics for the TiaaDeals backend.
// It is the single source of truth for metric names, labels, and help
// strings. All metrics register with the default registry at import time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tiaadeals"

// RegistrationsTotal counts successful account registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful user registrations.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts refresh-token exchanges.
// Label:
//   - result: "success" or "failure"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of token refresh attempts, by result.",
	},
	[]string{"result"},
)

// CartMutationsTotal counts cart write operations.
// Label:
//   - op: "add", "update", "remove", or "clear"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart write operations, by operation.",
	},
	[]string{"op"},
)

// InsufficientStockTotal counts cart writes rejected for lack of stock.
var InsufficientStockTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insufficient_stock_rejections_total",
		Help:      "Total number of cart writes rejected because stock was insufficient.",
	},
)

// Package metrics holds the Prometheus collectors of the storefront. They are
// registered with the default registry on package init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthAttemptsTotal counts register/login calls.
// Labels: operation (register, login), outcome (success, failure).
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts by outcome.",
	},
	[]string{"operation", "outcome"},
)

// CatalogMutationsTotal counts successful catalog writes by operation.
var CatalogMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_mutations_total",
		Help:      "Catalog add/update/delete operations.",
	},
	[]string{"operation"},
)

// CartMutationsTotal counts cart add/remove operations.
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart add/remove operations.",
	},
	[]string{"operation"},
)

// StorageFailuresTotal counts swallowed storage read/write failures.
// Labels: store (auth, catalog, cart), operation (load, save).
var StorageFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_failures_total",
		Help:      "Storage failures that were logged and recovered from.",
	},
	[]string{"store", "operation"},
)

func Handler() http.Handler {
	return promhttp.Handler()
}

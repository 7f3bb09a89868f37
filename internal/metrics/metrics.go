package metrics

import (
	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// InitializeNSMMetrics registers the relevant metrics.
func InitializeNSMMetrics() {
	metrics.Registry.MustRegister(
		migrationPhase,
		migrationItems,
	)
}

var (
	migrationPhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nsm_migration_phase",
			Help: "Indication of the current phase of a namespace migration",
		}, []string{"name", "source", "target", "phase"},
	)
)

var (
	migrationItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nsm_migration_items",
			Help: "Quantity of migrated items of a namespace migration per outcome",
		}, []string{"name", "outcome"},
	)
)

// ObserveMigrationPhase sets the phase metric of the given migration,
// clearing any previously observed phase of that migration.
func ObserveMigrationPhase(name, source, target string, phase danav1.Phase) {
	migrationPhase.DeletePartialMatch(prometheus.Labels{"name": name})
	migrationPhase.With(prometheus.Labels{
		"name":   name,
		"source": source,
		"target": target,
		"phase":  string(phase),
	}).Set(1)
}

// ObserveMigrationItems sets the items metric of the given migration and outcome
// as per the quantity.
func ObserveMigrationItems(name string, outcome danav1.Outcome, quantity float64) {
	migrationItems.With(prometheus.Labels{
		"name":    name,
		"outcome": string(outcome),
	}).Set(quantity)
}

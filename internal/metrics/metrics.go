// Package metrics exposes prometheus counters for the group and similarity engines.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/classgroups/classgroups/internal/fault"
)

var (
	// Operations counts engine operations by name and outcome.
	Operations = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "classgroups",
			Name:      "operations_total",
			Help:      "Engine operations, by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// ImportRows counts processed CSV import rows by outcome.
	ImportRows = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "classgroups",
			Name:      "import_rows_total",
			Help:      "CSV import rows, by outcome.",
		},
		[]string{"outcome"},
	)

	// EvidenceDeletes counts evidence artifacts removed after a match link pair was deleted.
	EvidenceDeletes = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "classgroups",
			Name:      "evidence_deletes_total",
			Help:      "Evidence artifact deletions, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeForbidden  = "forbidden"
	OutcomeConflict   = "conflict"
	OutcomeValidation = "validation_failed"
	OutcomeError      = "error"
)

// Outcome maps an operation result to its label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, fault.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, fault.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, fault.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, fault.ErrValidationFailed):
		return OutcomeValidation
	default:
		return OutcomeError
	}
}

// Observe counts one run of operation.
func Observe(operation string, err error) {
	Operations.WithLabelValues(operation, Outcome(err)).Inc()
}

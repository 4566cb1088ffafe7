package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/classgroups/classgroups/internal/fault"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeNotFound, Outcome(fault.NotFound("x")))
	assert.Equal(t, OutcomeForbidden, Outcome(fault.Forbidden("x")))
	assert.Equal(t, OutcomeConflict, Outcome(fault.Conflict("x")))
	assert.Equal(t, OutcomeValidation, Outcome(fault.Invalid("x")))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(Operations.WithLabelValues("test_op", OutcomeConflict))

	Observe("test_op", fault.Conflict("taken"))

	assert.InDelta(t, before+1, testutil.ToFloat64(Operations.WithLabelValues("test_op", OutcomeConflict)), 0.001)
}

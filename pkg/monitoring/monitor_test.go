package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEnrollment(t *testing.T) {
	before := testutil.ToFloat64(EnrollmentOperations.WithLabelValues("enroll", "error"))
	ObserveEnrollment("enroll", errors.New("boom"))
	ObserveEnrollment("enroll", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(EnrollmentOperations.WithLabelValues("enroll", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(EnrollmentOperations.WithLabelValues("enroll", "ok")), 1.0)
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMethodLabel(t *testing.T) {
	for _, method := range []string{"GET", "POST", "OPTIONS", "DELETE"} {
		assert.Equal(t, method, MethodLabel(method))
	}
	assert.Equal(t, OtherLabel, MethodLabel("get"))
	assert.Equal(t, OtherLabel, MethodLabel("BREW"))
	assert.Equal(t, OtherLabel, MethodLabel(""))
}

func TestIncRequest_MethodSeriesBounded(t *testing.T) {
	before := testutil.CollectAndCount(PaymentRequestsTotal)
	for i := 0; i < 200; i++ {
		IncRequest("metrics-test", "FAILED", fmt.Sprintf("X%d", i))
	}
	assert.Equal(t, 1, testutil.CollectAndCount(PaymentRequestsTotal)-before)
	assert.Equal(t, 200.0, testutil.ToFloat64(PaymentRequestsTotal.WithLabelValues("metrics-test", "FAILED", OtherLabel)))
}

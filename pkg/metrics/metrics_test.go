package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	PageAdOperations.WithLabelValues("assign").Inc()
	require.Equal(t, 1, testutil.CollectAndCount(PageAdOperations, "mainsite_page_ad_operations_total"))
}

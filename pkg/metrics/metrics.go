package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mainsite", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mainsite", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	AssetOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mainsite", Name: "asset_operations_total", Help: "Asset host calls by backend, operation and result."},
		[]string{"backend", "op", "result"},
	)
	PageAdOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mainsite", Name: "page_ad_operations_total", Help: "Page-ad registry mutations by operation."},
		[]string{"op"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AssetOperations)
	reg.MustRegister(PageAdOperations)
}

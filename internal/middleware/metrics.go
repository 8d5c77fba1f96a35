package middleware

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsInterceptor records per-procedure request counts and latencies.
type MetricsInterceptor struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	streams  *prometheus.GaugeVec
}

var _ connect.Interceptor = (*MetricsInterceptor)(nil)

// NewMetricsInterceptor creates the interceptor and registers its collectors
// with reg.
func NewMetricsInterceptor(reg prometheus.Registerer) *MetricsInterceptor {
	factory := promauto.With(reg)
	return &MetricsInterceptor{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mydays_rpc_requests_total",
			Help: "RPC requests by procedure and result code.",
		}, []string{"procedure", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mydays_rpc_duration_seconds",
			Help:    "RPC handling time by procedure.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
		streams: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mydays_rpc_active_streams",
			Help: "Currently open watch streams by procedure.",
		}, []string{"procedure"}),
	}
}

func errCode(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return "internal"
}

// WrapUnary implements connect.Interceptor.
func (m *MetricsInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		procedure := req.Spec().Procedure
		m.requests.WithLabelValues(procedure, errCode(err)).Inc()
		m.duration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (m *MetricsInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (m *MetricsInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		procedure := conn.Spec().Procedure
		m.streams.WithLabelValues(procedure).Inc()
		defer m.streams.WithLabelValues(procedure).Dec()

		start := time.Now()
		err := next(ctx, conn)
		m.requests.WithLabelValues(procedure, errCode(err)).Inc()
		m.duration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
		return err
	}
}

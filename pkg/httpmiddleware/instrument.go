package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Instrument returns a middleware that wraps the handler in otelhttp server
// instrumentation and records a per-request counter on the service meter.
// A meter that cannot create the counter is logged once; requests still
// flow through the otelhttp handler.
func Instrument(lg *zap.Logger, service string, tp trace.TracerProvider, mp metric.MeterProvider) Middleware {
	meter := mp.Meter(service)
	requests, err := meter.Int64Counter("http.server.requests")
	if err != nil {
		lg.Warn("Request counter unavailable", zap.Error(err))
		requests = nil
	}

	return func(next http.Handler) http.Handler {
		counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests != nil {
				requests.Add(r.Context(), 1, metric.WithAttributes(
					attribute.String("http.method", r.Method),
				))
			}
			next.ServeHTTP(w, r)
		})

		return otelhttp.NewHandler(counted, service,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
		)
	}
}

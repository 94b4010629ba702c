package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerPrefix = "github.com/nastassia-sauchanka/faceted-product-search/"

// TracingConfig configures the server span middleware.
type TracingConfig struct {
	ServiceName string
	// StateParams are query parameters copied onto the span as
	// "search.<name>" when present in the request.
	StateParams []string
}

// Tracing starts a server span per request. The span continues any W3C
// trace context sent by the client, is renamed after the chi route once
// routing is done, and carries the configured state parameters.
func Tracing(cfg TracingConfig) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerPrefix + cfg.ServiceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPath(r.URL.Path),
				semconv.URLScheme(scheme(r)),
				semconv.UserAgentOriginal(r.UserAgent()),
			}
			attrs = append(attrs, stateAttributes(r, cfg.StateParams)...)

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rec := newStatusRecorder(w)
			r = r.WithContext(ctx)
			next.ServeHTTP(rec, r)

			if route := routePattern(r); route != "unknown" {
				span.SetName(r.Method + " " + route)
				span.SetAttributes(semconv.HTTPRoute(route))
			}
			span.SetAttributes(
				semconv.HTTPResponseStatusCode(rec.status),
				semconv.HTTPResponseBodySize(rec.bytes),
			)
			if location := rec.Header().Get("Location"); location != "" {
				span.SetAttributes(attribute.String("http.redirect_location", location))
			}
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}

func stateAttributes(r *http.Request, names []string) []attribute.KeyValue {
	if len(names) == 0 || r.URL.RawQuery == "" {
		return nil
	}
	query := r.URL.Query()
	var attrs []attribute.KeyValue
	for _, name := range names {
		if query.Has(name) {
			attrs = append(attrs, attribute.String("search."+name, query.Get(name)))
		}
	}
	return attrs
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

package tracing

import (
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type captureTransport struct {
	seen *http.Request
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.seen = req
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestWrapHTTPClientDoesNotMutateOriginalRequest(t *testing.T) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	capture := &captureTransport{}
	client := WrapHTTPClient(&http.Client{Transport: capture})

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})

	req, err := http.NewRequest(http.MethodGet, "http://upstream.test/v1/resource", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req = req.WithContext(trace.ContextWithSpanContext(req.Context(), spanCtx))

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	resp.Body.Close()

	if capture.seen == nil {
		t.Fatal("base transport never saw the request")
	}
	if capture.seen.Header.Get("traceparent") == "" {
		t.Fatal("expected traceparent header on the outbound request")
	}
	if got := req.Header.Get("traceparent"); got != "" {
		t.Fatalf("original request was mutated, traceparent = %q", got)
	}
	if capture.seen == req {
		t.Fatal("expected the outbound request to be a clone")
	}
}

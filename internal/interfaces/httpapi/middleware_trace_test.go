package httpapi

import "testing"

func TestShouldTraceRequest_SkippedPaths(t *testing.T) {
	paths := []string{"/healthz", "/health", "/livez", "/readyz", " /healthz ", "/live-stream"}
	for _, path := range paths {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
}

func TestShouldTraceRequest_TracedPaths(t *testing.T) {
	paths := []string{"/poll-status", "/poll-control", "/cron-tick", "/live-matches", "/"}
	for _, path := range paths {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

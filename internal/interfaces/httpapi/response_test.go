package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

func TestWriteSuccess_FlatBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["status"].(string); got != "ok" {
		t.Fatalf("expected status=ok, got %v", body["status"])
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad action", usecase.ErrInvalidInput), status: http.StatusBadRequest, message: "invalid input: bad action"},
		{name: "not found", err: fmt.Errorf("%w: fixture=x", usecase.ErrNotFound), status: http.StatusNotFound, message: "not found: fixture=x"},
		{name: "unknown poll action", err: fmt.Errorf("%w: action=pause", usecase.ErrUnknownPollAction), status: http.StatusBadRequest, message: "invalid input: unknown poll action: action=pause"},
		{name: "fixture not finished", err: fmt.Errorf("%w: fixture=x status=LIVE", usecase.ErrFixtureNotFinished), status: http.StatusBadRequest, message: "invalid input: fixture has no final score: fixture=x status=LIVE"},
		{name: "fixture not found", err: fmt.Errorf("%w: fixture=x", usecase.ErrFixtureNotFound), status: http.StatusNotFound, message: "fixture not found: fixture=x"},
		{name: "provider unavailable", err: fmt.Errorf("%w: sportmonks circuit open", usecase.ErrProviderUnavailable), status: http.StatusServiceUnavailable, message: "live score provider: dependency unavailable: sportmonks circuit open"},
		{name: "unauthorized", err: fmt.Errorf("%w: missing header", usecase.ErrUnauthorized), status: http.StatusUnauthorized, message: "Unauthorized"},
		{name: "dependency", err: fmt.Errorf("%w: db", usecase.ErrDependencyUnavailable), status: http.StatusServiceUnavailable, message: "dependency unavailable: db"},
		{name: "internal", err: errors.New("pq: connection refused"), status: http.StatusInternalServerError, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status got=%d want=%d", rec.Code, tt.status)
			}
			var body errorBody
			if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal response body: %v", err)
			}
			if body.Error != tt.message {
				t.Fatalf("error got=%q want=%q", body.Error, tt.message)
			}
		})
	}
}

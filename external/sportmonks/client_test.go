package sportmonks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/platform/resilience"
	"github.com/riskibarqy/score-predictor/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		BaseURL:        server.URL,
		Token:          "sm-token",
		MaxRetries:     maxRetries,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

const multiFixturesBody = `{
  "data": [
    {
      "id": 9001,
      "state_id": 2,
      "result_info": null,
      "participants": [
        {"id": 10, "name": "Home FC", "meta": {"location": "home"}},
        {"id": 20, "name": "Away FC", "meta": {"location": "away"}}
      ],
      "scores": [
        {"participant_id": 10, "description": "1ST_HALF", "score": {"goals": 1, "participant": "home"}},
        {"participant_id": 20, "description": "1ST_HALF", "score": {"goals": 0, "participant": "away"}},
        {"participant_id": 10, "description": "CURRENT", "score": {"goals": 2, "participant": "home"}},
        {"participant_id": 20, "description": "CURRENT", "score": {"goals": 1, "participant": "away"}}
      ],
      "periods": [
        {"description": "1st-half", "ticking": false, "minutes": 45},
        {"description": "2nd-half", "ticking": true, "minutes": 58}
      ]
    },
    {
      "id": 9002,
      "state_id": 5,
      "result_info": "Away FC won after full-time.",
      "participants": [
        {"id": 30, "meta": {"location": "home"}},
        {"id": 40, "meta": {"location": "away"}}
      ],
      "scores": [
        {"description": "CURRENT", "score": {"goals": 0, "participant": "home"}},
        {"description": "CURRENT", "score": {"goals": 3, "participant": "away"}}
      ]
    }
  ]
}`

func TestClient_FetchLiveStates_MapsMultiFixturePayload(t *testing.T) {
	t.Parallel()

	var gotPath, gotToken, gotInclude string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("api_token")
		gotInclude = r.URL.Query().Get("include")
		_, _ = w.Write([]byte(multiFixturesBody))
	}, 0, resilience.CircuitBreakerConfig{})

	states, err := client.FetchLiveStates(context.Background(), []int64{9002, 9001, 9001, -1})
	require.NoError(t, err)
	assert.Equal(t, "/fixtures/multi/9001,9002", gotPath)
	assert.Equal(t, "sm-token", gotToken)
	assert.Equal(t, liveIncludes, gotInclude)
	require.Len(t, states, 2)

	live := states[9001]
	assert.Equal(t, "1H", live.StatusCode)
	assert.Equal(t, fixture.StatusLive, live.Update.Status)
	require.NotNil(t, live.Update.HomeScore)
	require.NotNil(t, live.Update.AwayScore)
	assert.Equal(t, 2, *live.Update.HomeScore)
	assert.Equal(t, 1, *live.Update.AwayScore)
	require.NotNil(t, live.Update.Minute)
	assert.Equal(t, 58, *live.Update.Minute)

	finished := states[9002]
	assert.Equal(t, fixture.StatusFinished, finished.Update.Status)
	assert.Nil(t, finished.Update.Minute)
	require.NotNil(t, finished.Update.AwayScore)
	assert.Equal(t, 3, *finished.Update.AwayScore)
	assert.Equal(t, 0, *finished.Update.HomeScore)
}

func TestClient_FetchLiveStates_EmptyInputSkipsRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, 0, resilience.CircuitBreakerConfig{})

	states, err := client.FetchLiveStates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, states)
	assert.Zero(t, calls.Load())
}

func TestClient_FetchLiveStates_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data": []}`))
	}, 1, resilience.CircuitBreakerConfig{})

	states, err := client.FetchLiveStates(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Empty(t, states)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_FetchLiveStates_ClientErrorRedactsToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "bad token"}`))
	}, 3, resilience.CircuitBreakerConfig{})

	_, err := client.FetchLiveStates(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
	assert.NotContains(t, err.Error(), "sm-token")
}

func TestClient_FetchLiveStates_OpenCircuitReturnsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	_, err := client.FetchLiveStates(context.Background(), []int64{1})
	require.Error(t, err)

	_, err = client.FetchLiveStates(context.Background(), []int64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	assert.True(t, errors.Is(err, usecase.ErrProviderUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestStateCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stateID    int64
		resultInfo string
		wantCode   string
		wantStatus fixture.Status
	}{
		{stateID: 1, wantCode: "NS", wantStatus: fixture.StatusScheduled},
		{stateID: 3, wantCode: "HT", wantStatus: fixture.StatusLive},
		{stateID: 9, wantCode: "P", wantStatus: fixture.StatusLive},
		{stateID: 14, wantCode: "AET", wantStatus: fixture.StatusFinished},
		{stateID: 10, wantCode: "PST", wantStatus: fixture.StatusPostponed},
		{stateID: 12, wantCode: "CANC", wantStatus: fixture.StatusPostponed},
		{stateID: 15, wantCode: "SUSP", wantStatus: fixture.StatusSuspended},
		{stateID: 99, resultInfo: "Game finished", wantCode: "FT", wantStatus: fixture.StatusFinished},
		{stateID: 99, resultInfo: "match postponed", wantCode: "PST", wantStatus: fixture.StatusPostponed},
		{stateID: 99, wantCode: "NS", wantStatus: fixture.StatusScheduled},
	}
	for _, tc := range tests {
		code := stateCode(tc.stateID, tc.resultInfo)
		if code != tc.wantCode {
			t.Fatalf("state=%d info=%q got=%s want=%s", tc.stateID, tc.resultInfo, code, tc.wantCode)
		}
		if got := fixture.StatusFromProvider(code); got != tc.wantStatus {
			t.Fatalf("code=%s got=%s want=%s", code, got, tc.wantStatus)
		}
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.sportmonks.com/v3/football/fixtures/multi/1?api_token=abc&include=scores")
	assert.False(t, strings.Contains(got, "abc"))
	assert.Contains(t, got, "api_token=REDACTED")
}

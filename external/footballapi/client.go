package footballapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/platform/resilience"
	"github.com/riskibarqy/score-predictor/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL           = "https://v3.football.api-sports.io"
	defaultRequestsPerMinute = 10
	defaultRateBurst         = 2
	fixtureIDsPerRequest     = 20
	apiKeyHeader             = "x-apisports-key"
	sourceName               = "api-football"
)

var errProviderTransient = crerr.New("football api transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerMinute int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads live fixture states from an API-Football compatible provider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	retry          resilience.RetryPolicy
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rpm := cfg.RequestsPerMinute
	if rpm < 1 {
		rpm = defaultRequestsPerMinute
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		retry:          resilience.RetryPolicy{MaxRetries: max(cfg.MaxRetries, 0), BaseBackoff: cfg.RetryBackoff},
		limiter:        rate.NewLimiter(rate.Limit(float64(rpm)/60.0), defaultRateBurst),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(sourceName, breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Source() string {
	return sourceName
}

// FetchLiveStates requests fixtures in batches of twenty ids.
func (c *Client) FetchLiveStates(ctx context.Context, externalIDs []int64) (map[int64]usecase.ProviderFixtureState, error) {
	ids := uniqueSortedIDs(externalIDs)
	out := make(map[int64]usecase.ProviderFixtureState, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	for start := 0; start < len(ids); start += fixtureIDsPerRequest {
		end := min(start+fixtureIDsPerRequest, len(ids))
		chunk := ids[start:end]

		idValues := make([]string, 0, len(chunk))
		for _, externalID := range chunk {
			idValues = append(idValues, strconv.FormatInt(externalID, 10))
		}

		var envelope fixturesEnvelope
		if err := c.doJSON(ctx, "/fixtures", map[string]string{"ids": strings.Join(idValues, "-")}, &envelope); err != nil {
			return nil, fmt.Errorf("fetch fixtures ids=%d..%d: %w", chunk[0], chunk[len(chunk)-1], err)
		}
		if msg := envelope.errorMessage(); msg != "" {
			return nil, fmt.Errorf("provider rejected request: %s", sanitizeSensitiveText(msg, c.apiKey))
		}

		for _, item := range envelope.Response {
			if item.Fixture.ID <= 0 {
				continue
			}
			out[item.Fixture.ID] = mapFixtureState(item)
		}
	}

	c.logger.DebugContext(ctx, "football api live states fetched", "requested", len(ids), "received", len(out))
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football api circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: api-football circuit open", usecase.ErrProviderUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			c.breaker.Record(reqErr, isCircuitFailure)
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: wait for api-football quota: %v", usecase.ErrProviderUnavailable, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errProviderTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errProviderTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.retry.MaxRetries {
			break
		}
		if err := c.retry.Wait(ctx, attempt); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapFixtureState(item fixtureItem) usecase.ProviderFixtureState {
	code := strings.ToUpper(strings.TrimSpace(item.Fixture.Status.Short))
	update := fixture.LiveUpdate{
		Status:    fixture.StatusFromProvider(code),
		HomeScore: item.Goals.Home,
		AwayScore: item.Goals.Away,
	}
	if update.Status == fixture.StatusLive && item.Fixture.Status.Elapsed != nil {
		minute := *item.Fixture.Status.Elapsed
		update.Minute = &minute
	}
	return usecase.ProviderFixtureState{
		ExternalID: item.Fixture.ID,
		StatusCode: code,
		Update:     update,
	}
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return stderrors.Is(err, errProviderTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func uniqueSortedIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, externalID := range ids {
		if externalID <= 0 {
			continue
		}
		if _, ok := seen[externalID]; ok {
			continue
		}
		seen[externalID] = struct{}{}
		out = append(out, externalID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

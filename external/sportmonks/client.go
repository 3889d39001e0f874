package sportmonks

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
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
)

const (
	defaultBaseURL       = "https://api.sportmonks.com/v3/football"
	fixtureIDsPerRequest = 50
	liveIncludes         = "participants;scores;periods"
	sourceName           = "sportmonks"
)

var (
	errSportMonksTransient = crerr.New("sportmonks transient failure")
	apiTokenParamRegex     = regexp.MustCompile(`(?i)(api_token=)[^&\s]+`)
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads live fixture states from the SportMonks v3 football API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	retry          resilience.RetryPolicy
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
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		retry:          resilience.RetryPolicy{MaxRetries: max(cfg.MaxRetries, 0), BaseBackoff: cfg.RetryBackoff},
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(sourceName, breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Source() string {
	return sourceName
}

// FetchLiveStates requests fixtures through the multi endpoint, fifty ids per call.
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
		path := "/fixtures/multi/" + strings.Join(idValues, ",")
		if err := c.doJSON(ctx, path, map[string]string{"include": liveIncludes}, &envelope); err != nil {
			return nil, fmt.Errorf("fetch fixtures ids=%d..%d: %w", chunk[0], chunk[len(chunk)-1], err)
		}

		for _, item := range envelope.Data {
			if item.ID <= 0 {
				continue
			}
			out[item.ID] = mapFixtureState(item)
		}
	}

	c.logger.DebugContext(ctx, "sportmonks live states fetched", "requested", len(ids), "received", len(out))
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: sportmonks circuit open", usecase.ErrProviderUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

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
		return fmt.Errorf("decode sportmonks payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %s", c.sanitize(err.Error()))
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSportMonksTransient, c.sanitize(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSportMonksTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: sportmonks status=%d body=%s", errSportMonksTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("sportmonks status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
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
		lastErr = fmt.Errorf("sportmonks request failed")
	}
	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) sanitize(value string) string {
	value = apiTokenParamRegex.ReplaceAllString(value, "${1}REDACTED")
	if c.token == "" {
		return value
	}
	return strings.ReplaceAll(value, c.token, "REDACTED")
}

func mapFixtureState(item fixtureDetails) usecase.ProviderFixtureState {
	code := stateCode(item.StateID, item.ResultInfo)
	home, away := resolveFixtureScores(item.Scores, item.Participants)
	update := fixture.LiveUpdate{
		Status:    fixture.StatusFromProvider(code),
		HomeScore: home,
		AwayScore: away,
	}
	if update.Status == fixture.StatusLive {
		update.Minute = tickingMinute(item.Periods)
	}
	return usecase.ProviderFixtureState{
		ExternalID: item.ID,
		StatusCode: code,
		Update:     update,
	}
}

// stateCode translates a SportMonks state id into the short status codes
// shared with the other providers.
func stateCode(stateID int64, resultInfo string) string {
	switch stateID {
	case 1:
		return "NS"
	case 2:
		return "1H"
	case 3:
		return "HT"
	case 4:
		return "BT"
	case 6, 7, 8:
		return "ET"
	case 9:
		return "P"
	case 5:
		return "FT"
	case 13, 14:
		return "AET"
	case 10:
		return "PST"
	case 11:
		return "ABD"
	case 12:
		return "CANC"
	case 15, 16:
		return "SUSP"
	}

	info := strings.ToLower(strings.TrimSpace(resultInfo))
	switch {
	case strings.Contains(info, "postpon"):
		return "PST"
	case strings.Contains(info, "cancel"), strings.Contains(info, "abandon"):
		return "CANC"
	case strings.Contains(info, "live"), strings.Contains(info, "in play"), strings.Contains(info, "half"):
		return "LIVE"
	case strings.Contains(info, "finish"), strings.Contains(info, "full time"), strings.Contains(info, "aet"), strings.Contains(info, "pen"):
		return "FT"
	default:
		return "NS"
	}
}

func resolveFixtureScores(scores []fixtureScoreItem, participants []fixtureParticipant) (*int, *int) {
	if len(scores) == 0 {
		return nil, nil
	}

	var homeParticipantID, awayParticipantID int64
	for _, item := range participants {
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			homeParticipantID = item.ID
		case "away":
			awayParticipantID = item.ID
		}
	}

	bestWeight := 0
	var home, away *int
	for _, score := range scores {
		value, ok := score.numericScore()
		if !ok {
			continue
		}

		weight := scoreDescriptionWeight(score.Description)
		if weight > bestWeight {
			bestWeight = weight
			home, away = nil, nil
		}
		if weight < bestWeight {
			continue
		}

		participantID := score.ParticipantID
		if participantID == 0 {
			participantID = score.Score.participantFor(homeParticipantID, awayParticipantID)
		}
		switch {
		case participantID == homeParticipantID && homeParticipantID > 0:
			home = intPtr(value)
		case participantID == awayParticipantID && awayParticipantID > 0:
			away = intPtr(value)
		}
	}
	return home, away
}

func scoreDescriptionWeight(raw string) int {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "current":
		return 6
	case strings.Contains(value, "normal_time"), strings.Contains(value, "90"):
		return 5
	case strings.Contains(value, "extra_time"):
		return 4
	case strings.Contains(value, "penalt"):
		return 3
	case value == "1st_half", value == "2nd_half":
		return 2
	default:
		return 1
	}
}

func tickingMinute(periods []fixturePeriod) *int {
	for _, period := range periods {
		if !period.Ticking || period.Minutes == nil {
			continue
		}
		return intPtr(*period.Minutes)
	}
	return nil
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
	return stderrors.Is(err, errSportMonksTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiTokenParamRegex.ReplaceAllString(rawURL, "${1}REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
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

func intPtr(value int) *int {
	return &value
}

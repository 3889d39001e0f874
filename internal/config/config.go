package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	CORSAllowedOrigins      []string
	LogLevel                logging.Level
	LogFormat               logging.Format
	Timezone                *time.Location
	DBURL                   string
	DBDisablePreparedBinary bool
	DBMaxOpenConns          int
	PprofEnabled            bool
	PprofAddr               string
	UptraceEnabled          bool
	UptraceDSN              string
	PyroscopeEnabled        bool
	PyroscopeServerAddress  string
	PyroscopeAppName        string
	PyroscopeAuthToken      string
	PyroscopeUploadRate     time.Duration
	LiveScoreProvider       string
	FootballAPI             FootballAPIConfig
	SportMonks              SportMonksConfig
	Poll                    PollConfig
	Cron                    CronConfig
	LiveStream              LiveStreamConfig
	Redis                   RedisConfig
}

type FootballAPIConfig struct {
	Enabled               bool
	BaseURL               string
	APIKey                string
	Timeout               time.Duration
	MaxRetries            int
	RequestsPerMinute     int
	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
}

// SportMonksConfig reuses the retry and circuit settings of FootballAPIConfig.
type SportMonksConfig struct {
	BaseURL string
	Token   string
}

type PollConfig struct {
	Interval        time.Duration
	FetchTimeout    time.Duration
	Workers         int
	ScoringWorkers  int
	FixtureCacheTTL time.Duration
	LookBehind      time.Duration
	LookAhead       time.Duration
	AutoStart       bool
}

type CronConfig struct {
	Secret       string
	MarkerHeader string
}

type LiveStreamConfig struct {
	PingInterval time.Duration
	BufferSize   int
}

type RedisConfig struct {
	URL     string
	Channel string
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProd
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	tz, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_TIMEZONE: %w", err)
	}

	readTimeout, err := getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	// Zero disables the write deadline server-wide; the live stream manages its own.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	footballAPI, err := loadFootballAPIConfig()
	if err != nil {
		return Config{}, err
	}
	provider, err := parseLiveScoreProvider(getEnv("LIVE_SCORE_PROVIDER", ProviderAPIFootball))
	if err != nil {
		return Config{}, err
	}
	poll, err := loadPollConfig()
	if err != nil {
		return Config{}, err
	}
	liveStream, err := loadLiveStreamConfig()
	if err != nil {
		return Config{}, err
	}

	cron := CronConfig{
		Secret:       strings.TrimSpace(getEnv("CRON_SECRET", "")),
		MarkerHeader: http.CanonicalHeaderKey(strings.TrimSpace(getEnv("CRON_MARKER_HEADER", "X-Vercel-Cron"))),
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "score-predictor-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:               logging.ParseFormat(getEnv("APP_LOG_FORMAT", "json")),
		Timezone:                tz,
		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		DBMaxOpenConns:          dbMaxOpenConns,
		PprofEnabled:            pprofEnabled,
		PprofAddr:               pprofAddr,
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		PyroscopeEnabled:        pyroscopeEnabled,
		PyroscopeServerAddress:  pyroscopeServerAddress,
		PyroscopeAuthToken:      strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:     pyroscopeUploadRate,
		LiveScoreProvider:       provider,
		FootballAPI:             footballAPI,
		SportMonks: SportMonksConfig{
			BaseURL: strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football")),
			Token:   strings.TrimSpace(getEnv("SPORTMONKS_API_TOKEN", "")),
		},
		Poll:                    poll,
		Cron:                    cron,
		LiveStream:              liveStream,
		Redis: RedisConfig{
			URL:     strings.TrimSpace(getEnv("REDIS_URL", "")),
			Channel: strings.TrimSpace(getEnv("REDIS_CHANNEL", "score-predictor:live")),
		},
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	if cfg.IsProduction() && cfg.Cron.Secret == "" && cfg.Cron.MarkerHeader == "" {
		return Config{}, fmt.Errorf("CRON_SECRET or CRON_MARKER_HEADER is required when APP_ENV=%s", EnvProd)
	}

	return cfg, nil
}

func loadFootballAPIConfig() (FootballAPIConfig, error) {
	enabled, err := strconv.ParseBool(getEnv("FOOTBALL_API_ENABLED", "true"))
	if err != nil {
		return FootballAPIConfig{}, fmt.Errorf("parse FOOTBALL_API_ENABLED: %w", err)
	}
	timeout, err := getEnvAsDuration("FOOTBALL_API_TIMEOUT", "10s")
	if err != nil {
		return FootballAPIConfig{}, err
	}
	maxRetries, err := getEnvAsInt("FOOTBALL_API_MAX_RETRIES", 1)
	if err != nil {
		return FootballAPIConfig{}, fmt.Errorf("parse FOOTBALL_API_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return FootballAPIConfig{}, fmt.Errorf("FOOTBALL_API_MAX_RETRIES must be >= 0")
	}
	rpm, err := getEnvAsInt("FOOTBALL_API_REQUESTS_PER_MINUTE", 10)
	if err != nil {
		return FootballAPIConfig{}, fmt.Errorf("parse FOOTBALL_API_REQUESTS_PER_MINUTE: %w", err)
	}
	if rpm < 1 {
		return FootballAPIConfig{}, fmt.Errorf("FOOTBALL_API_REQUESTS_PER_MINUTE must be >= 1")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return FootballAPIConfig{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_ENABLED: %w", err)
	}
	failureCount, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return FootballAPIConfig{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if failureCount < 1 {
		return FootballAPIConfig{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	openTimeout, err := getEnvAsDuration("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return FootballAPIConfig{}, err
	}
	halfOpenMaxReq, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return FootballAPIConfig{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if halfOpenMaxReq < 1 {
		return FootballAPIConfig{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	return FootballAPIConfig{
		Enabled:               enabled,
		BaseURL:               strings.TrimSpace(getEnv("FOOTBALL_API_BASE_URL", "https://v3.football.api-sports.io")),
		APIKey:                strings.TrimSpace(getEnv("FOOTBALL_API_KEY", "")),
		Timeout:               timeout,
		MaxRetries:            maxRetries,
		RequestsPerMinute:     rpm,
		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   failureCount,
		CircuitOpenTimeout:    openTimeout,
		CircuitHalfOpenMaxReq: halfOpenMaxReq,
	}, nil
}

func loadPollConfig() (PollConfig, error) {
	interval, err := getEnvAsDuration("POLL_INTERVAL", "15m")
	if err != nil {
		return PollConfig{}, err
	}
	fetchTimeout, err := getEnvAsDuration("POLL_FETCH_TIMEOUT", "20s")
	if err != nil {
		return PollConfig{}, err
	}
	workers, err := getEnvAsInt("POLL_WORKERS", 4)
	if err != nil {
		return PollConfig{}, fmt.Errorf("parse POLL_WORKERS: %w", err)
	}
	if workers < 1 {
		return PollConfig{}, fmt.Errorf("POLL_WORKERS must be >= 1")
	}
	scoringWorkers, err := getEnvAsInt("SCORING_WORKERS", 4)
	if err != nil {
		return PollConfig{}, fmt.Errorf("parse SCORING_WORKERS: %w", err)
	}
	if scoringWorkers < 1 {
		return PollConfig{}, fmt.Errorf("SCORING_WORKERS must be >= 1")
	}
	cacheTTL, err := getEnvAsDuration("POLL_FIXTURE_CACHE_TTL", "30s")
	if err != nil {
		return PollConfig{}, err
	}
	lookBehind, err := getEnvAsDuration("POLL_LOOK_BEHIND", "4h")
	if err != nil {
		return PollConfig{}, err
	}
	lookAhead, err := getEnvAsDuration("POLL_LOOK_AHEAD", "36h")
	if err != nil {
		return PollConfig{}, err
	}
	autoStart, err := strconv.ParseBool(getEnv("POLL_AUTO_START", "true"))
	if err != nil {
		return PollConfig{}, fmt.Errorf("parse POLL_AUTO_START: %w", err)
	}

	return PollConfig{
		Interval:        interval,
		FetchTimeout:    fetchTimeout,
		Workers:         workers,
		ScoringWorkers:  scoringWorkers,
		FixtureCacheTTL: cacheTTL,
		LookBehind:      lookBehind,
		LookAhead:       lookAhead,
		AutoStart:       autoStart,
	}, nil
}

func loadLiveStreamConfig() (LiveStreamConfig, error) {
	pingInterval, err := getEnvAsDuration("LIVE_STREAM_PING_INTERVAL", "30s")
	if err != nil {
		return LiveStreamConfig{}, err
	}
	buffer, err := getEnvAsInt("LIVE_STREAM_BUFFER", 16)
	if err != nil {
		return LiveStreamConfig{}, fmt.Errorf("parse LIVE_STREAM_BUFFER: %w", err)
	}
	if buffer < 1 {
		return LiveStreamConfig{}, fmt.Errorf("LIVE_STREAM_BUFFER must be >= 1")
	}
	return LiveStreamConfig{PingInterval: pingInterval, BufferSize: buffer}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

// getEnvAsDuration parses key and rejects non-positive values.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

const (
	ProviderAPIFootball = "api-football"
	ProviderSportMonks  = "sportmonks"
)

func parseLiveScoreProvider(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case ProviderAPIFootball, ProviderSportMonks:
		return value, nil
	default:
		return "", fmt.Errorf("invalid LIVE_SCORE_PROVIDER %q: valid values are %s, %s", v, ProviderAPIFootball, ProviderSportMonks)
	}
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

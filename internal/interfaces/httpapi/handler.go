package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/score-predictor/internal/domain/pollrun"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
	"github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

const (
	defaultStreamPingInterval = 30 * time.Second
	defaultStreamBufferSize   = 16
)

// StreamConfig tunes the live-stream endpoint.
type StreamConfig struct {
	PingInterval time.Duration
	BufferSize   int
}

type Handler struct {
	pollService      *usecase.PollService
	cronService      *usecase.CronTriggerService
	scoringService   *usecase.ScoringService
	userStatsService *usecase.UserStatsService
	broadcaster      *broadcast.Broadcaster
	ids              id.Generator
	stream           StreamConfig
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	pollService *usecase.PollService,
	cronService *usecase.CronTriggerService,
	scoringService *usecase.ScoringService,
	userStatsService *usecase.UserStatsService,
	broadcaster *broadcast.Broadcaster,
	ids id.Generator,
	stream StreamConfig,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if stream.PingInterval <= 0 {
		stream.PingInterval = defaultStreamPingInterval
	}
	if stream.BufferSize < 1 {
		stream.BufferSize = defaultStreamBufferSize
	}

	return &Handler{
		pollService:      pollService,
		cronService:      cronService,
		scoringService:   scoringService,
		userStatsService: userStatsService,
		broadcaster:      broadcaster,
		ids:              ids,
		stream:           stream,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	stats := h.broadcaster.Stats()
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": stats.Subscribers,
		"broadcast":   stats,
	})
}

func (h *Handler) PollStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PollStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.pollService.Status())
}

type pollControlRequest struct {
	Action string `validate:"required,oneof=start stop smart-start force-poll restart"`
}

type pollControlResponse struct {
	Action string             `json:"action"`
	Result any                `json:"result"`
	Status usecase.PollStatus `json:"status"`
}

func (h *Handler) PollControl(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PollControl")
	defer span.End()

	req := pollControlRequest{Action: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("action")))}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: action must be one of start, stop, smart-start, force-poll, restart", usecase.ErrUnknownPollAction))
		return
	}

	var result any
	switch req.Action {
	case "start":
		result = describeTransition(h.pollService.Start(ctx), "started", "already active")
	case "stop":
		result = describeTransition(h.pollService.Stop(), "stopped", "already stopped")
	case "restart":
		result = describeTransition(h.pollService.Restart(ctx), "restarted", "restart failed")
	case "smart-start":
		smart, err := h.pollService.SmartStart(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "smart start failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		result = smart
	case "force-poll":
		result = h.pollService.ForcePoll(ctx, pollrun.TriggerManual)
	}

	h.logger.InfoContext(ctx, "poll control", "action", req.Action)
	writeSuccess(ctx, w, http.StatusOK, pollControlResponse{
		Action: req.Action,
		Result: result,
		Status: h.pollService.Status(),
	})
}

func describeTransition(changed bool, done, noop string) string {
	if changed {
		return done
	}
	return noop
}

func (h *Handler) CronTick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CronTick")
	defer span.End()

	caller, _ := cronCallerFromContext(ctx)
	result, err := h.cronService.Tick(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "cron tick failed", "caller", caller, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "cron tick", "caller", caller, "action", result.Action, "reason", result.Reason)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) LiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LiveMatches")
	defer span.End()

	view, err := h.pollService.LiveWindow(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "load live window failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) RescoreFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RescoreFixture")
	defer span.End()

	result, err := h.scoringService.RescoreFixture(ctx, r.PathValue("fixtureID"))
	if err != nil {
		h.logger.WarnContext(ctx, "rescore fixture failed", "fixture_id", r.PathValue("fixtureID"), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserStats")
	defer span.End()

	stats, err := h.userStatsService.Get(ctx, r.PathValue("userID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, stats)
}

package httpapi

import (
	"context"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/score-predictor/internal/platform/broadcast"
	"github.com/valyala/bytebufferpool"
)

const smartStartTimeout = 30 * time.Second

type connectionPayload struct {
	SubscriberID string `json:"subscriberId"`
}

type streamErrorPayload struct {
	Message string `json:"message"`
}

// LiveStream serves server-sent events. The snapshot is written before the
// subscriber registers so no update can arrive ahead of initial data.
func (h *Handler) LiveStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.DebugContext(ctx, "live stream write deadline not cleared", "error", err)
	}

	subscriberID, err := h.ids.NewID()
	if err != nil {
		h.logger.ErrorContext(ctx, "generate subscriber id failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	go h.smartStartInBackground(ctx)

	if err := h.writeEvent(w, rc, broadcast.EventConnection, connectionPayload{SubscriberID: subscriberID}); err != nil {
		return
	}

	view, err := h.pollService.LiveWindow(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "live stream snapshot failed", "subscriber_id", subscriberID, "error", err)
		if err := h.writeEvent(w, rc, broadcast.EventError, streamErrorPayload{Message: "live data temporarily unavailable"}); err != nil {
			return
		}
	} else if err := h.writeEvent(w, rc, broadcast.EventInitialData, view); err != nil {
		return
	}

	sub := broadcast.NewChannelSubscriber(h.stream.BufferSize)
	h.broadcaster.Add(subscriberID, sub)
	defer h.broadcaster.Remove(subscriberID)

	ticker := time.NewTicker(h.stream.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Messages():
			if !ok {
				// dropped by the broadcaster
				return
			}
			if err := h.writeMessage(w, rc, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.writeEvent(w, rc, broadcast.EventPing, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) smartStartInBackground(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), smartStartTimeout)
	defer cancel()

	if _, err := h.pollService.SmartStart(ctx); err != nil {
		h.logger.WarnContext(ctx, "smart start from live stream failed", "error", err)
	}
}

func (h *Handler) writeEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	return h.writeMessage(w, rc, broadcast.NewMessage(eventType, data, time.Now()))
}

func (h *Handler) writeMessage(w http.ResponseWriter, rc *http.ResponseController, msg broadcast.Message) error {
	payload, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("encode live stream event failed", "event", msg.Type, "error", err)
		return nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("data: ")
	_, _ = buf.Write(payload)
	_, _ = buf.WriteString("\n\n")

	if _, err := w.Write(buf.B); err != nil {
		return err
	}
	return rc.Flush()
}

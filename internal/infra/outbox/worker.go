package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "homestay/internal/app/outbox"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Source is the store side of the publisher: claim pending records, then
// acknowledge the ones the broker accepted.
type Source interface {
	Claim(ctx context.Context, max int) ([]appoutbox.EventRecord, error)
	MarkSent(ctx context.Context, ids []string) error
}

// Worker polls the outbox and publishes each record as a CloudEvents
// envelope. A failed publish leaves the record unclaimed for the next tick.
type Worker struct {
	Store       Source
	Producer    Producer
	Logger      *slog.Logger
	Interval    time.Duration
	BatchSize   int
	TopicPrefix string
	EventSource string
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	records, err := w.Store.Claim(ctx, w.batchSize())
	if err != nil || len(records) == 0 {
		return err
	}
	sent := make([]string, 0, len(records))
	for _, rec := range records {
		payload, headers, err := w.formatPayload(rec)
		if err != nil {
			w.log().Warn("outbox record rejected", "event", rec.Name, "error", err)
			sent = append(sent, rec.ID)
			continue
		}
		if err := w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, payload, headers); err != nil {
			w.log().Error("outbox publish failed", "event", rec.Name, "error", err)
			break
		}
		sent = append(sent, rec.ID)
	}
	return w.Store.MarkSent(ctx, sent)
}

func (w *Worker) formatPayload(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            rec.Name + ".v1",
		"source":          w.source(),
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 32
	}
	return w.BatchSize
}

func (w *Worker) source() string {
	if w.EventSource != "" {
		return w.EventSource
	}
	return "app://homestay"
}

func (w *Worker) log() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

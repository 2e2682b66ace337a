package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/asafonov/screenvault/internal/core/domain"
)

// Publisher emits screenshot lifecycle notifications. Subjects are
// "<prefix>.analyzed" and "<prefix>.deleted".
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

func New(url, subjectPrefix string) (*Publisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("screenvault"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, subjectPrefix: subjectPrefix}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type analyzedEvent struct {
	ScreenshotID string    `json:"screenshot_id"`
	AnalysisType string    `json:"analysis_type"`
	At           time.Time `json:"at"`
}

type deletedEvent struct {
	ScreenshotID string    `json:"screenshot_id"`
	At           time.Time `json:"at"`
}

func (p *Publisher) PublishAnalyzed(_ context.Context, screenshotID string, typ domain.AnalysisType) error {
	return p.publish(p.subjectPrefix+".analyzed", analyzedEvent{
		ScreenshotID: screenshotID,
		AnalysisType: string(typ),
		At:           time.Now().UTC(),
	})
}

func (p *Publisher) PublishDeleted(_ context.Context, screenshotID string) error {
	return p.publish(p.subjectPrefix+".deleted", deletedEvent{
		ScreenshotID: screenshotID,
		At:           time.Now().UTC(),
	})
}

func (p *Publisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

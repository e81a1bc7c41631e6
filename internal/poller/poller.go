package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/andresGon/cursor-pet/internal/catalog"
	"github.com/segmentio/kafka-go"
)

// messageReader is the slice of kafka.Reader the poller consumes.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Poller listens for content update events from the catalog CMS and drops
// the cached listing so the next read refetches fresh data.
type Poller struct {
	cache  catalog.ListingCache
	reader messageReader
	logger *slog.Logger
}

func New(cache catalog.ListingCache, logger *slog.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "catalog-updates",
		GroupID:  "storefront-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{cache: cache, reader: reader, logger: logger}
}

// catalogEvent is the CMS webhook payload relayed onto the topic.
type catalogEvent struct {
	Event string `json:"event"`
	Model string `json:"model"`
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.processMessage(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("error closing kafka reader", "error", err)
	}
}

func (p *Poller) processMessage(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		p.logger.Error("error reading message", "error", err)
		return
	}

	var event catalogEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.Error("error parsing message", "error", err)
		return
	}

	if event.Model != "product" {
		return
	}

	if err := p.cache.Delete(ctx); err != nil {
		p.logger.Error("failed to invalidate listing cache", "error", err)
		return
	}
	p.logger.Info("listing cache invalidated", "event", event.Event)
}

package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/andresGon/cursor-pet/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type fakeReader struct {
	messages []kafka.Message
	pos      int
}

func (f *fakeReader) ReadMessage(context.Context) (kafka.Message, error) {
	if f.pos >= len(f.messages) {
		return kafka.Message{}, context.Canceled
	}
	m := f.messages[f.pos]
	f.pos++
	return m, nil
}

func (f *fakeReader) Close() error { return nil }

type fakeCache struct {
	m       sync.Mutex
	deletes int
	err     error
}

func (f *fakeCache) Get(context.Context) ([]domain.Product, error) { return nil, nil }

func (f *fakeCache) Set(context.Context, []domain.Product) error { return nil }

func (f *fakeCache) Delete(context.Context) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.deletes++
	return f.err
}

func newTestPoller(reader messageReader, cache *fakeCache) *Poller {
	return &Poller{
		cache:  cache,
		reader: reader,
		logger: slog.New(slog.DiscardHandler),
	}
}

func TestProcessMessage_ProductEventInvalidatesCache(t *testing.T) {
	cache := &fakeCache{}
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte(`{"event":"entry.update","model":"product"}`)},
	}}

	p := newTestPoller(reader, cache)
	p.processMessage(context.Background())

	assert.Equal(t, 1, cache.deletes)
}

func TestProcessMessage_OtherModelsAreIgnored(t *testing.T) {
	cache := &fakeCache{}
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte(`{"event":"entry.update","model":"category"}`)},
	}}

	p := newTestPoller(reader, cache)
	p.processMessage(context.Background())

	assert.Equal(t, 0, cache.deletes)
}

func TestProcessMessage_MalformedPayloadIsSwallowed(t *testing.T) {
	cache := &fakeCache{}
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte("{not json")},
	}}

	p := newTestPoller(reader, cache)
	p.processMessage(context.Background())

	assert.Equal(t, 0, cache.deletes)
}

func TestProcessMessage_CacheErrorDoesNotPanic(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	reader := &fakeReader{messages: []kafka.Message{
		{Value: []byte(`{"event":"entry.delete","model":"product"}`)},
	}}

	p := newTestPoller(reader, cache)
	p.processMessage(context.Background())

	assert.Equal(t, 1, cache.deletes)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	p := newTestPoller(&fakeReader{}, &fakeCache{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	<-done
}

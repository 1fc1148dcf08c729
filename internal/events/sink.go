package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"venueRouter/internal/model"
	"venueRouter/internal/storage"
)

// Sink receives the notifications of one committed router call.
type Sink interface {
	Publish(ctx context.Context, events []model.Event) error
}

// JournalSink encodes notifications and appends them to a storage backend.
// Log indexes increase monotonically across calls.
type JournalSink struct {
	codec   *Codec
	store   storage.Storage
	chainID uint64
	address common.Address

	mu        sync.Mutex
	nextIndex uint64
}

func NewJournalSink(codec *Codec, store storage.Storage, chainID uint64, address common.Address) *JournalSink {
	return &JournalSink{codec: codec, store: store, chainID: chainID, address: address}
}

func (s *JournalSink) Publish(_ context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recordedAt := time.Now().UTC().Format(time.RFC3339)
	records := make([]model.LogRecord, 0, len(events))
	for i, ev := range events {
		record, err := s.codec.Encode(s.chainID, s.address, s.nextIndex+uint64(i), ev)
		if err != nil {
			return fmt.Errorf("encode %s: %w", ev.EventName(), err)
		}
		record.RecordedAt = recordedAt
		records = append(records, record)
	}
	if err := s.store.PutLogBatch(records); err != nil {
		return err
	}
	s.nextIndex += uint64(len(records))
	return nil
}

// LogSink writes each notification to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, events []model.Event) error {
	for _, ev := range events {
		s.logger.Debug("notification",
			zap.String("event", ev.EventName()),
			zap.Uint64("block", ev.EventBlock()),
			zap.Any("payload", ev),
		)
	}
	return nil
}

// Recorder keeps every published notification in memory.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *Recorder) Publish(_ context.Context, events []model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Multi publishes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, events []model.Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package telemetry

import (
	"sync"
	"time"
	"waitbot/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// flushThreshold bounds memory: the buffer drains itself once it grows past
// this many events, in addition to the final flush on shutdown.
const flushThreshold = 256

// Buffer collects telemetry events in memory and writes them to the log when
// flushed. Events are uuid-stamped at record time.
type Buffer struct {
	mu     sync.Mutex
	events []domain.Event
}

func New() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Record(event string, fields map[string]any) {
	id, err := uuid.NewV4()
	if err != nil {
		log.Warn().Err(err).Msg("failed to generate event id")
		return
	}

	b.mu.Lock()
	b.events = append(b.events, domain.Event{
		ID:     id.String(),
		Name:   event,
		At:     time.Now(),
		Fields: fields,
	})
	full := len(b.events) >= flushThreshold
	b.mu.Unlock()

	if full {
		b.Flush()
	}
}

func (b *Buffer) Flush() {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.mu.Unlock()

	for _, event := range events {
		log.Info().
			Str("eventId", event.ID).
			Str("event", event.Name).
			Time("at", event.At).
			Fields(event.Fields).
			Msg("telemetry event")
	}
}

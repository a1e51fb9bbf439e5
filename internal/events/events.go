// Package events carries in-process notifications about badge issuance.
//
// Publishers (the issuance services) emit BadgeIssued after a grant has been
// confirmed by the external service and recorded. Subscribers run
// synchronously on the publishing goroutine, in subscription order. A panic in
// one subscriber is recovered and logged; the remaining subscribers still run
// and the publisher never observes the failure.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source tells manual from automatic grants.
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

// BadgeIssued describes one recorded grant.
type BadgeIssued struct {
	RecordID    int64
	RecipientID int64
	IssueID     string
	BadgeID     string
	// CourseID is 0 for site-level grants.
	CourseID int64
	// IssuedBy is the acting user, or 0 for automatic grants.
	IssuedBy   int64
	Source     Source
	OccurredAt time.Time
}

// Handler receives published events.
type Handler func(ctx context.Context, ev BadgeIssued)

// Publisher is the narrow interface services depend on.
type Publisher interface {
	Publish(ctx context.Context, ev BadgeIssued)
}

// Bus fans events out to subscribers. The zero value is ready to use and a
// nil *Bus drops everything.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus returns a bus with the given subscribers already attached.
func NewBus(handlers ...Handler) *Bus {
	b := &Bus{}
	for _, h := range handlers {
		b.Subscribe(h)
	}
	return b
}

// Subscribe attaches h. Nil handlers are ignored.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers ev to every subscriber. OccurredAt defaults to now.
func (b *Bus) Publish(ctx context.Context, ev BadgeIssued) {
	if b == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.RUnlock()

	for _, h := range hs {
		deliver(ctx, h, ev)
	}
}

func deliver(ctx context.Context, h Handler, ev BadgeIssued) {
	defer func() {
		if r := recover(); r != nil {
			lg := zerolog.Ctx(ctx)
			if lg.GetLevel() == zerolog.Disabled {
				lg = &log.Logger
			}
			lg.Error().
				Interface("panic", r).
				Str("issue_id", ev.IssueID).
				Msg("badge_issued subscriber panicked")
		}
	}()
	h(ctx, ev)
}

package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// LogObserver writes one structured line per grant to lg.
func LogObserver(lg zerolog.Logger) Handler {
	return func(_ context.Context, ev BadgeIssued) {
		lg.Info().
			Int64("record_id", ev.RecordID).
			Int64("user_id", ev.RecipientID).
			Int64("course_id", ev.CourseID).
			Int64("issued_by", ev.IssuedBy).
			Str("badge_id", ev.BadgeID).
			Str("issue_id", ev.IssueID).
			Str("source", string(ev.Source)).
			Time("occurred_at", ev.OccurredAt).
			Msg("badge issued")
	}
}

// IssuedCounter counts grants by source (manual|auto).
type IssuedCounter struct {
	vec *prometheus.CounterVec
}

// NewIssuedCounter creates issuebadge_badges_issued_total and registers it
// with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewIssuedCounter(reg prometheus.Registerer) (*IssuedCounter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuebadge_badges_issued_total",
			Help: "Badges issued and recorded, by source.",
		},
		[]string{"source"},
	)
	if err := reg.Register(vec); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		vec = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return &IssuedCounter{vec: vec}, nil
}

// Handler returns the bus subscriber that increments the counter.
func (c *IssuedCounter) Handler() Handler {
	return func(_ context.Context, ev BadgeIssued) {
		src := ev.Source
		if src == "" {
			src = SourceManual
		}
		c.vec.WithLabelValues(string(src)).Inc()
	}
}

package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
)

// BadgesOutcome is the result of listing the badge catalog. On failure
// Success is false, Badges is empty (never nil) and Error holds the message.
type BadgesOutcome struct {
	Success bool             `json:"success"`
	Badges  []badgeapi.Badge `json:"badges"`
	Error   string           `json:"error,omitempty"`
}

// BadgeService exposes the external badge catalog.
type BadgeService struct {
	Client BadgeClient
}

// List fetches the catalog. Client failures are folded into the outcome.
func (s *BadgeService) List(ctx context.Context) BadgesOutcome {
	ctx, span := otel.Tracer("services/BadgeService").Start(ctx, "List")
	defer span.End()

	badges, err := clientOrUnconfigured(s.Client).ListBadges(ctx)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return BadgesOutcome{Success: false, Badges: []badgeapi.Badge{}, Error: err.Error()}
	}
	if badges == nil {
		badges = []badgeapi.Badge{}
	}
	span.SetAttributes(attribute.Int("badges.count", len(badges)))
	return BadgesOutcome{Success: true, Badges: badges}
}

package services

import (
	"context"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
)

// BadgeClient is the subset of *badgeapi.Client used by the services.
type BadgeClient interface {
	ListBadges(ctx context.Context) ([]badgeapi.Badge, error)
	IssueBadge(ctx context.Context, req badgeapi.IssueRequest) (*badgeapi.IssueResult, error)
}

// unconfigured stands in for the client when no API key is set, so that the
// process can start and every call reports the configuration error.
type unconfigured struct{}

func (unconfigured) ListBadges(context.Context) ([]badgeapi.Badge, error) {
	return nil, badgeapi.NotConfigured()
}

func (unconfigured) IssueBadge(context.Context, badgeapi.IssueRequest) (*badgeapi.IssueResult, error) {
	return nil, badgeapi.NotConfigured()
}

// clientOrUnconfigured returns c, or a client that always fails with
// badgeapi.ErrConfiguration when c is nil.
func clientOrUnconfigured(c BadgeClient) BadgeClient {
	if c == nil {
		return unconfigured{}
	}
	return c
}

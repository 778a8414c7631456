package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/pkg/metrics"
)

// SyncRevoker calls the logout endpoint inline. Failures are logged and
// swallowed.
type SyncRevoker struct {
	api ports.AuthAPI
	log zerolog.Logger
}

func NewSyncRevoker(api ports.AuthAPI, log zerolog.Logger) *SyncRevoker {
	return &SyncRevoker{api: api, log: log}
}

func (r *SyncRevoker) Revoke(ctx context.Context, profileID string, tokens domain.TokenPair) {
	if err := r.api.Logout(ctx, tokens); err != nil {
		metrics.RevocationsTotal.WithLabelValues("failed").Inc()
		r.log.Warn().Err(err).Str("profile", profileID).Msg("remote logout failed")
		return
	}
	metrics.RevocationsTotal.WithLabelValues("ok").Inc()
}

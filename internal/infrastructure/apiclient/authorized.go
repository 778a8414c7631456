package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/pkg/metrics"
)

// Authorized sends requests on behalf of one profile. Every request carries
// the stored access token; a 401 triggers at most one refresh-and-replay.
type Authorized struct {
	client    *Client
	store     ports.TokenStore
	refresher ports.TokenRefresher
}

// Authorized binds the client to a profile's token store and refresher.
func (c *Client) Authorized(store ports.TokenStore, refresher ports.TokenRefresher) *Authorized {
	return &Authorized{client: c, store: store, refresher: refresher}
}

// Do sends method path with an optional JSON payload and decodes the
// response into out.
//
// When the API answers 401 and the request has not been replayed yet, the
// request is replayed once: with the stored access token if another request
// already refreshed it, otherwise with a token obtained from the refresher.
// A 401 on the replay is returned as is. A failed refresh is returned
// wrapping domain.ErrSessionExpired.
func (a *Authorized) Do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	r, err := newRequest(method, path, query, payload)
	if err != nil {
		return err
	}

	access, err := a.accessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := a.client.send(ctx, r, access)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return decode(resp, out)
	}
	discard(resp)

	replay, err := a.renew(ctx, access)
	if err != nil {
		metrics.RequestReplaysTotal.WithLabelValues("refresh_failed").Inc()
		return err
	}

	resp, err = a.client.send(ctx, r, replay)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RequestReplaysTotal.WithLabelValues("rejected").Inc()
	} else {
		metrics.RequestReplaysTotal.WithLabelValues("ok").Inc()
	}
	return decode(resp, out)
}

// renew returns the token to replay with after rejected was refused.
func (a *Authorized) renew(ctx context.Context, rejected string) (string, error) {
	if current, err := a.accessToken(ctx); err == nil && current != "" && current != rejected {
		return current, nil
	}

	access, err := a.refresher.RefreshAccess(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionExpired) {
			err = fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
		}
		return "", err
	}
	return access, nil
}

func (a *Authorized) accessToken(ctx context.Context) (string, error) {
	tokens, _, err := a.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if tokens == nil {
		return "", nil
	}
	return tokens.Access, nil
}

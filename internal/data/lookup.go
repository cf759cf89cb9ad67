package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/squarelan/verify-relay/internal/biz/repo"
)

// maxLookupBody caps how much of a remote list is read
const maxLookupBody = 4 << 20

// httpLookupRepo fetches the fraud list and notification text over HTTP.
// Concurrent dispatches asking for the same URL share one request.
type httpLookupRepo struct {
	client          *http.Client
	fraudURL        string
	notificationURL string
	group           singleflight.Group
}

// NewHTTPLookupRepo creates a lookup repository
func NewHTTPLookupRepo(fraudURL, notificationURL string, timeout time.Duration) repo.LookupRepo {
	return &httpLookupRepo{
		client:          &http.Client{Timeout: timeout},
		fraudURL:        fraudURL,
		notificationURL: notificationURL,
	}
}

// FetchFraudList gets the newline-delimited suspect list
func (r *httpLookupRepo) FetchFraudList(ctx context.Context) (string, error) {
	return r.fetch(ctx, r.fraudURL)
}

// FetchNotificationText gets the operator notification text
func (r *httpLookupRepo) FetchNotificationText(ctx context.Context) (string, error) {
	return r.fetch(ctx, r.notificationURL)
}

func (r *httpLookupRepo) fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("lookup url not configured")
	}

	// Shared by every waiter, so one caller leaving must not cancel it.
	// The client timeout still bounds the request.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(url, func() (any, error) {
		return r.get(shared, url)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *httpLookupRepo) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "verify-relay/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

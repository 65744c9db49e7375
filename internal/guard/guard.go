// Package guard implements the optional spam pre-check on message creation.
package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"
)

var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrMissingUserAgent = errors.New("missing user agent")
	ErrTooManyMessages  = errors.New("too many messages from this address")
)

// RecentCounter counts prior creations from a source address. Satisfied by
// the message store.
type RecentCounter interface {
	CountRecentByIP(ctx context.Context, ip string, since time.Time) (int64, error)
}

// Guard rejects creations whose Origin is not allow-listed, whose User-Agent
// is empty, or whose source address exceeded MaxPerWindow creations within
// the trailing Window. A disabled guard admits everything.
type Guard struct {
	Enabled        bool
	AllowedOrigins []string
	MaxPerWindow   int
	Window         time.Duration

	counter RecentCounter
}

func New(enabled bool, origins []string, maxPerWindow int, counter RecentCounter) *Guard {
	return &Guard{
		Enabled:        enabled,
		AllowedOrigins: origins,
		MaxPerWindow:   maxPerWindow,
		Window:         time.Hour,
		counter:        counter,
	}
}

// Check runs the pre-check for one request. A nil error admits the request.
func (g *Guard) Check(ctx context.Context, r *http.Request, ip string) error {
	if !g.Enabled {
		return nil
	}

	origin := r.Header.Get("Origin")
	if !slices.Contains(g.AllowedOrigins, origin) {
		return ErrOriginNotAllowed
	}

	if r.Header.Get("User-Agent") == "" {
		return ErrMissingUserAgent
	}

	since := time.Now().Add(-g.Window)
	n, err := g.counter.CountRecentByIP(ctx, ip, since)
	if err != nil {
		return fmt.Errorf("guard count failed: %w", err)
	}
	if n >= int64(g.MaxPerWindow) {
		return ErrTooManyMessages
	}

	return nil
}

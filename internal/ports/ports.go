package ports

import (
	"context"
	"time"

	"NewsHarvest/internal/domain"
)

// Fetcher returns page text for a URL. Implementations apply a politeness delay and a bounded
// timeout; any failure is reported as ok=false, never as a panic or error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (page string, ok bool)
}

// Discoverer turns a homepage into an ordered, bounded list of candidate article URLs.
type Discoverer interface {
	Discover(ctx context.Context, homepageURL string) []string
}

// ResultRepository archives the outcome of a finished harvest session.
type ResultRepository interface {
	SaveSession(ctx context.Context, status domain.HarvestStatus) error
}

// Notifier streams session digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring harvests execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

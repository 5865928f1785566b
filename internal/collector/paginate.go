package collector

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultPause is the delay between consecutive page requests.
const DefaultPause = 200 * time.Millisecond

// Page is one decoded response of a cursor-paginated listing.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// PageFetcher requests the page identified by pageToken. The empty token is
// the first page.
type PageFetcher[T any] func(ctx context.Context, pageToken string) (Page[T], error)

// Extractor turns a raw page item into a record. Returning false drops the
// item.
type Extractor[T, R any] func(item T) (R, bool)

// StopReason says why a collection run ended.
type StopReason string

const (
	StopExhausted     StopReason = "exhausted"
	StopEmptyPage     StopReason = "empty_page"
	StopFetchFailed   StopReason = "fetch_failed"
	StopResourceFault StopReason = "resource_fault"
	StopPageLimit     StopReason = "page_limit"
	StopCancelled     StopReason = "cancelled"
)

// Result describes a finished collection run. Records gathered before an
// abnormal stop are still returned by Collect; Err only explains the stop.
type Result struct {
	RunID   string     `json:"run_id"`
	Fetches int        `json:"fetches"`
	Pages   int        `json:"pages"`
	Stop    StopReason `json:"stop"`

	// NextPageToken is the cursor to resume from when the run stopped before
	// the listing was exhausted.
	NextPageToken string `json:"next_page_token,omitempty"`
	Err           error  `json:"-"`
}

// Complete reports whether the listing was read to the end.
func (r Result) Complete() bool {
	return r.Stop == StopExhausted || r.Stop == StopEmptyPage
}

// Paginator holds the traversal policy shared by every listing.
type Paginator struct {
	// Pause is the minimum spacing between the starts of two page requests.
	Pause time.Duration
	// MaxPages caps the pages fetched per run. Zero means no cap.
	MaxPages int
}

func NewPaginator(pause time.Duration) *Paginator {
	if pause < 0 {
		pause = 0
	}
	return &Paginator{Pause: pause}
}

func (p *Paginator) limiter() *rate.Limiter {
	if p == nil || p.Pause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(p.Pause), 1)
}

func (p *Paginator) maxPages() int {
	if p == nil {
		return 0
	}
	return p.MaxPages
}

// Collect walks a listing from its first page.
func Collect[T, R any](ctx context.Context, p *Paginator, fetch PageFetcher[T], extract Extractor[T, R]) ([]R, Result) {
	return CollectFrom(ctx, p, "", fetch, extract)
}

// CollectFrom walks a listing starting at startToken, following cursors until
// the listing ends, a request fails, the page cap is hit or ctx is done.
// Failures never discard records already collected.
func CollectFrom[T, R any](ctx context.Context, p *Paginator, startToken string, fetch PageFetcher[T], extract Extractor[T, R]) ([]R, Result) {
	res := Result{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", res.RunID).Logger()
	limiter := p.limiter()
	limit := p.maxPages()

	var records []R
	token := startToken

	stop := func(reason StopReason, cursor string, err error) ([]R, Result) {
		res.Stop = reason
		res.NextPageToken = cursor
		res.Err = err
		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.Str("stop", string(reason)).
			Int("pages", res.Pages).
			Int("total", len(records)).
			Msg("Collection finished")
		return records, res
	}

	for {
		if limit > 0 && res.Pages >= limit {
			return stop(StopPageLimit, token, nil)
		}
		if err := limiter.Wait(ctx); err != nil {
			return stop(StopCancelled, token, err)
		}

		res.Fetches++
		page, err := fetch(ctx, token)
		if err != nil {
			var fault *ResourceFault
			switch {
			case errors.As(err, &fault):
				return stop(StopResourceFault, "", err)
			case ctx.Err() != nil:
				return stop(StopCancelled, token, err)
			default:
				return stop(StopFetchFailed, token, err)
			}
		}
		res.Pages++

		if len(page.Items) == 0 {
			return stop(StopEmptyPage, "", nil)
		}
		for _, item := range page.Items {
			if record, ok := extract(item); ok {
				records = append(records, record)
			}
		}
		logger.Info().Int("page", res.Pages).Int("total", len(records)).Msg("Collected page")

		if page.NextPageToken == "" {
			return stop(StopExhausted, "", nil)
		}
		token = page.NextPageToken
	}
}

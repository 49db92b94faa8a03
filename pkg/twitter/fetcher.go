package twitter

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/ratelimit"
	"xfollowers/pkg/retry"
)

// ProgressFunc is called after each fetched page
type ProgressFunc func(fetched, page int)

// FetcherConfig configures a Fetcher
type FetcherConfig struct {
	// PageSize is the max_results per followers request
	PageSize int
	// MaxAttempts bounds retries per page request
	MaxAttempts int
	// Backoff computes delays between retries of the same page
	Backoff retry.BackoffStrategy
	// Limiter paces page requests. Optional.
	Limiter *ratelimit.SlidingWindow
	// Sleep performs waits. Defaults to retry.Wait; tests inject a recorder.
	Sleep retry.SleepFunc
	// Progress is called after each page. Optional.
	Progress ProgressFunc
}

// Fetcher walks the paginated followers endpoint for a user, retrying
// transient failures and honoring rate limits
type Fetcher struct {
	client      *Client
	pageSize    int
	maxAttempts int
	backoff     retry.BackoffStrategy
	limiter     *ratelimit.SlidingWindow
	sleep       retry.SleepFunc
	progress    ProgressFunc
	logger      logger.Logger
}

// NewFetcher creates a follower fetcher over the given client
func NewFetcher(client *Client, cfg FetcherConfig, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff == nil {
		cfg.Backoff = retry.DefaultExponentialBackoff()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = retry.Wait
	}

	return &Fetcher{
		client:      client,
		pageSize:    cfg.PageSize,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		limiter:     cfg.Limiter,
		sleep:       cfg.Sleep,
		progress:    cfg.Progress,
		logger:      log,
	}
}

// Fetch retrieves up to max followers of the given username. max <= 0 means
// no cap. A returned error means the collected records must not be reported.
func (f *Fetcher) Fetch(ctx context.Context, username string, max int) ([]FollowerRecord, error) {
	user, err := f.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	f.logger.InfoWithFields("fetching followers", map[string]interface{}{
		"username": username,
		"user_id":  user.ID,
		"max":      max,
	})

	var records []FollowerRecord
	token := ""
	page := 0
	emptyPages := 0

	for {
		if max > 0 && len(records) >= max {
			break
		}

		pageSize := f.pageSize
		if max > 0 && max-len(records) < pageSize {
			// The API minimum for max_results is 1, so this stays valid
			pageSize = max - len(records)
		}

		resp, err := f.fetchPageWithRetry(ctx, user.ID, pageSize, token)
		if err != nil {
			return nil, err
		}
		page++

		for _, u := range resp.Data {
			records = append(records, FollowerRecord{
				Username:      u.Username,
				FollowerCount: u.FollowersCount(),
			})
		}

		if f.progress != nil {
			f.progress(len(records), page)
		}

		f.logger.DebugWithFields("followers page fetched", map[string]interface{}{
			"page":    page,
			"count":   len(resp.Data),
			"fetched": len(records),
		})

		// The cursor is authoritative: an absent next_token ends the walk
		// even when the page carried records, and a present token continues
		// it even when the page was empty.
		token = resp.Meta.NextToken
		if token == "" {
			break
		}

		if len(resp.Data) == 0 {
			emptyPages++
			if emptyPages >= f.maxAttempts {
				f.logger.WarnWithFields("stopping after repeated empty pages", map[string]interface{}{
					"empty_pages": emptyPages,
				})
				break
			}
		} else {
			emptyPages = 0
		}
	}

	if max > 0 && len(records) > max {
		records = records[:max]
	}

	f.logger.InfoWithFields("follower fetch complete", map[string]interface{}{
		"username": username,
		"total":    len(records),
		"pages":    page,
	})

	return records, nil
}

// resolveUser looks up the target account, retrying transient failures
func (f *Fetcher) resolveUser(ctx context.Context, username string) (*User, error) {
	return retry.DoWithResult(func() (*User, error) {
		return f.client.LookupUser(ctx, username)
	}, &retry.Config{
		MaxAttempts: f.maxAttempts,
		Backoff:     f.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Sleep:       f.sleep,
		Logger:      f.logger,
	})
}

// fetchPageWithRetry fetches one followers page with bounded retries.
// Terminal errors (insufficient_access, not_found) return immediately;
// exhausting the attempt budget returns the last typed error.
func (f *Fetcher) fetchPageWithRetry(ctx context.Context, userID string, pageSize int, token string) (*FollowersResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := f.waitForSlot(ctx); err != nil {
			return nil, err
		}

		resp, err := f.client.FetchFollowersPage(ctx, userID, pageSize, token)
		if err == nil {
			f.backoff.Reset()
			return resp, nil
		}
		lastErr = err

		var apiErr *errors.Error
		if !stderrors.As(err, &apiErr) || !errors.IsRetryable(apiErr.Type) {
			return nil, err
		}

		if apiErr.Type == errors.ErrorTypeRateLimit && f.limiter != nil && apiErr.RetryAfter > 0 {
			f.limiter.MarkLimited(time.Now().Add(apiErr.RetryAfter))
		}

		if attempt == f.maxAttempts {
			break
		}

		delay := f.backoff.NextDelay(attempt)
		if apiErr.RetryAfter > delay {
			delay = apiErr.RetryAfter
		}

		f.logger.WarnWithFields("retrying followers page", map[string]interface{}{
			"attempt":  attempt,
			"error":    err.Error(),
			"delay_ms": delay.Milliseconds(),
		})

		if err := f.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("fetch cancelled: %w", err)
		}
	}

	return nil, lastErr
}

// waitForSlot blocks until the local limiter admits another request
func (f *Fetcher) waitForSlot(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}

	for !f.limiter.Allow() {
		wait := f.limiter.WaitTime()
		f.logger.DebugWithFields("pacing request", map[string]interface{}{
			"wait_ms": wait.Milliseconds(),
		})
		if err := f.sleep(ctx, wait); err != nil {
			return fmt.Errorf("fetch cancelled: %w", err)
		}
	}

	return nil
}

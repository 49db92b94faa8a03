package ui

import (
	"fmt"
	"time"
)

// FetchTracker tracks the progress of a paginated follower fetch
type FetchTracker struct {
	Fetched   int
	Pages     int
	Target    int // 0 means unbounded
	StartTime time.Time
}

// NewFetchTracker creates a tracker. target <= 0 means no cap.
func NewFetchTracker(target int) *FetchTracker {
	return &FetchTracker{
		Target:    target,
		StartTime: time.Now(),
	}
}

// Update records the latest fetch totals
func (ft *FetchTracker) Update(fetched, pages int) {
	ft.Fetched = fetched
	ft.Pages = pages
}

// ElapsedTime returns the time since tracking started
func (ft *FetchTracker) ElapsedTime() time.Duration {
	return time.Since(ft.StartTime)
}

// Rate returns the average fetch rate in followers per minute
func (ft *FetchTracker) Rate() float64 {
	elapsed := ft.ElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(ft.Fetched) / elapsed
}

// Status returns a one-line progress summary
func (ft *FetchTracker) Status() string {
	if ft.Target > 0 {
		return fmt.Sprintf("page %d | %d/%d followers", ft.Pages, ft.Fetched, ft.Target)
	}
	return fmt.Sprintf("page %d | %d followers", ft.Pages, ft.Fetched)
}

// PrintProgress prints the current progress on a single redrawn line
func (ft *FetchTracker) PrintProgress() {
	if quietMode {
		return
	}
	fmt.Printf("\r%s %s", Green("[FETCHING]"), ft.Status())
}

// Finish terminates the progress line
func (ft *FetchTracker) Finish() {
	if quietMode {
		return
	}
	fmt.Println()
}

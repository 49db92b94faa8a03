// Package report renders ranked follower lists as timestamped text and
// JSON files.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
	"xfollowers/pkg/ranker"
)

// Format selects the report file format
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatBoth Format = "both"
)

// ParseFormat validates a format string
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatBoth:
		return FormatBoth, nil
	default:
		return "", fmt.Errorf("unknown report format: %q (want txt, json or both)", s)
	}
}

// Result is a completed fetch ready to be reported
type Result struct {
	ScreenName  string
	GeneratedAt time.Time
	Followers   []ranker.RankedFollower
}

// jsonReport is the on-disk JSON shape
type jsonReport struct {
	ScreenName     string                  `json:"screen_name"`
	GeneratedAt    string                  `json:"generated_at"`
	TotalFollowers int                     `json:"total_followers"`
	Followers      []ranker.RankedFollower `json:"followers"`
}

// Writer writes reports into a target directory
type Writer struct {
	dir    string
	logger logger.Logger
}

// NewWriter creates a report writer targeting dir
func NewWriter(dir string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{dir: dir, logger: log}
}

// Filename builds the report filename for a result and extension:
// followers_<username>_<YYYYMMDD_HHMMSS>.<ext>
func Filename(screenName string, generatedAt time.Time, ext string) string {
	return fmt.Sprintf("followers_%s_%s.%s", screenName, generatedAt.Format("20060102_150405"), ext)
}

// Write renders the result in the requested format(s) and returns the
// paths written. Any failure is a write error and aborts the remaining
// formats.
func (w *Writer) Write(result *Result, format Format) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, errors.Newf(errors.ErrorTypeWrite, "failed to create output directory: %v", err)
	}

	var paths []string

	if format == FormatText || format == FormatBoth {
		path, err := w.writeText(result)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if format == FormatJSON || format == FormatBoth {
		path, err := w.writeJSON(result)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	w.logger.InfoWithFields("report written", map[string]interface{}{
		"screen_name": result.ScreenName,
		"total":       len(result.Followers),
		"files":       paths,
	})

	return paths, nil
}

// writeText renders the plain-text report
func (w *Writer) writeText(result *Result) (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Followers of @%s\n", result.ScreenName)
	fmt.Fprintf(&buf, "Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "Total followers fetched: %s\n", humanize.Comma(int64(len(result.Followers))))
	fmt.Fprintln(&buf, strings.Repeat("-", 50))

	for _, f := range result.Followers {
		fmt.Fprintf(&buf, "%4d. @%-20s - %s followers\n",
			f.Rank, f.Username, humanize.Comma(int64(f.FollowerCount)))
	}

	path := filepath.Join(w.dir, Filename(result.ScreenName, result.GeneratedAt, "txt"))
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// writeJSON renders the JSON report
func (w *Writer) writeJSON(result *Result) (string, error) {
	followers := result.Followers
	if followers == nil {
		followers = []ranker.RankedFollower{}
	}

	doc := jsonReport{
		ScreenName:     result.ScreenName,
		GeneratedAt:    result.GeneratedAt.Format(time.RFC3339),
		TotalFollowers: len(result.Followers),
		Followers:      followers,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Newf(errors.ErrorTypeWrite, "failed to encode report: %v", err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.dir, Filename(result.ScreenName, result.GeneratedAt, "json"))
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// writeFileAtomic writes via a temporary file and rename, so readers never
// observe a half-written report
func writeFileAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return errors.Newf(errors.ErrorTypeWrite, "failed to write %s: %v", path, err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypeWrite, "failed to finalize %s: %v", path, err)
	}
	return nil
}

// TopTable renders the top n followers for terminal display
func TopTable(result *Result, n int) string {
	var buf bytes.Buffer

	if n > len(result.Followers) {
		n = len(result.Followers)
	}

	fmt.Fprintf(&buf, "Top %d followers of @%s by audience size:\n", n, result.ScreenName)
	for _, f := range result.Followers[:n] {
		fmt.Fprintf(&buf, "%4d. @%-20s - %s followers\n",
			f.Rank, f.Username, humanize.Comma(int64(f.FollowerCount)))
	}

	return buf.String()
}

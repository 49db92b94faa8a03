package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/logger"
	"xfollowers/pkg/ranker"
	"xfollowers/pkg/twitter"
)

func sampleResult() *Result {
	return &Result{
		ScreenName:  "jack",
		GeneratedAt: time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC),
		Followers: []ranker.RankedFollower{
			{FollowerRecord: twitter.FollowerRecord{Username: "whale", FollowerCount: 1234567}, Rank: 1},
			{FollowerRecord: twitter.FollowerRecord{Username: "minnow", FollowerCount: 42}, Rank: 2},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"txt", "JSON", "Both"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "followers_jack_20250601_143005.txt", Filename("jack", at, "txt"))
	assert.Equal(t, "followers_jack_20250601_143005.json", Filename("jack", at, "json"))
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir, logger.NewTestLogger()).Write(sampleResult(), FormatText)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "Followers of @jack")
	assert.Contains(t, text, "Generated: 2025-06-01 14:30:05")
	assert.Contains(t, text, "Total followers fetched: 2")
	assert.Contains(t, text, "   1. @whale                - 1,234,567 followers")
	assert.Contains(t, text, "   2. @minnow               - 42 followers")
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir, logger.NewTestLogger()).Write(sampleResult(), FormatJSON)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var doc struct {
		ScreenName     string `json:"screen_name"`
		GeneratedAt    string `json:"generated_at"`
		TotalFollowers int    `json:"total_followers"`
		Followers      []struct {
			Username      string `json:"username"`
			FollowerCount int    `json:"follower_count"`
			Rank          int    `json:"rank"`
		} `json:"followers"`
	}
	require.NoError(t, json.Unmarshal(content, &doc))

	assert.Equal(t, "jack", doc.ScreenName)
	assert.Equal(t, "2025-06-01T14:30:05Z", doc.GeneratedAt)
	assert.Equal(t, 2, doc.TotalFollowers)
	require.Len(t, doc.Followers, 2)

	// Order and fields survive the round trip
	assert.Equal(t, "whale", doc.Followers[0].Username)
	assert.Equal(t, 1234567, doc.Followers[0].FollowerCount)
	assert.Equal(t, 1, doc.Followers[0].Rank)
	assert.Equal(t, "minnow", doc.Followers[1].Username)
	assert.Equal(t, 2, doc.Followers[1].Rank)
}

func TestWriteBoth(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir, logger.NewTestLogger()).Write(sampleResult(), FormatBoth)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.True(t, strings.HasSuffix(paths[0], ".txt"))
	assert.True(t, strings.HasSuffix(paths[1], ".json"))
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestWriteEmptyFollowerList(t *testing.T) {
	dir := t.TempDir()
	result := &Result{
		ScreenName:  "lonely",
		GeneratedAt: time.Now(),
	}

	paths, err := NewWriter(dir, logger.NewTestLogger()).Write(result, FormatBoth)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	content, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(content), `"followers": []`)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(dir, logger.NewTestLogger()).Write(sampleResult(), FormatBoth)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestWriteFailureReturnsWriteError(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	// A file where the output directory should be forces a write failure
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	_, err := NewWriter(blocked, logger.NewTestLogger()).Write(sampleResult(), FormatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write error")
}

func TestTopTable(t *testing.T) {
	out := TopTable(sampleResult(), 20)
	assert.Contains(t, out, "Top 2 followers of @jack")
	assert.Contains(t, out, "   1. @whale")

	out = TopTable(sampleResult(), 1)
	assert.Contains(t, out, "Top 1 followers of @jack")
	assert.NotContains(t, out, "minnow")
}

package ranker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/twitter"
)

func rec(username string, count int) twitter.FollowerRecord {
	return twitter.FollowerRecord{Username: username, FollowerCount: count}
}

func TestRankOrdersDescendingWithStableTies(t *testing.T) {
	input := []twitter.FollowerRecord{
		rec("A", 10),
		rec("B", 50),
		rec("C", 50),
		rec("D", 5),
	}

	got, err := Rank(input)
	require.NoError(t, err)

	want := []RankedFollower{
		{FollowerRecord: rec("B", 50), Rank: 1},
		{FollowerRecord: rec("C", 50), Rank: 2},
		{FollowerRecord: rec("A", 10), Rank: 3},
		{FollowerRecord: rec("D", 5), Rank: 4},
	}
	assert.Equal(t, want, got)
}

func TestRankContiguousRanks(t *testing.T) {
	input := make([]twitter.FollowerRecord, 100)
	for i := range input {
		input[i] = rec("u", rand.Intn(10))
	}

	got, err := Rank(input)
	require.NoError(t, err)
	require.Len(t, got, 100)

	for i, r := range got {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].FollowerCount, r.FollowerCount)
		}
	}
}

func TestRankEmptyInput(t *testing.T) {
	got, err := Rank([]twitter.FollowerRecord{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankNilInput(t *testing.T) {
	_, err := Rank(nil)
	assert.Error(t, err)
}

func TestRankDoesNotModifyInput(t *testing.T) {
	input := []twitter.FollowerRecord{rec("low", 1), rec("high", 100)}

	_, err := Rank(input)
	require.NoError(t, err)

	assert.Equal(t, "low", input[0].Username)
	assert.Equal(t, "high", input[1].Username)
}

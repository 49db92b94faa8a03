// Package ranker orders fetched followers by audience size.
package ranker

import (
	"errors"
	"sort"

	"xfollowers/pkg/twitter"
)

// RankedFollower is a follower with its position in the ranking
type RankedFollower struct {
	twitter.FollowerRecord
	Rank int `json:"rank"`
}

// Rank sorts followers by follower count descending and assigns ranks
// 1..N. The sort is stable: followers with equal counts keep their fetch
// order. The input slice is not modified.
func Rank(records []twitter.FollowerRecord) ([]RankedFollower, error) {
	if records == nil {
		return nil, errors.New("ranker: nil follower list")
	}

	ranked := make([]RankedFollower, len(records))
	for i, r := range records {
		ranked[i] = RankedFollower{FollowerRecord: r}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FollowerCount > ranked[j].FollowerCount
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked, nil
}

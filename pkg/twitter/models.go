package twitter

// User is a Twitter user as returned by the v2 API
type User struct {
	ID            string         `json:"id"`
	Username      string         `json:"username"`
	Name          string         `json:"name,omitempty"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
}

// PublicMetrics holds the public counters attached to a user
type PublicMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

// FollowersCount returns the follower count, tolerating absent metrics
func (u *User) FollowersCount() int {
	if u.PublicMetrics == nil {
		return 0
	}
	return u.PublicMetrics.FollowersCount
}

// UserLookupResponse is the envelope of /users/by/username/:name
type UserLookupResponse struct {
	Data   *User      `json:"data"`
	Errors []APIError `json:"errors,omitempty"`
}

// FollowersResponse is the envelope of a followers page
type FollowersResponse struct {
	Data   []User     `json:"data"`
	Meta   Meta       `json:"meta"`
	Errors []APIError `json:"errors,omitempty"`
}

// Meta carries pagination state for a followers page.
// NextToken absent means the cursor is exhausted.
type Meta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is an error object embedded in a v2 response body
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// ErrorResponse is the body of a non-200 v2 response
type ErrorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// FollowerRecord is one fetched follower, reduced to what ranking and
// reporting need
type FollowerRecord struct {
	Username      string `json:"username"`
	FollowerCount int    `json:"follower_count"`
}

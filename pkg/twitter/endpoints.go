package twitter

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the Twitter API v2 base URL
	BaseURL = "https://api.twitter.com/2"

	// DefaultPageSize is the default max_results per followers page
	DefaultPageSize = 100

	// MaxPageSize is the API ceiling for max_results
	MaxPageSize = 1000
)

// UserByUsernameURL builds the user lookup endpoint for a username
func UserByUsernameURL(baseURL, username string) string {
	return fmt.Sprintf("%s/users/by/username/%s?user.fields=id,username",
		baseURL, url.PathEscape(username))
}

// FollowersURL builds the followers endpoint for a user id. paginationToken
// is omitted when empty (first page).
func FollowersURL(baseURL, userID string, pageSize int, paginationToken string) string {
	params := url.Values{}
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("user.fields", "username,public_metrics")
	if paginationToken != "" {
		params.Set("pagination_token", paginationToken)
	}
	return fmt.Sprintf("%s/users/%s/followers?%s", baseURL, url.PathEscape(userID), params.Encode())
}

package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("Bearer test-token", 5*time.Second, logger.NewTestLogger())
	c.SetBaseURL(serverURL)
	return c
}

func TestLookupUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/by/username/jack", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"id":"12","username":"jack"}}`)
	}))
	defer server.Close()

	user, err := newTestClient(server.URL).LookupUser(context.Background(), "jack")
	require.NoError(t, err)
	assert.Equal(t, "12", user.ID)
	assert.Equal(t, "jack", user.Username)
}

func TestLookupUserNotFoundInBody(t *testing.T) {
	// The API reports unknown usernames with a 200 and an errors array
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"title":"Not Found Error","detail":"Could not find user with username: [ghost]."}]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).LookupUser(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), "Could not find user")
}

func TestFetchFollowersPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/12/followers", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("max_results"))
		assert.Equal(t, "username,public_metrics", q.Get("user.fields"))
		assert.Equal(t, "tok1", q.Get("pagination_token"))
		fmt.Fprint(w, `{
			"data":[{"id":"1","username":"alice","public_metrics":{"followers_count":50}}],
			"meta":{"result_count":1,"next_token":"tok2"}
		}`)
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).FetchFollowersPage(context.Background(), "12", 100, "tok1")
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "alice", resp.Data[0].Username)
	assert.Equal(t, 50, resp.Data[0].FollowersCount())
	assert.Equal(t, "tok2", resp.Meta.NextToken)
}

func TestFetchFollowersPageOmitsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["pagination_token"]
		assert.False(t, present, "first page must not send a pagination token")
		fmt.Fprint(w, `{"data":[],"meta":{"result_count":0}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchFollowersPage(context.Background(), "12", 100, "")
	require.NoError(t, err)
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantType errors.ErrorType
	}{
		{http.StatusUnauthorized, errors.ErrorTypeInsufficientAccess},
		{http.StatusForbidden, errors.ErrorTypeInsufficientAccess},
		{http.StatusNotFound, errors.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{http.StatusInternalServerError, errors.ErrorTypeServerError},
		{http.StatusBadGateway, errors.ErrorTypeServerError},
		{http.StatusBadRequest, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var out FollowersResponse
			err := newTestClient(server.URL).GetJSON(context.Background(), server.URL+"/x", &out)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "status %d mapped to %s", tt.status, errors.TypeOf(err))
		})
	}
}

func TestForbiddenIncludesProviderDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"title":"Unsupported Authentication","detail":"Authenticating with OAuth 2.0 Application-Only is forbidden for this endpoint.","status":403}`)
	}))
	defer server.Close()

	var out FollowersResponse
	err := newTestClient(server.URL).GetJSON(context.Background(), server.URL+"/x", &out)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInsufficientAccess))
	assert.Contains(t, err.Error(), "Application-Only is forbidden")
}

func TestRateLimitRetryAfterFromResetHeader(t *testing.T) {
	reset := time.Now().Add(2 * time.Minute).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var out FollowersResponse
	err := newTestClient(server.URL).GetJSON(context.Background(), server.URL+"/x", &out)
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errors.ErrorTypeRateLimit, apiErr.Type)
	assert.Greater(t, apiErr.RetryAfter, time.Minute)
	assert.LessOrEqual(t, apiErr.RetryAfter, 2*time.Minute)
}

func TestRateLimitRetryAfterFromRetryAfterHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "45")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var out FollowersResponse
	err := newTestClient(server.URL).GetJSON(context.Background(), server.URL+"/x", &out)
	require.Error(t, err)

	var apiErr *errors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 45*time.Second, apiErr.RetryAfter)
}

func TestGetJSONParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer server.Close()

	var out FollowersResponse
	err := newTestClient(server.URL).GetJSON(context.Background(), server.URL+"/x", &out)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}

func TestGetJSONNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	var out FollowersResponse
	err := newTestClient(server.URL).GetJSON(context.Background(), server.URL+"/x", &out)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestEndpointURLs(t *testing.T) {
	assert.Equal(t,
		"https://api.twitter.com/2/users/by/username/jack?user.fields=id,username",
		UserByUsernameURL(BaseURL, "jack"))

	url := FollowersURL(BaseURL, "12", 100, "")
	assert.Contains(t, url, "/users/12/followers?")
	assert.Contains(t, url, "max_results=100")
	assert.NotContains(t, url, "pagination_token")

	url = FollowersURL(BaseURL, "12", 50, "abc")
	assert.Contains(t, url, "pagination_token=abc")
	assert.Contains(t, url, "max_results=50")
}

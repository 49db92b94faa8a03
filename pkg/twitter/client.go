package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
)

// Client talks to the Twitter v2 API with a fixed authorization header
type Client struct {
	httpClient    *http.Client
	authorization string
	baseURL       string
	logger        logger.Logger
}

// NewClient creates a new API client. authorization is the full header
// value, e.g. "Bearer <token>".
func NewClient(authorization string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		authorization: authorization,
		baseURL:       BaseURL,
		logger:        log,
	}
}

// SetBaseURL overrides the API base URL, for tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetHTTPClient replaces the underlying HTTP client, for tests
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// doRequest performs an HTTP request with the authorization header set
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Newf(errors.ErrorTypeNetwork, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into target
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Newf(errors.ErrorTypeUnknown, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps non-200 responses to typed errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("insufficient access", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeInsufficientAccess,
			Message: accessDeniedMessage(resp.StatusCode, body),
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp)
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status":      resp.StatusCode,
			"url":         resp.Request.URL.String(),
			"retry_after": retryAfter,
		})
		return &errors.Error{
			Type:       errors.ErrorTypeRateLimit,
			Message:    "rate limit exceeded",
			Code:       resp.StatusCode,
			RetryAfter: retryAfter,
		}
	default:
		if resp.StatusCode >= 500 {
			c.logger.ErrorWithFields("server error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.String(),
			})
			return &errors.Error{
				Type:    errors.ErrorTypeServerError,
				Message: "server error",
				Code:    resp.StatusCode,
			}
		}
		c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// accessDeniedMessage includes the provider detail when the body carries one
func accessDeniedMessage(status int, body []byte) string {
	msg := "access denied: the credentials lack permission for this endpoint"
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		msg = fmt.Sprintf("%s (%d: %s)", msg, status, errResp.Detail)
	}
	return msg
}

// parseRetryAfter extracts the provider-suggested wait from 429 headers.
// x-rate-limit-reset is a unix timestamp; Retry-After is delay seconds.
func parseRetryAfter(resp *http.Response) time.Duration {
	if reset := resp.Header.Get("x-rate-limit-reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if wait := time.Until(time.Unix(epoch, 0)); wait > 0 {
				return wait
			}
		}
	}
	if after := resp.Header.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// LookupUser resolves a username to its user object
func (c *Client) LookupUser(ctx context.Context, username string) (*User, error) {
	url := UserByUsernameURL(c.baseURL, username)

	c.logger.DebugWithFields("looking up user", map[string]interface{}{
		"username": username,
	})

	var response UserLookupResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	// The API reports an unknown username inside a 200 body
	if response.Data == nil {
		detail := fmt.Sprintf("user @%s not found", username)
		if len(response.Errors) > 0 && response.Errors[0].Detail != "" {
			detail = response.Errors[0].Detail
		}
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: detail,
			Code:    404,
		}
	}

	return response.Data, nil
}

// FetchFollowersPage fetches a single followers page for a user id
func (c *Client) FetchFollowersPage(ctx context.Context, userID string, pageSize int, paginationToken string) (*FollowersResponse, error) {
	url := FollowersURL(c.baseURL, userID, pageSize, paginationToken)

	c.logger.DebugWithFields("fetching followers page", map[string]interface{}{
		"user_id": userID,
		"token":   paginationToken,
	})

	var response FollowersResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

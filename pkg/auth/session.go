package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
)

const (
	// AuthorizeURL is the Twitter OAuth 2.0 authorization endpoint
	AuthorizeURL = "https://twitter.com/i/oauth2/authorize"
	// TokenURL is the Twitter OAuth 2.0 token endpoint
	TokenURL = "https://api.twitter.com/2/oauth2/token"
)

// Scopes are the OAuth scopes needed to read a user's followers
var Scopes = []string{"tweet.read", "users.read", "follows.read"}

// Session holds the token that authorizes API requests
type Session struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time
}

// NewBearerSession wraps a static bearer token in a session. No network
// round trip is involved.
func NewBearerSession(token string) *Session {
	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
	}
}

// AuthorizationHeader returns the value for the Authorization header
func (s *Session) AuthorizationHeader() string {
	tokenType := s.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return fmt.Sprintf("%s %s", tokenType, s.AccessToken)
}

// PromptFunc presents the authorization URL to the user and returns the
// full redirect URL they paste back. Injectable for tests.
type PromptFunc func(authURL string) (string, error)

// PKCEFlow performs the OAuth 2.0 authorization-code flow with PKCE.
// The redirect is captured manually: the user opens the printed URL,
// authorizes, and pastes the URL their browser lands on.
type PKCEFlow struct {
	config *oauth2.Config
	prompt PromptFunc
	logger logger.Logger
}

// NewPKCEFlow creates a PKCE authorization flow
func NewPKCEFlow(clientID, clientSecret, redirectURL string, prompt PromptFunc, log logger.Logger) *PKCEFlow {
	if log == nil {
		log = logger.GetLogger()
	}

	return &PKCEFlow{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthorizeURL,
				TokenURL: TokenURL,
			},
		},
		prompt: prompt,
		logger: log,
	}
}

// SetEndpoints overrides the OAuth endpoints, for tests
func (f *PKCEFlow) SetEndpoints(authURL, tokenURL string) {
	f.config.Endpoint.AuthURL = authURL
	f.config.Endpoint.TokenURL = tokenURL
}

// Authorize runs the PKCE flow and returns an authorized session
func (f *PKCEFlow) Authorize(ctx context.Context) (*Session, error) {
	verifier := oauth2.GenerateVerifier()
	state, err := randomState()
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeOAuthExchange, "failed to generate state: %v", err)
	}

	authURL := f.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	f.logger.Debug("awaiting OAuth authorization")

	redirect, err := f.prompt(authURL)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeMissingAuthCode, "authorization aborted: %v", err)
	}

	code, err := extractCode(redirect, state)
	if err != nil {
		return nil, err
	}

	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if stderrors.As(err, &retrieveErr) {
			return nil, &errors.Error{
				Type:    errors.ErrorTypeOAuthExchange,
				Message: fmt.Sprintf("token exchange rejected: %s", string(retrieveErr.Body)),
				Code:    retrieveErr.Response.StatusCode,
			}
		}
		return nil, errors.Newf(errors.ErrorTypeOAuthExchange, "token exchange failed: %v", err)
	}

	f.logger.InfoWithFields("OAuth authorization complete", map[string]interface{}{
		"token_type": token.TokenType,
		"expires_at": token.Expiry,
	})

	return &Session{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Expiry:      token.Expiry,
	}, nil
}

// extractCode pulls the authorization code out of the pasted redirect URL,
// verifying the state parameter
func extractCode(redirect, wantState string) (string, error) {
	parsed, err := url.Parse(redirect)
	if err != nil {
		return "", errors.Newf(errors.ErrorTypeMissingAuthCode, "invalid redirect URL: %v", err)
	}

	query := parsed.Query()

	if errParam := query.Get("error"); errParam != "" {
		return "", errors.Newf(errors.ErrorTypeMissingAuthCode,
			"authorization denied: %s", errParam)
	}

	code := query.Get("code")
	if code == "" {
		return "", errors.New(errors.ErrorTypeMissingAuthCode,
			"redirect URL carries no authorization code")
	}

	if gotState := query.Get("state"); wantState != "" && gotState != wantState {
		return "", errors.New(errors.ErrorTypeOAuthExchange,
			"state parameter mismatch; possible interception, aborting")
	}

	return code, nil
}

// randomState generates the OAuth state parameter
func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

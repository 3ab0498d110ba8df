package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scope is the OAuth2 scope requested for service account tokens.
const Scope = "https://spreadsheets.google.com/feeds"

// AuthMode is the way a Spreadsheet authenticates feed requests.
type AuthMode int

const (
	AuthAnonymous AuthMode = iota
	AuthToken
	AuthJWT
)

func (m AuthMode) String() string {
	switch m {
	case AuthToken:
		return "token"
	case AuthJWT:
		return "jwt"
	default:
		return "anonymous"
	}
}

// Credential is either a LegacyToken or a BearerToken. A nil Credential means anonymous access.
type Credential interface {
	authorization() string
}

// LegacyToken is a raw ClientLogin style token, sent as 'GoogleLogin auth=<token>'.
type LegacyToken string

func (t LegacyToken) authorization() string {
	return fmt.Sprintf("GoogleLogin auth=%s", string(t))
}

// BearerToken is an OAuth2 access token with its expiry.
type BearerToken struct {
	Type    string
	Value   string
	Expires time.Time
}

func (t BearerToken) authorization() string {
	if t.Type == "" {
		return fmt.Sprintf("Bearer %s", t.Value)
	}

	return fmt.Sprintf("%s %s", t.Type, t.Value)
}

// Expired is true once the current time reaches Expires. A zero Expires never expires.
func (t BearerToken) Expired(now time.Time) bool {
	return !t.Expires.IsZero() && !now.Before(t.Expires)
}

// SetAuthToken installs a credential. An anonymous spreadsheet switches to token mode; the
// credential shape is not validated.
func (s *Spreadsheet) SetAuthToken(credential Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == AuthAnonymous {
		s.mode = AuthToken
	}

	s.credential = credential
}

// SetAuth always fails: the feed service dropped username/password logins.
func (s *Spreadsheet) SetAuth(username, password string) error {
	return ErrDeprecatedAuth
}

// UseServiceAccountAuth switches to JWT mode using a service account key (the JSON file
// downloaded from the Google Cloud console) and fetches the first token immediately.
func (s *Spreadsheet) UseServiceAccountAuth(ctx context.Context, credentials []byte) error {
	config, err := google.JWTConfigFromJSON(credentials, Scope)
	if err != nil {
		return fmt.Errorf("invalid service account credentials (%w)", err)
	}

	return s.UseTokenSource(ctx, config.TokenSource(s.tokenContext()))
}

// UseServiceAccountAuthFile is UseServiceAccountAuth for a key stored in a file.
func (s *Spreadsheet) UseServiceAccountAuthFile(ctx context.Context, file string) error {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	return s.UseServiceAccountAuth(ctx, bytes)
}

// UseTokenSource switches to JWT mode with an arbitrary token source and fetches the first
// token immediately. Tokens are renewed from the source whenever the current one has expired.
func (s *Spreadsheet) UseTokenSource(ctx context.Context, source oauth2.TokenSource) error {
	s.mu.Lock()
	s.mode = AuthJWT
	s.source = source
	s.mu.Unlock()

	return s.renew(ctx)
}

// AuthMode returns the current authentication mode.
func (s *Spreadsheet) AuthMode() AuthMode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mode
}

// Credential returns the credential currently attached to requests.
func (s *Spreadsheet) Credential() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.credential
}

// tokenContext is the context token sources are created with. It carries the spreadsheet HTTP
// client and outlives any single request.
func (s *Spreadsheet) tokenContext() context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, s.client)
}

func (s *Spreadsheet) renew(ctx context.Context) error {
	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()

	if source == nil {
		return fmt.Errorf("%w (no token source)", ErrTokenRenewal)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	credential, err := fetchToken(source)
	if err != nil {
		return err
	}

	s.log.WithField("expires", credential.Expires).Debug("renewed bearer token")
	s.SetAuthToken(credential)

	return nil
}

func fetchToken(source oauth2.TokenSource) (BearerToken, error) {
	token, err := source.Token()
	if err != nil {
		return BearerToken{}, fmt.Errorf("%w (%w)", ErrTokenRenewal, err)
	}

	return BearerToken{
		Type:    token.Type(),
		Value:   token.AccessToken,
		Expires: token.Expiry,
	}, nil
}

// authorization returns the Authorization header value for the next request, renewing an
// expired JWT token first. Concurrent callers that both see an expired token both renew.
func (s *Spreadsheet) authorization(ctx context.Context) (string, error) {
	s.mu.RLock()
	mode := s.mode
	credential := s.credential
	s.mu.RUnlock()

	if mode == AuthJWT {
		if token, ok := credential.(BearerToken); !ok || token.Expired(time.Now()) {
			if err := s.renew(ctx); err != nil {
				return "", err
			}

			credential = s.Credential()
		}
	}

	if credential == nil {
		return "", nil
	}

	return credential.authorization(), nil
}

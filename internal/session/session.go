// Package session manages the authenticated connection to the provisioning
// API.
//
// A Session obtains an access token with the OAuth2 password grant, keeps
// track of when it was issued and refreshes it with the refresh-token grant
// shortly before it expires. Callers check Refresh before every request and
// send requests through Do, which attaches the bearer token.
package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"netcompiler/internal/config"
)

// RefreshMargin is how long before expiry a token is refreshed
const RefreshMargin = 120 * time.Second

const tokenPath = "/api/o/token/"

var (
	// ErrAuthentication wraps every failure to obtain or refresh a token
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotConnected is returned when a request is attempted before Connect
	ErrNotConnected = errors.New("session not connected")
)

// Option configures a Session
type Option func(*Session)

// WithClock replaces the clock used for expiry bookkeeping
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithHTTPClient replaces the client used for token and API requests
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithLogger sets the session logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session holds the token state for one API endpoint. Calls are made from a
// single goroutine; a Session is not safe for concurrent use.
type Session struct {
	api    config.APIConfig
	creds  config.Credentials
	client *http.Client
	oauth  *oauth2.Config
	log    zerolog.Logger
	now    func() time.Time

	token    *oauth2.Token
	issuedAt time.Time
	lifetime time.Duration
}

// New creates an unconnected session
func New(api config.APIConfig, creds config.Credentials, opts ...Option) *Session {
	s := &Session{
		api:   api,
		creds: creds,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = newHTTPClient(api)
	}

	s.oauth = &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.Domain() + tokenPath,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	return s
}

func newHTTPClient(api config.APIConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !api.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via verify_ssl: false
	}

	client := &http.Client{Transport: transport}
	if api.Timeout != nil {
		client.Timeout = api.Timeout.Duration()
	}
	return client
}

// Domain returns the scheme and host of the API, e.g. https://sdi.example.com
func (s *Session) Domain() string {
	scheme := s.api.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimSuffix(s.api.Domain, "/")
}

// BaseURL returns the root every API path is relative to
func (s *Session) BaseURL() string {
	return s.Domain() + "/api/"
}

// Username returns the account the session authenticates as
func (s *Session) Username() string {
	return s.creds.Username
}

// Connect performs the password grant
func (s *Session) Connect(ctx context.Context) error {
	tok, err := s.oauth.PasswordCredentialsToken(s.tokenContext(ctx), s.creds.Username, s.creds.Password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	s.store(tok)

	s.log.Info().
		Str("user", s.creds.Username).
		Dur("lifetime", s.lifetime).
		Msg("authenticated")
	return nil
}

// Refresh renews the token when it is within RefreshMargin of expiring.
// It is a no-op otherwise.
func (s *Session) Refresh(ctx context.Context) error {
	if s.token == nil {
		return ErrNotConnected
	}
	if !s.needsRefresh() {
		return nil
	}

	src := s.oauth.TokenSource(s.tokenContext(ctx), &oauth2.Token{RefreshToken: s.token.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: refresh: %w", ErrAuthentication, err)
	}
	s.store(tok)

	s.log.Debug().Dur("lifetime", s.lifetime).Msg("token refreshed")
	return nil
}

// Do sends req with the current bearer token
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.token == nil {
		return nil, ErrNotConnected
	}

	s.token.SetAuthHeader(req)
	if s.api.Version != "" {
		req.Header.Set("Accept", "application/json; version="+s.api.Version)
	}
	return s.client.Do(req)
}

func (s *Session) needsRefresh() bool {
	if s.lifetime <= 0 {
		return false
	}
	return s.now().Sub(s.issuedAt) >= s.lifetime-RefreshMargin
}

// store records tok as the current token
func (s *Session) store(tok *oauth2.Token) {
	s.token = tok
	s.issuedAt = s.now()
	s.lifetime = lifetime(tok)
}

// lifetime reads the token lifetime from expires_in, falling back to the
// absolute expiry the oauth2 package derived from it
func lifetime(tok *oauth2.Token) time.Duration {
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	}
	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry).Round(time.Second)
	}
	return 0
}

func (s *Session) tokenContext(ctx context.Context) context.Context {
	client := &http.Client{
		Transport: &tenancyTransport{base: s.client.Transport, tenancy: s.creds.Tenancy},
		Timeout:   s.client.Timeout,
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

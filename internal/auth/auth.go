// package auth owns the Spotify credential for a run: interactive login, refresh, and token lookup
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultAuthTimeout = 5 * time.Minute
	defaultTokenTTL    = time.Hour
	shutdownTimeout    = 5 * time.Second
)

// Scopes requested during the authorization code flow.
var Scopes = []string{"playlist-modify-public", "playlist-modify-private", "playlist-read-private"}

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	Spotify    shared.SpotifyConfig
	Server     shared.ServerConfig
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client

	// Credential seeds the manager. Token skips the interactive flow while it is valid or refreshable.
	Credential *models.Credential

	// OnListen is called with the login URL once the callback acceptor is accepting connections.
	OnListen    func(loginURL string)
	OpenBrowser func(url string) error
	Now         func() time.Time
}

// Manager holds the credential for a single run.
//
// It is safe for concurrent use, though a run only ever calls it sequentially.
type Manager struct {
	oauth       *oauth2.Config
	server      shared.ServerConfig
	logger      *log.Logger
	output      io.Writer
	httpClient  *http.Client
	onListen    func(string)
	openBrowser func(string) error
	now         func() time.Time

	mu         sync.Mutex
	credential *models.Credential
	attempted  bool
}

// NewManager creates a [Manager] from opts, filling in defaults for unset hooks.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		oauth:       OAuthConfig(opts.Spotify),
		server:      opts.Server,
		logger:      shared.WithLogger(opts.Logger, "component", "auth"),
		output:      opts.Output,
		httpClient:  opts.HTTPClient,
		onListen:    opts.OnListen,
		openBrowser: opts.OpenBrowser,
		now:         opts.Now,
		credential:  opts.Credential,
	}
}

// OAuthConfig builds the authorization code flow configuration.
//
// Client credentials are sent with HTTP Basic auth on token requests.
func OAuthConfig(cfg shared.SpotifyConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Token returns a usable access token.
//
// A valid credential is returned as is. An expired one is refreshed when a refresh token exists.
// Otherwise the interactive flow runs, at most once per [Manager].
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.credential.ValidAt(m.now()) {
		return m.credential.AccessToken, nil
	}

	if m.credential != nil && m.credential.RefreshToken != "" {
		if err := m.refresh(ctx); err != nil {
			return "", err
		}
		return m.credential.AccessToken, nil
	}

	if m.attempted {
		return "", fmt.Errorf("%w: %w", shared.ErrAuth, shared.ErrNotAuthenticated)
	}

	if err := m.login(ctx); err != nil {
		return "", err
	}
	return m.credential.AccessToken, nil
}

// Login runs the interactive authorization code flow.
//
// It returns an [shared.ErrAuth] error when the flow was already attempted.
func (m *Manager) Login(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempted {
		return fmt.Errorf("%w: %w: login already attempted", shared.ErrAuth, shared.ErrNotAuthenticated)
	}
	return m.login(ctx)
}

// refresh exchanges the refresh token for a new access token. Caller holds mu.
func (m *Manager) refresh(ctx context.Context) error {
	old := m.credential.RefreshToken
	m.logger.Debug("refreshing access token")

	source := m.oauth.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: old})
	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("%w: %w: %v", shared.ErrAuth, shared.ErrRefreshFailed, err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = old
	}

	m.setToken(token)
	m.logger.Info("access token refreshed", "expires", m.credential.ExpiresAt.Format(time.RFC3339))
	return nil
}

// login serves the callback acceptor until a result arrives. Caller holds mu.
func (m *Manager) login(ctx context.Context) error {
	m.attempted = true

	handler := server.NewOAuthHandler(m.oauth, m.httpClient)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(m.logger))
	router.Handler(handler)

	listener, err := net.Listen("tcp", m.server.Addr())
	if err != nil {
		return fmt.Errorf("%w: failed to start callback server: %v", shared.ErrAuth, err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			m.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	loginURL := fmt.Sprintf("http://%s/login", listener.Addr().String())
	m.logger.Info("callback server listening", "addr", listener.Addr().String())
	fmt.Fprintf(m.output, "→ Open this URL to authorize Spotify access:\n%s\n", loginURL)

	if m.server.OpenBrowser {
		if err := m.openBrowser(loginURL); err != nil {
			m.logger.Warn("failed to open browser automatically", "error", err)
		}
	}
	if m.onListen != nil {
		m.onListen(loginURL)
	}

	timeout := m.server.AuthTimeout
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("%w: callback server error: %v", shared.ErrAuth, err)
	case <-timer.C:
		return fmt.Errorf("%w: %w: no callback after %s", shared.ErrAuth, shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", shared.ErrAuth, ctx.Err())
	}

	if result.Error() != nil {
		return result.Error()
	}
	if result.Token == nil {
		return fmt.Errorf("%w: %w: no token received", shared.ErrAuth, shared.ErrNotAuthenticated)
	}

	m.setToken(result.Token)
	m.logger.Info("authorization complete")
	fmt.Fprintln(m.output, "✓ Authorization successful")
	return nil
}

// setToken replaces the credential wholesale. A token without an expiry gets the provider's default
// lifetime so it is not refreshed on every call.
func (m *Manager) setToken(token *oauth2.Token) {
	credential := models.CredentialFromToken(token)
	if credential.ExpiresAt.IsZero() {
		credential.ExpiresAt = m.now().Add(defaultTokenTTL)
	}
	m.credential = credential
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
        a { color: #1DB954; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
        {{if .Link}}<p><a href="{{.Link}}">Log in with Spotify</a></p>{{end}}
    </div>
</body>
</html>
`))

type page struct {
	Title   string
	Message string
	Link    string
}

// OAuthHandler serves the entry page, the login redirect and the OAuth2 callback.
// Implements the Handler interface for registration with a Router.
//
// A fresh state nonce is issued on every /login; /callback must echo the latest one.
type OAuthHandler struct {
	config     *oauth2.Config
	client     *http.Client
	newState   func() (string, error)
	resultChan chan OAuthResult
	once       sync.Once

	mu          sync.Mutex
	state       string
	callbackHit bool
}

// NewOAuthHandler creates a new OAuth handler for config.
//
// client, when non-nil, is used for the code exchange.
func NewOAuthHandler(config *oauth2.Config, client *http.Client) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		client:     client,
		newState:   shared.GenerateState,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/", "/login", "/callback"}
}

// ServeHTTP dispatches on the request path.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		h.index(w)
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *OAuthHandler) index(w http.ResponseWriter) {
	render(w, http.StatusOK, page{
		Title:   "crate",
		Message: "Authorize crate to read and modify your playlists.",
		Link:    "/login",
	})
}

// login issues a new state nonce and redirects to the provider's authorization page.
func (h *OAuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := h.newState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.state = state
	h.mu.Unlock()

	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusFound)
}

// callback validates the state parameter, exchanges the authorization code for tokens,
// and sends the result through the result channel. Only the first callback is processed.
func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	expected := h.state
	h.mu.Unlock()

	query := r.URL.Query()
	if state := query.Get("state"); expected == "" || state != expected {
		h.Send(OAuthResult{err: fmt.Errorf("%w: %w", shared.ErrAuth, shared.ErrStateMismatch)})
		render(w, http.StatusBadRequest, page{Title: "Authorization Failed", Message: "state_mismatch"})
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %w: %s - %s", shared.ErrAuth, shared.ErrNotAuthenticated, query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{err: err})
		render(w, http.StatusBadRequest, page{Title: "Authorization Failed", Message: "The authorization request was denied."})
		return
	}

	ctx := r.Context()
	if h.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, h.client)
	}

	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuth, err)})
		render(w, http.StatusInternalServerError, page{Title: "Authorization Failed", Message: "Token exchange failed."})
		return
	}

	h.Send(OAuthResult{Token: token})
	render(w, http.StatusOK, page{
		Title:   "✓ Authorization Successful",
		Message: "You can close this window and return to the terminal.",
	})
}

func render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, p)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

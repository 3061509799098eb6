package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/auth"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/service"
	"github.com/sakif/devblog/internal/validation"
)

const stateCookieName = "oauth_state"

// AuthService is what AuthHandler needs from the service layer.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*service.AuthResult, error)
	CreateNewAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, id model.Identity) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// OAuthProvider is the GitHub side of the login flow. *auth.GitHubProvider
// implements it.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// CookieConfig controls the access token cookie.
type CookieConfig struct {
	// MaxAge should match the access token TTL so the cookie never outlives
	// the token inside it.
	MaxAge time.Duration
	// Secure limits the cookie to HTTPS. Only disable for local development.
	Secure bool
}

// LoginResponse is the body of a successful POST /api/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccessTokenResponse is the body of a successful POST /api/token.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// AuthHandler serves login, token refresh, logout and the current user.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin          → email + password → access + refresh token
//   - HandleToken          → refresh token → new access token
//   - HandleLogout         → delete the refresh token, clear the cookie
//   - HandleMe             → the caller's user record
//   - HandleGitHubLogin    → redirect the browser to GitHub
//   - HandleGitHubCallback → finish the GitHub login, set the cookie
type AuthHandler struct {
	svc       AuthService
	github    OAuthProvider // nil when GitHub login is not configured
	validator *validation.Validator
	cookie    CookieConfig
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil.
func NewAuthHandler(
	svc AuthService,
	github OAuthProvider,
	validator *validation.Validator,
	cookie CookieConfig,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:       svc,
		github:    github,
		validator: validator,
		cookie:    cookie,
		logger:    logger,
	}
}

// HandleLogin authenticates with email and password.
//
// HTTP: POST /api/login
// REQUEST BODY: {"email": "alice@example.com", "password": "..."}
// RESPONSE: 200 {"accessToken": "...", "refreshToken": "..."} and the token cookie
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in validation.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.AccessToken)
	writeJSON(w, r, http.StatusOK, LoginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// HandleToken issues a new access token for a refresh token.
//
// HTTP: POST /api/token
// REQUEST BODY: {"refreshToken": "..."}
// RESPONSE: 201 {"accessToken": "..."}
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var in validation.TokenInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	access, err := h.svc.CreateNewAccessToken(r.Context(), in.RefreshToken)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, AccessTokenResponse{AccessToken: access})
}

// HandleLogout deletes the caller's refresh token and the token cookie.
//
// HTTP: POST /api/logout
//
// WHY POST AND NOT GET?
// Logout changes state. A GET could be triggered cross-site or by a browser
// prefetching the URL.
//
// The access token itself stays valid until it expires; without the cookie
// (or the client discarding it) the browser just stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := h.svc.Logout(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthenticated("valid authentication required"))
		return
	}

	user, err := h.svc.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, user)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state goes into a short-lived cookie and into the GitHub URL.
// HandleGitHubCallback only proceeds when the two match.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		NotFound(w, r)
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Find or create the local user, store a refresh token
//  4. Put the access token in the HttpOnly cookie and redirect home
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		NotFound(w, r)
		return
	}

	// --- Step 1: Validate CSRF state ---
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: missing or mismatched state")
		writeError(w, r, h.logger, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// GitHub sends ?error=access_denied when the user declines.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	// --- Step 2: Exchange code for GitHub user profile ---
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, h.logger, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		// writeError logs it and answers 500.
		writeError(w, r, h.logger, err)
		return
	}

	// --- Step 3: Find or create the user, issue tokens ---
	res, err := h.svc.LoginGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// --- Step 4: Cookie + redirect ---
	h.setTokenCookie(w, res.AccessToken)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setTokenCookie stores the access token in an HttpOnly cookie.
// HttpOnly = JavaScript cannot read this cookie (XSS protection).
// SameSite=Lax = sent on top-level navigations, not on cross-site POSTs.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

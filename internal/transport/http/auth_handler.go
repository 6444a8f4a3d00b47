package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"venturevet/internal/auth"
	"venturevet/internal/logger"
	"venturevet/internal/redirect"
	"venturevet/internal/session"
)

// userPayload is the public projection of a user returned by auth endpoints.
// The password hash never leaves the storage layer.
type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// AuthHandler owns the authentication API surface. All of it sits under
// /api/auth/, which the route guard exempts: these endpoints must stay
// reachable regardless of session state.
type AuthHandler struct {
	svc      *auth.Service
	users    auth.Storage
	issuer   *session.Issuer
	cookies  *session.CookieTransport
	resolver *redirect.Resolver
	logger   *slog.Logger
}

// NewAuthHandler wires the authentication handler.
func NewAuthHandler(svc *auth.Service, users auth.Storage, issuer *session.Issuer, cookies *session.CookieTransport, resolver *redirect.Resolver, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuthHandler{
		svc:      svc,
		users:    users,
		issuer:   issuer,
		cookies:  cookies,
		resolver: resolver,
		logger:   log,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if respondValidationError(w, err) {
			return
		}
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			// Duplicate email is reported specifically; it is not a
			// security-sensitive distinction like invalid credentials.
			respondJSON(w, http.StatusConflict, map[string]any{
				"success": false,
				"message": "email already registered",
			})
			return
		}
		h.logger.Error("registration failed", logger.Error(err), logger.Component("auth_handler"))
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "failed to register",
		})
		return
	}

	h.establishSession(w, user, auth.ProviderCredentials)
	respondJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"user":        toUserPayload(user),
		"redirectUrl": h.resolver.Resolve(r.URL.Query().Get("callbackUrl")),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.svc.Authenticate(r.Context(), auth.CredentialsAttempt{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// One generic message for every credential failure; never reveal
		// whether the account exists.
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "invalid credentials",
		})
		return
	}

	h.establishSession(w, result.User, result.Provider)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"user":        toUserPayload(result.User),
		"redirectUrl": h.resolver.Resolve(r.URL.Query().Get("callbackUrl")),
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout is
// purely a client-side credential drop.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GoogleStart handles GET /api/auth/google and redirects the client to the
// provider's consent screen.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.svc.AuthURL(r.Context(), auth.ProviderGoogle)
	if err != nil {
		h.logger.Error("failed to start oauth flow", logger.Error(err), logger.Component("auth_handler"))
		h.redirectToLogin(w, r, "oauth_unavailable")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback handles GET /api/auth/google/callback, the provider's
// inbound redirect. Provider errors surface as a login-page query parameter,
// never as a thrown error to the client.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if provErr := q.Get("error"); provErr != "" {
		h.redirectToLogin(w, r, provErr)
		return
	}
	code := q.Get("code")
	if code == "" {
		h.redirectToLogin(w, r, "missing_code")
		return
	}

	result, err := h.svc.Authenticate(r.Context(), auth.OAuthAttempt{
		Provider: auth.ProviderGoogle,
		Code:     code,
		State:    q.Get("state"),
	})
	if err != nil {
		h.logger.Warn("oauth callback failed", logger.Error(err), logger.Component("auth_handler"))
		h.redirectToLogin(w, r, "oauth_failed")
		return
	}

	h.establishSession(w, result.User, result.Provider)

	// The callback URL itself is never a user-intended destination; always
	// land on the default page. An account-linking event is flagged so the
	// UI can notify the user that who may sign in as them has broadened.
	dest := h.resolver.Default()
	if result.Linked {
		dest += "?linked=google"
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

// Me handles GET /api/auth/me. The path is guard-exempt, so the handler
// verifies the session itself and answers 401 when there is none.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, err := h.cookies.Token(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	claims, err := h.issuer.Verify(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":     toUserPayload(user),
		"provider": claims.Provider,
	})
}

// establishSession mints a session token for an authenticated user and sets
// the cookie. This is the only place a token is ever minted.
func (h *AuthHandler) establishSession(w http.ResponseWriter, user *auth.User, provider string) {
	token, err := h.issuer.Mint(user.ID, provider)
	if err != nil {
		// Minting only fails on marshal/sign errors, which are programming
		// errors; log loudly but leave the response to the caller.
		h.logger.Error("failed to mint session token",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("auth_handler"),
		)
		return
	}
	h.cookies.Set(w, token, h.issuer.MaxAge())
}

func (h *AuthHandler) redirectToLogin(w http.ResponseWriter, r *http.Request, errCode string) {
	v := url.Values{}
	v.Set("error", errCode)
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusFound)
}

func toUserPayload(user *auth.User) userPayload {
	return userPayload{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	}
}

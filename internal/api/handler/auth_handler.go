package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/api/flash"
	"github.com/bellybox/bellybox-api/internal/api/metrics"
	"github.com/bellybox/bellybox-api/internal/api/middleware"
	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

const (
	registerPath = "/register"
	loginPath    = middleware.LoginPath

	msgRegistered    = "Registration successful! Please login."
	msgLoginFailed   = "Login failed. Check your credentials."
	msgLoggedOut     = "You have been logged out."
	msgDuplicateMail = "An account with that email already exists."
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	auth     ports.AuthService
	sessions ports.SessionManager
	audit    ports.AuditRecorder
	cookie   CookieConfig
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionManager, audit ports.AuditRecorder, cookie CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		audit:    audit,
		cookie:   cookie,
		log:      log,
	}
}

type registerRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=50"`
	Email    string `form:"email"    json:"email"    validate:"required,email,max=100"`
	Phone    string `form:"phone"    json:"phone"    validate:"omitempty,max=15"`
	Password string `form:"password" json:"password" validate:"required,max=72,maxbytes=72"`
}

type loginRequest struct {
	Email    string `form:"email"    json:"email"`
	Password string `form:"password" json:"password"`
}

// RegisterPage shows the registration form.
//
// @Summary      Registration page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  pageView
// @Router       /register [get]
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return render(c, "register")
}

// Register creates a customer account. The role cannot be chosen.
//
// @Summary      Register a new customer
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Param        username  formData  string  true   "Display name"
// @Param        email     formData  string  true   "Email address"
// @Param        phone     formData  string  false  "Phone number"
// @Param        password  formData  string  true   "Password"
// @Success      303  "Redirect to /login"
// @Failure      303  "Redirect back to /register with a danger notice"
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.rejectRegistration(c, "", "invalid_input", "Invalid registration form.")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := c.Validate(&req); err != nil {
		return h.rejectRegistration(c, req.Email, "invalid_input", err.Error())
	}

	id, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return h.rejectRegistration(c, req.Email, "duplicate_email", msgDuplicateMail)
	case errors.Is(err, domain.ErrInvalidInput):
		return h.rejectRegistration(c, req.Email, "invalid_input", err.Error())
	case err != nil:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	h.record(c, domain.AuthEventRegistered, id, req.Email, "")
	h.log.Info().Int64("user_id", id).Str("email", domain.NormalizeEmail(req.Email)).Msg("user registered")

	return flash.Redirect(c, loginPath, flash.Success, msgRegistered)
}

func (h *AuthHandler) rejectRegistration(c echo.Context, email, reason, message string) error {
	metrics.RegistrationsTotal.WithLabelValues(reason).Inc()
	h.record(c, domain.AuthEventRegisterRejected, 0, email, reason)
	h.log.Warn().Str("email", domain.NormalizeEmail(email)).Str("reason", reason).Msg("registration rejected")
	return flash.Redirect(c, registerPath, flash.Danger, message)
}

// LoginPage shows the login form.
//
// @Summary      Login page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  pageView
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return render(c, "login")
}

// Login verifies credentials, starts a session and redirects to the
// dashboard owned by the user's role.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Param        email     formData  string  true  "Email address"
// @Param        password  formData  string  true  "Password"
// @Success      303  "Redirect to the role's dashboard, session cookie set"
// @Failure      303  "Redirect back to /login with a danger notice"
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.rejectLogin(c, "", "malformed form")
	}

	ctx := c.Request().Context()
	id, err := h.auth.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return h.rejectLogin(c, req.Email, "invalid credentials")
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	dashboard, err := domain.RouteAfterLogin(id)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	if prior := middleware.TokenFrom(c); prior != "" {
		if err := h.sessions.End(ctx, prior); err != nil {
			h.log.Error().Err(err).Int64("user_id", id.UserID).Msg("ending prior session failed")
		} else {
			metrics.SessionsEndedTotal.Inc()
		}
	}

	token, err := h.sessions.Start(ctx, id)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}
	middleware.SetSessionCookie(c, token, int(h.cookie.TTL.Seconds()), h.cookie.Secure)

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionsStartedTotal.Inc()
	h.record(c, domain.AuthEventLoginSucceeded, id.UserID, req.Email, "")
	h.log.Info().Int64("user_id", id.UserID).Str("role", id.Role.String()).Msg("login succeeded")

	return flash.Redirect(c, dashboard.Path(), flash.Success, "Welcome back, "+id.Username+"!")
}

func (h *AuthHandler) rejectLogin(c echo.Context, email, reason string) error {
	metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
	h.record(c, domain.AuthEventLoginFailed, 0, email, reason)
	h.log.Warn().
		Str("email", domain.NormalizeEmail(email)).
		Str("remote_ip", c.RealIP()).
		Msg("login failed")
	return flash.Redirect(c, loginPath, flash.Danger, msgLoginFailed)
}

// Logout ends the current session.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "Redirect to /login"
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, _ := Identity(c)

	if err := h.sessions.End(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
		h.log.Error().Err(err).Int64("user_id", id.UserID).Msg("ending session failed")
	}
	middleware.ClearSessionCookie(c, h.cookie.Secure)

	metrics.SessionsEndedTotal.Inc()
	h.record(c, domain.AuthEventLoggedOut, id.UserID, "", "")

	return flash.Redirect(c, loginPath, flash.Info, msgLoggedOut)
}

func (h *AuthHandler) record(c echo.Context, kind domain.AuthEventKind, userID int64, email, reason string) {
	if h.audit == nil {
		return
	}
	h.audit.Record(domain.AuthEvent{
		Kind:       kind,
		UserID:     userID,
		Email:      domain.NormalizeEmail(email),
		Reason:     reason,
		RemoteIP:   c.RealIP(),
		OccurredAt: time.Now().UTC(),
	})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/api/flash"
	"github.com/bellybox/bellybox-api/internal/api/middleware"
	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (int64, error)
	authenticateFn func(ctx context.Context, email, password string) (domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (int64, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	return s.authenticateFn(ctx, email, password)
}

type stubSessions struct {
	started []domain.Identity
	ended   []string
	byToken map[string]domain.Identity
}

func (s *stubSessions) Start(_ context.Context, id domain.Identity) (string, error) {
	s.started = append(s.started, id)
	token := "token-" + id.Username
	if s.byToken == nil {
		s.byToken = map[string]domain.Identity{}
	}
	s.byToken[token] = id
	return token, nil
}

func (s *stubSessions) Current(_ context.Context, token string) (domain.Identity, error) {
	id, ok := s.byToken[token]
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

func (s *stubSessions) End(_ context.Context, token string) error {
	s.ended = append(s.ended, token)
	delete(s.byToken, token)
	return nil
}

type recordingAudit struct {
	events []domain.AuthEvent
}

func (r *recordingAudit) Record(e domain.AuthEvent) {
	r.events = append(r.events, e)
}

type authFixture struct {
	e        *echo.Echo
	auth     *stubAuthService
	sessions *stubSessions
	audit    *recordingAudit
	handler  *AuthHandler
}

func newAuthFixture() *authFixture {
	e := echo.New()
	e.Validator = NewValidator()
	f := &authFixture{
		e:        e,
		auth:     &stubAuthService{},
		sessions: &stubSessions{},
		audit:    &recordingAudit{},
	}
	f.handler = NewAuthHandler(f.auth, f.sessions, f.audit, CookieConfig{TTL: time.Hour}, zerolog.Nop())
	return f
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Fatalf("expected redirect to %s, got %q", location, got)
	}
}

func aliceForm() url.Values {
	return url.Values{
		"username": {"alice"},
		"email":    {"alice@x.com"},
		"phone":    {"555-0100"},
		"password": {"pw123"},
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	f := newAuthFixture()
	f.auth.registerFn = func(_ context.Context, in ports.RegisterInput) (int64, error) {
		if in.Username != "alice" || in.Email != "alice@x.com" || in.Phone != "555-0100" || in.Password != "pw123" {
			t.Fatalf("unexpected input: %+v", in)
		}
		return 1, nil
	}

	rec := httptest.NewRecorder()
	c := f.e.NewContext(formRequest(http.MethodPost, "/register", aliceForm()), rec)
	if err := f.handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	assertRedirect(t, rec, "/login")
	if findCookie(rec, flash.CookieName) == nil {
		t.Fatalf("expected flash notice")
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Kind != domain.AuthEventRegistered {
		t.Fatalf("expected registered event, got %+v", f.audit.events)
	}
}

func TestAuthHandler_Register_JSONBody(t *testing.T) {
	f := newAuthFixture()
	called := false
	f.auth.registerFn = func(_ context.Context, in ports.RegisterInput) (int64, error) {
		called = true
		return 2, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"username":"bob","email":"bob@x.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := f.handler.Register(f.e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertRedirect(t, rec, "/login")
	if !called {
		t.Fatalf("service not called")
	}
}

func TestAuthHandler_Register_Rejected(t *testing.T) {
	tests := map[string]struct {
		form       url.Values
		serviceErr error
	}{
		"duplicate email": {form: aliceForm(), serviceErr: domain.ErrDuplicateEmail},
		"missing email":   {form: url.Values{"username": {"alice"}, "password": {"pw"}}},
		"bad email":       {form: url.Values{"username": {"alice"}, "email": {"nope"}, "password": {"pw"}}},
		"long phone":      {form: url.Values{"username": {"a"}, "email": {"a@x.com"}, "password": {"pw"}, "phone": {"0123456789012345"}}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newAuthFixture()
			f.auth.registerFn = func(context.Context, ports.RegisterInput) (int64, error) {
				if tc.serviceErr == nil {
					t.Fatalf("service must not be called for invalid input")
				}
				return 0, tc.serviceErr
			}

			rec := httptest.NewRecorder()
			if err := f.handler.Register(f.e.NewContext(formRequest(http.MethodPost, "/register", tc.form), rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			assertRedirect(t, rec, "/register")
			if len(f.audit.events) != 1 || f.audit.events[0].Kind != domain.AuthEventRegisterRejected {
				t.Fatalf("expected register_rejected event, got %+v", f.audit.events)
			}
		})
	}
}

func TestAuthHandler_Register_UnexpectedError(t *testing.T) {
	f := newAuthFixture()
	f.auth.registerFn = func(context.Context, ports.RegisterInput) (int64, error) {
		return 0, errors.New("db down")
	}

	c := f.e.NewContext(formRequest(http.MethodPost, "/register", aliceForm()), httptest.NewRecorder())
	if err := f.handler.Register(c); err == nil {
		t.Fatalf("expected error to reach the error handler")
	}
}

func TestAuthHandler_Login_RoutesByRole(t *testing.T) {
	tests := map[domain.Role]string{
		domain.RoleAdmin:    "/admin/dashboard",
		domain.RoleCustomer: "/customer/dashboard",
		domain.RoleDelivery: "/delivery/dashboard",
	}

	for role, location := range tests {
		t.Run(role.String(), func(t *testing.T) {
			f := newAuthFixture()
			f.auth.authenticateFn = func(_ context.Context, email, password string) (domain.Identity, error) {
				return domain.Identity{UserID: 1, Username: "alice", Role: role}, nil
			}

			form := url.Values{"email": {"alice@x.com"}, "password": {"pw123"}}
			rec := httptest.NewRecorder()
			if err := f.handler.Login(f.e.NewContext(formRequest(http.MethodPost, "/login", form), rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			assertRedirect(t, rec, location)
			cookie := findCookie(rec, middleware.SessionCookie)
			if cookie == nil || cookie.Value != "token-alice" {
				t.Fatalf("expected session cookie, got %+v", cookie)
			}
			if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
				t.Fatalf("session cookie must be HttpOnly and SameSite=Lax")
			}
			if cookie.MaxAge != 3600 {
				t.Fatalf("expected MaxAge 3600, got %d", cookie.MaxAge)
			}
		})
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	f.auth.authenticateFn = func(context.Context, string, string) (domain.Identity, error) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	form := url.Values{"email": {"alice@x.com"}, "password": {"wrong"}}
	rec := httptest.NewRecorder()
	if err := f.handler.Login(f.e.NewContext(formRequest(http.MethodPost, "/login", form), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	assertRedirect(t, rec, "/login")
	if findCookie(rec, middleware.SessionCookie) != nil {
		t.Fatalf("no session cookie expected on failure")
	}
	if len(f.sessions.started) != 0 {
		t.Fatalf("no session expected on failure")
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Kind != domain.AuthEventLoginFailed {
		t.Fatalf("expected login_failed event, got %+v", f.audit.events)
	}
}

func TestAuthHandler_Login_EndsPriorSession(t *testing.T) {
	f := newAuthFixture()
	f.sessions.byToken = map[string]domain.Identity{
		"token-bob": {UserID: 2, Username: "bob", Role: domain.RoleDelivery},
	}
	f.auth.authenticateFn = func(context.Context, string, string) (domain.Identity, error) {
		return domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleCustomer}, nil
	}

	form := url.Values{"email": {"alice@x.com"}, "password": {"pw123"}}
	req := formRequest(http.MethodPost, "/login", form)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token-bob"})
	rec := httptest.NewRecorder()

	h := middleware.Session(f.sessions, zerolog.Nop())(f.handler.Login)
	if err := h(f.e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	assertRedirect(t, rec, "/customer/dashboard")
	if len(f.sessions.ended) != 1 || f.sessions.ended[0] != "token-bob" {
		t.Fatalf("expected prior session to be ended, got %v", f.sessions.ended)
	}
	if _, ok := f.sessions.byToken["token-bob"]; ok {
		t.Fatalf("prior token still resolves")
	}
	if cookie := findCookie(rec, middleware.SessionCookie); cookie == nil || cookie.Value != "token-alice" {
		t.Fatalf("expected new session cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture()
	f.sessions.byToken = map[string]domain.Identity{
		"token-alice": {UserID: 1, Username: "alice", Role: domain.RoleCustomer},
	}

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token-alice"})
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	h := middleware.Session(f.sessions, zerolog.Nop())(f.handler.Logout)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	assertRedirect(t, rec, "/login")
	if len(f.sessions.ended) != 1 || f.sessions.ended[0] != "token-alice" {
		t.Fatalf("expected session to be ended, got %v", f.sessions.ended)
	}
	if cookie := findCookie(rec, middleware.SessionCookie); cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared, got %+v", cookie)
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Kind != domain.AuthEventLoggedOut {
		t.Fatalf("expected logged_out event, got %+v", f.audit.events)
	}
}

func TestRender_ConsumesFlashAndShowsUser(t *testing.T) {
	f := newAuthFixture()
	f.sessions.byToken = map[string]domain.Identity{
		"token-alice": {UserID: 1, Username: "alice", Role: domain.RoleCustomer},
	}

	// First leg: a redirect leaves a notice behind.
	first := httptest.NewRecorder()
	if err := flash.Redirect(f.e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), first), "/", flash.Info, "hello"); err != nil {
		t.Fatalf("redirect: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(findCookie(first, flash.CookieName))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token-alice"})
	rec := httptest.NewRecorder()

	h := middleware.Session(f.sessions, zerolog.Nop())(NewDashboardHandler().Index)
	if err := h(f.e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var view struct {
		Page  string           `json:"page"`
		Flash *flash.Notice    `json:"flash"`
		User  *domain.Identity `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if view.Page != "index" {
		t.Fatalf("unexpected page %q", view.Page)
	}
	if view.Flash == nil || view.Flash.Message != "hello" {
		t.Fatalf("expected flash notice, got %+v", view.Flash)
	}
	if view.User == nil || view.User.Username != "alice" {
		t.Fatalf("expected user in view, got %+v", view.User)
	}
}

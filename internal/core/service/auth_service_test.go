package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bellybox/bellybox-api/internal/core/domain"
	"github.com/bellybox/bellybox-api/internal/core/ports"
)

type stubUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	nextID  int64
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.byEmail[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	return h
}

func newTestAuthService(t *testing.T) (*AuthService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo()
	return NewAuthService(repo, newTestHasher(t), zerolog.Nop()), repo
}

func aliceInput() ports.RegisterInput {
	return ports.RegisterInput{Username: "alice", Email: "alice@x.com", Phone: "555-0100", Password: "pw123"}
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	svc, repo := newTestAuthService(t)

	id, err := svc.Register(context.Background(), aliceInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a numeric id")
	}

	stored := repo.byEmail["alice@x.com"]
	if stored == nil {
		t.Fatalf("user not stored")
	}
	if stored.PasswordHash == "pw123" || strings.Contains(stored.PasswordHash, "pw123") {
		t.Fatalf("password stored in plaintext: %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %s", stored.Role)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
}

func TestAuthService_Register_SaltsEachHash(t *testing.T) {
	svc, repo := newTestAuthService(t)

	first := aliceInput()
	second := aliceInput()
	second.Email = "alice2@x.com"

	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if _, err := svc.Register(context.Background(), second); err != nil {
		t.Fatalf("register second: %v", err)
	}
	if repo.byEmail["alice@x.com"].PasswordHash == repo.byEmail["alice2@x.com"].PasswordHash {
		t.Fatalf("identical passwords produced identical hashes")
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	svc, repo := newTestAuthService(t)

	in := aliceInput()
	in.Email = "  Alice@X.com "
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := repo.byEmail["alice@x.com"]; !ok {
		t.Fatalf("expected normalized email key, got %v", repo.byEmail)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := map[string]ports.RegisterInput{
		"missing username": {Email: "a@x.com", Password: "pw"},
		"missing email":    {Username: "a", Password: "pw"},
		"missing password": {Username: "a", Email: "a@x.com"},
		"blank username":   {Username: "   ", Email: "a@x.com", Password: "pw"},
		"password bytes":   {Username: "a", Email: "a@x.com", Password: strings.Repeat("é", 72)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, repo := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	again := aliceInput()
	again.Username = "alice-again"
	if _, err := svc.Register(context.Background(), again); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(repo.byEmail) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(repo.byEmail))
	}
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	id, err := svc.Register(context.Background(), aliceInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	identity, err := svc.Authenticate(context.Background(), "ALICE@x.com", "pw123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != id || identity.Role != domain.RoleCustomer || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthService_Authenticate_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := svc.Authenticate(context.Background(), "alice@x.com", "nope")
	_, unknownEmail := svc.Authenticate(context.Background(), "ghost@x.com", "pw123")
	_, emptyPassword := svc.Authenticate(context.Background(), "alice@x.com", "")

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail, "empty password": emptyPassword} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	svc, repo := newTestAuthService(t)
	repo.findErr = errors.New("connection reset")

	_, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestAuthService_Provision(t *testing.T) {
	svc, repo := newTestAuthService(t)
	in := ports.RegisterInput{Username: "root", Email: "root@x.com", Password: "s3cret"}

	id, created, err := svc.Provision(context.Background(), in, domain.RoleAdmin)
	if err != nil || !created {
		t.Fatalf("provision: created=%v err=%v", created, err)
	}
	if repo.byEmail["root@x.com"].Role != domain.RoleAdmin {
		t.Fatalf("expected admin role")
	}

	again, created, err := svc.Provision(context.Background(), in, domain.RoleAdmin)
	if err != nil || created || again != id {
		t.Fatalf("second provision: id=%d created=%v err=%v", again, created, err)
	}

	if _, _, err := svc.Provision(context.Background(), in, domain.Role("owner")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestPasswordHasher_ClampsCost(t *testing.T) {
	h, err := NewPasswordHasher(1)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	if h.Cost() != bcrypt.MinCost {
		t.Fatalf("expected cost %d, got %d", bcrypt.MinCost, h.Cost())
	}
}

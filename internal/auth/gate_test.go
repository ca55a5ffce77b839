package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

type stubPrincipals struct {
	users map[string]*domain.User
	err   error
	calls int
}

func (s *stubPrincipals) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.users[id], nil
}

func newGateFixture(t *testing.T, role domain.Role) (*Gate, *stubPrincipals, string) {
	t.Helper()
	tm := NewTokenManager("secret", 5)
	user := &domain.User{ID: testUserID, Email: "leia@alderaan.gov", Active: true, Role: role}
	store := &stubPrincipals{users: map[string]*domain.User{testUserID: user}}
	issued, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return NewGate(tm, store), store, "Bearer " + issued.Value
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	f, ok := apperrors.AsFailure(err)
	if !ok || f.Code != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestGuardMissingCredentialFailsBeforeRoleCheck(t *testing.T) {
	gate, store, _ := newGateFixture(t, domain.RoleUser)
	ran := false

	err := gate.Guard(context.Background(), "", nil, func(context.Context, *domain.User) error {
		ran = true
		return nil
	})
	expectCode(t, err, apperrors.CodeTokenNotProvided)
	if ran || store.calls != 0 {
		t.Fatalf("nothing may run without a credential")
	}
}

func TestAuthenticateNonBearerIsNotProvided(t *testing.T) {
	gate, _, _ := newGateFixture(t, domain.RoleUser)
	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "Bearer   "} {
		_, err := gate.Authenticate(context.Background(), header)
		expectCode(t, err, apperrors.CodeTokenNotProvided)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	gate, _, _ := newGateFixture(t, domain.RoleUser)
	_, err := gate.Authenticate(context.Background(), "Bearer abc.def.ghi")
	expectCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthenticateUnknownPrincipalIsInvalid(t *testing.T) {
	gate, store, header := newGateFixture(t, domain.RoleUser)
	store.users = map[string]*domain.User{}

	_, err := gate.Authenticate(context.Background(), header)
	expectCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthenticateStorageFailureIsClassified(t *testing.T) {
	gate, store, header := newGateFixture(t, domain.RoleUser)
	store.err = errors.New("connection refused")

	_, err := gate.Authenticate(context.Background(), header)
	expectCode(t, err, apperrors.CodeStorage)
}

func TestAuthenticateLowercaseScheme(t *testing.T) {
	gate, _, header := newGateFixture(t, domain.RoleUser)
	user, err := gate.Authenticate(context.Background(), "bearer "+header[len("Bearer "):])
	if err != nil || user.ID != testUserID {
		t.Fatalf("expected principal, got %v, %v", user, err)
	}
}

func TestGuardRoleChecks(t *testing.T) {
	gate, _, header := newGateFixture(t, domain.RoleUser)

	err := gate.Guard(context.Background(), header, []string{"admin"}, func(context.Context, *domain.User) error {
		t.Fatalf("operation must not run for insufficient role")
		return nil
	})
	expectCode(t, err, apperrors.CodeForbidden)

	var got *domain.User
	err = gate.Guard(context.Background(), header, []string{"ADMIN", "user"}, func(_ context.Context, u *domain.User) error {
		got = u
		return nil
	})
	if err != nil || got == nil || got.ID != testUserID {
		t.Fatalf("expected guarded run with principal, got %v, %v", got, err)
	}
}

func TestGuardNoRoleStillAuthenticates(t *testing.T) {
	gate, _, header := newGateFixture(t, domain.RoleUser)
	ran := false
	if err := gate.Guard(context.Background(), header, nil, func(context.Context, *domain.User) error {
		ran = true
		return nil
	}); err != nil || !ran {
		t.Fatalf("expected run, got %v", err)
	}
}

func TestGuardPropagatesOperationFailure(t *testing.T) {
	gate, _, header := newGateFixture(t, domain.RoleAdmin)
	err := gate.Guard(context.Background(), header, []string{"Admin"}, func(context.Context, *domain.User) error {
		return apperrors.NewNotFound("movie", "x")
	})
	expectCode(t, err, "MOVIE_NOT_FOUND")
}

func TestMiddlewareRequire(t *testing.T) {
	gate, _, header := newGateFixture(t, domain.RoleUser)
	mw := NewMiddleware(gate)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		f := apperrors.ToFailure(err)
		return c.Status(f.HTTPStatus).SendString(f.Code)
	}})
	app.Get("/any", mw.Require(), func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("principal missing")
		}
		return c.SendString(user.ID)
	})
	app.Get("/admin", mw.Require(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	cases := []struct {
		path   string
		header string
		status int
		body   string
	}{
		{"/any", "", http.StatusUnauthorized, apperrors.CodeTokenNotProvided},
		{"/any", header, http.StatusOK, testUserID},
		{"/admin", header, http.StatusForbidden, apperrors.CodeForbidden},
		{"/admin", "", http.StatusUnauthorized, apperrors.CodeTokenNotProvided},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != tc.status || string(body) != tc.body {
			t.Fatalf("%s with %q: got %d %q, want %d %q", tc.path, tc.header, resp.StatusCode, body, tc.status, tc.body)
		}
	}
}

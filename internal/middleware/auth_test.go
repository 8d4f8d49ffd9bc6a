package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/", h, func(c *fiber.Ctx) error {
		id := Identity(c)
		if id == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(string(id.Role))
	})
	return app
}

func TestJWTOptional(t *testing.T) {
	app := newApp(JWTOptional(secret))

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("anonymous request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("anonymous request should pass, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad token should be rejected, got %d", resp.StatusCode)
	}
}

func TestJWTProtectedResolvesIdentity(t *testing.T) {
	app := newApp(JWTProtected(secret))

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token should be 401, got %d", resp.StatusCode)
	}

	token := sign(t, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": "m@example.com",
		"role":  "moderator",
		"exp":   time.Now().Add(time.Minute).Unix(),
	})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token rejected: %d", resp.StatusCode)
	}

	noSub := sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+noSub)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("token without subject should be 401, got %d", resp.StatusCode)
	}
}

func TestJWTProtectedRejectsInactiveAccount(t *testing.T) {
	active := uuid.New()
	app := newApp(JWTProtected(secret, func(_ context.Context, id uuid.UUID) (bool, error) {
		return id == active, nil
	}))

	for _, tc := range []struct {
		name string
		sub  uuid.UUID
		want int
	}{
		{"active", active, fiber.StatusOK},
		{"deleted", uuid.New(), fiber.StatusUnauthorized},
	} {
		token := sign(t, jwt.MapClaims{"sub": tc.sub.String(), "exp": time.Now().Add(time.Minute).Unix()})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.username = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndLogin creates the user and logs in through the API, returning the
// session cookie
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *http.Cookie) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	return user, ts.Login(t, user.Username, password)
}

// Login posts credentials and returns the session cookie from a 200 response
func (ts *TestServer) Login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	resp := ts.Do(t, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login failed with status %d: %s", resp.StatusCode, body)
	}

	for _, c := range resp.Cookies() {
		if c.Name == ts.Config.SessionCookieName {
			return c
		}
	}
	t.Fatalf("login response did not set %s cookie", ts.Config.SessionCookieName)
	return nil
}

// Do sends a request to an API path. body is JSON-encoded unless it is nil
// or already a []byte.
func (ts *TestServer) Do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(v)
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, ts.APIURL(path), reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Client issues the auth API calls. Each method maps to a single HTTP
// request against the service origin; none of them mutate local state.
type Client interface {
	SignUp(ctx context.Context, req SignUpRequest) (Profile, error)
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (string, error)
}

// Store persists the session fields across process restarts. Load is best
// effort: missing fields come back as zero values, never as an error.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// Record is the durable mirror of a session: four opaque string fields,
// written and cleared together.
type Record struct {
	AccessToken string
	User        string
	Role        string
	UserName    string
}

// IsZero reports whether the record carries no stored session.
func (r Record) IsZero() bool {
	return r.AccessToken == "" && r.User == "" && r.Role == "" && r.UserName == ""
}

// Profile is the user object returned by the auth service. Field shapes are
// server-owned, so it stays an open mapping; typed reads go through the
// accessor helpers.
type Profile map[string]any

// StringField returns a string-valued profile field, or "" when the field
// is absent or not a string.
func (p Profile) StringField(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Username returns the profile username, if present.
func (p Profile) Username() string {
	return p.StringField("username")
}

// Role returns the profile role tag, if present.
func (p Profile) Role() string {
	return p.StringField("role")
}

// LoginResult is the decoded outcome of a successful login call.
type LoginResult struct {
	Token    string
	Profile  Profile
	Approved bool
}

// Config holds client options.
type Config interface {
	GetBaseURL() string
	GetHTTPTimeout() int
	GetStorageDSN() string
	GetStorageSlot() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

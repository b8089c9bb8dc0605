package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestErrorMessagePriority(t *testing.T) {
	transport := errors.New("connection refused")

	tests := []struct {
		name         string
		detail       string
		message      string
		transportErr error
		want         string
	}{
		{
			name:         "detail wins over everything",
			detail:       "email already registered",
			message:      "bad request",
			transportErr: transport,
			want:         "email already registered",
		},
		{
			name:         "message next",
			message:      "bad request",
			transportErr: transport,
			want:         "bad request",
		},
		{
			name:         "transport error next",
			transportErr: transport,
			want:         "connection refused",
		},
		{
			name: "generic fallback",
			want: "authentication request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requestError("login", tt.detail, tt.message, tt.transportErr)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, IsRequestError(err))
		})
	}
}

func TestRequestErrorKeepsTransportCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := requestError("refresh", "detail text", "", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestApprovalFlag(t *testing.T) {
	assert.True(t, approvalFlag(true))
	assert.True(t, approvalFlag("true"))
	assert.False(t, approvalFlag(false))
	assert.False(t, approvalFlag("false"))
	assert.False(t, approvalFlag("True"))
	assert.False(t, approvalFlag(1))
	assert.False(t, approvalFlag(nil))
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateUnauthenticated, StateAuthenticated, true},
		{StateUnauthenticated, StateRefreshing, false},
		{StateAuthenticated, StateRefreshing, true},
		{StateAuthenticated, StateUnauthenticated, true},
		{StateRefreshing, StateAuthenticated, true},
		{StateRefreshing, StateUnauthenticated, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, canTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "<none>", maskToken(""))
	assert.Equal(t, "****", maskToken("short"))
	masked := maskToken("eyJhbGciOiJIUzI1NiJ9")
	assert.NotEqual(t, "eyJhbGciOiJIUzI1NiJ9", masked)
	assert.Contains(t, masked, "...")
}

func TestSessionFromRecordSoftFailsOnCorruptProfile(t *testing.T) {
	rec := Record{
		AccessToken: "t1",
		User:        `{"username":`,
		Role:        "student",
		UserName:    "a",
	}

	s := sessionFromRecord(rec, defLogger{})
	assert.Nil(t, s.User)
	assert.Equal(t, "t1", s.AccessToken)
	assert.False(t, s.IsAuthenticated())
}

func TestOpFromPath(t *testing.T) {
	assert.Equal(t, "login", opFromPath("api/auth/login"))
	assert.Equal(t, "refresh-token", opFromPath(pathRefresh))
	assert.Equal(t, "plain", opFromPath("plain"))
}

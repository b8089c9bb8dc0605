package session_test

import (
	"context"
	"sync"

	session "github.com/mentorhub/go-session"
	"github.com/stretchr/testify/mock"
)

// MockClient implements session.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) SignUp(ctx context.Context, req session.SignUpRequest) (session.Profile, error) {
	args := m.Called(ctx, req)
	profile, _ := args.Get(0).(session.Profile)
	return profile, args.Error(1)
}

func (m *MockClient) Login(ctx context.Context, creds session.Credentials) (session.LoginResult, error) {
	args := m.Called(ctx, creds)
	result, _ := args.Get(0).(session.LoginResult)
	return result, args.Error(1)
}

func (m *MockClient) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClient) Refresh(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockStore implements session.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) (session.Record, error) {
	args := m.Called(ctx)
	rec, _ := args.Get(0).(session.Record)
	return rec, args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, rec session.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockConfig implements session.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetBaseURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetHTTPTimeout() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetStorageDSN() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetStorageSlot() string {
	args := m.Called()
	return args.String(0)
}

// recordingSink captures activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []session.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event session.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Types() []session.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// testLogger swallows output during tests.
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

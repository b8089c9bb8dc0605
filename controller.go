package session

import (
	"context"
	"sync"
	"time"
)

// Controller owns the current session. It is the sole writer: every
// mutation happens under its lock and collaborators only ever receive
// snapshots. Within one originating request the 401 handling is
// linearized, the refresh call fully completes before the retry or the
// fallback logout is issued.
type Controller struct {
	client Client
	store  Store
	codec  TokenDecoder
	logger Logger
	sink   ActivitySink
	now    func() time.Time

	mu      sync.Mutex
	state   State
	session Session
	loading bool

	// gen is bumped whenever the session identity changes (login, logout).
	// Refresh completions that observe a stale generation are discarded so
	// a late refresh can never repopulate a signed-out session.
	gen uint64
}

// Option customizes controller construction.
type Option func(*Controller)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithActivitySink sets the ActivitySink used to publish auth events.
func WithActivitySink(sink ActivitySink) Option {
	return func(c *Controller) {
		c.sink = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithTokenDecoder overrides the claims decoder.
func WithTokenDecoder(codec TokenDecoder) Option {
	return func(c *Controller) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// New returns a Controller in the unauthenticated state. Loading reports
// true until Start has reconstructed any stored session.
func New(client Client, store Store, opts ...Option) *Controller {
	c := &Controller{
		client:  client,
		store:   store,
		codec:   TokenDecoderFunc(DecodeToken),
		logger:  defLogger{},
		sink:    noopActivitySink{},
		now:     time.Now,
		state:   StateUnauthenticated,
		loading: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Start reconstructs the session from the store. Load failures and partial
// records degrade to an empty session; Start itself never fails.
func (c *Controller) Start(ctx context.Context) {
	rec, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("session store load failed: %v", err)
		rec = Record{}
	}

	restored := sessionFromRecord(rec, c.logger)

	switch {
	case restored.IsAuthenticated():
		c.describeToken(restored.AccessToken)

		c.mu.Lock()
		c.session = restored
		c.state = StateAuthenticated
		c.loading = false
		c.mu.Unlock()

		c.emit(ctx, ActivityEventSessionRestored, restored.UserName, nil)
		return
	case !rec.IsZero():
		// A token without a user (or the reverse) never counts as signed
		// in; drop the partial record instead of carrying it forward.
		c.logger.Warn("dropping partial stored session: %s", restored)
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn("session store clear failed: %v", err)
		}
	}

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

// Login exchanges credentials for a session. Any failure, including an
// unapproved account, leaves local state and storage exactly as they were.
func (c *Controller) Login(ctx context.Context, creds Credentials) (Session, error) {
	res, err := c.client.Login(ctx, creds)
	if err != nil {
		c.emit(ctx, ActivityEventLoginFailure, creds.Email, map[string]any{
			"error": err.Error(),
		})
		return Session{}, err
	}

	next := Session{
		AccessToken: res.Token,
		User:        res.Profile,
		Role:        res.Profile.Role(),
		UserName:    res.Profile.Username(),
	}

	if next.Role == "" {
		if claims := c.decodeSoft(res.Token); claims != nil {
			next.Role = claims.Role()
		}
	}
	if next.Role == "" {
		next.Role = creds.Role
	}

	if !next.IsAuthenticated() {
		c.emit(ctx, ActivityEventLoginFailure, creds.Email, map[string]any{
			"error": ErrIncompleteLogin.Message,
		})
		return Session{}, ErrIncompleteLogin
	}

	c.mu.Lock()
	if err := c.transitionLocked(StateAuthenticated); err != nil {
		c.mu.Unlock()
		return Session{}, err
	}
	c.session = next
	c.gen++
	snapshot := c.session.clone()
	rec := c.session.record()
	c.mu.Unlock()

	if err := c.store.Save(ctx, rec); err != nil {
		c.logger.Warn("session store save failed: %v", err)
	}

	c.emit(ctx, ActivityEventLoginSuccess, next.UserName, map[string]any{
		"role": next.Role,
	})

	return snapshot, nil
}

// SignUp registers an account. It never mutates session state; the caller
// still has to log in (and be approved) afterwards.
func (c *Controller) SignUp(ctx context.Context, req SignUpRequest) (Profile, error) {
	profile, err := c.client.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}

	c.emit(ctx, ActivityEventSignUpSuccess, req.Username, map[string]any{
		"role": req.Role,
	})

	return profile, nil
}

// Logout clears local state and storage first, then fires the network
// logout best effort. The caller is signed out regardless of the network
// outcome.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	userName := c.session.UserName
	c.session = Session{}
	c.state = StateUnauthenticated
	c.gen++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("session store clear failed: %v", err)
	}

	if err := c.client.Logout(ctx); err != nil {
		c.logger.Debug("logout call failed, ignoring: %v", err)
	}

	c.emit(ctx, ActivityEventLogout, userName, nil)
}

// RefreshAccessToken asks the service for a new token. On failure the
// controller forces a logout; on success the new token is published and
// persisted unless the session changed while the call was in flight.
func (c *Controller) RefreshAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	gen := c.gen
	if c.state == StateAuthenticated {
		if err := c.transitionLocked(StateRefreshing); err != nil {
			c.mu.Unlock()
			return "", err
		}
	}
	c.mu.Unlock()

	token, err := c.client.Refresh(ctx)
	if err != nil {
		c.emit(ctx, ActivityEventRefreshFailure, "", map[string]any{
			"error": err.Error(),
		})
		c.logger.Info("token refresh failed, forcing logout: %v", err)
		c.Logout(ctx)
		return "", err
	}

	c.mu.Lock()
	if c.gen != gen || c.session.User == nil {
		c.mu.Unlock()
		c.logger.Debug("discarding refresh completion for a stale session")
		return token, nil
	}
	c.session.AccessToken = token
	if err := c.transitionLocked(StateAuthenticated); err != nil {
		c.mu.Unlock()
		return "", err
	}
	userName := c.session.UserName
	rec := c.session.record()
	c.mu.Unlock()

	if err := c.store.Save(ctx, rec); err != nil {
		c.logger.Warn("session store save failed: %v", err)
	}

	c.emit(ctx, ActivityEventRefreshSuccess, userName, nil)

	return token, nil
}

// IsAuthenticated reports whether the current session holds both a token
// and a user profile.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.IsAuthenticated()
}

// Session returns an immutable snapshot of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// AccessToken returns the current bearer token, or "" when signed out.
func (c *Controller) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.AccessToken
}

// State returns the controller's lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether Start has finished reconstructing the session.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) transitionLocked(to State) error {
	if c.state == to {
		return nil
	}
	if !canTransition(c.state, to) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(c.state),
			"to":   string(to),
		})
	}
	c.state = to
	return nil
}

// decodeSoft extracts claims for display purposes. Decode failures are
// logged and degrade to nil claims, they never reach the caller.
func (c *Controller) decodeSoft(token string) *Claims {
	claims, err := c.codec.Decode(token)
	if err != nil {
		c.logger.Debug("access token did not decode: %v", err)
		return nil
	}
	return claims
}

func (c *Controller) describeToken(token string) {
	claims := c.decodeSoft(token)
	if claims == nil {
		return
	}
	if claims.IsExpired(c.now()) {
		c.logger.Info("stored token for %s expired at %s, first authorized call will refresh it",
			claims.Username(), claims.Expires().Format(time.RFC3339))
		return
	}
	c.logger.Debug("restored session for %s role=%s", claims.Username(), claims.Role())
}

func (c *Controller) emit(ctx context.Context, eventType ActivityEventType, userName string, metadata map[string]any) {
	sink := normalizeActivitySink(c.sink)
	event := ActivityEvent{
		EventType:  eventType,
		UserName:   userName,
		Metadata:   metadata,
		OccurredAt: c.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		c.logger.Warn("activity sink record error: %v", err)
	}
}

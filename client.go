package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	pathSignUp  = "api/auth/signup"
	pathLogin   = "api/auth/login"
	pathLogout  = "api/auth/logout"
	pathRefresh = "api/auth/refresh-token"
)

// HTTPClient implements Client against a fixed service origin. The refresh
// call relies on the ambient cookie credential, so the underlying
// http.Client always carries a cookie jar.
type HTTPClient struct {
	base   *url.URL
	client *http.Client
	logger Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a Client bound to cfg.GetBaseURL.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	base, err := url.Parse(cfg.GetBaseURL())
	if err != nil {
		return nil, requestError("configure", "", "invalid base URL", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, requestError("configure", "", "", err)
	}

	timeout := 30 * time.Second
	if cfg.GetHTTPTimeout() > 0 {
		timeout = time.Duration(cfg.GetHTTPTimeout()) * time.Second
	}

	return &HTTPClient{
		base: base,
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: defLogger{},
	}, nil
}

func (c *HTTPClient) WithLogger(logger Logger) *HTTPClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithHTTPClient swaps the underlying http.Client. A cookie jar is attached
// when the replacement has none, otherwise refresh loses its credential.
func (c *HTTPClient) WithHTTPClient(client *http.Client) *HTTPClient {
	if client == nil {
		return c
	}
	if client.Jar == nil {
		if jar, err := cookiejar.New(nil); err == nil {
			client.Jar = jar
		}
	}
	c.client = client
	return c
}

type signUpResponse map[string]any

type loginResponse struct {
	AccessToken string  `json:"access_token"`
	User        Profile `json:"user"`
	IsActive    any     `json:"is_active"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// errorResponse is the shape auth endpoints use for failures. Either field
// may be absent.
type errorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (c *HTTPClient) SignUp(ctx context.Context, req SignUpRequest) (Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, requestError("signup", "", "", err)
	}

	raw, err := c.post(ctx, pathSignUp, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var profile signUpResponse
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, requestError("signup", "", "malformed signup response", err)
	}

	return Profile(profile), nil
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return LoginResult{}, err
	}

	// The login endpoint expects form encoding and uses the email as the
	// username field.
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	raw, err := c.post(ctx, pathLogin, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return LoginResult{}, err
	}

	var res loginResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return LoginResult{}, requestError("login", "", "malformed login response", err)
	}

	if res.AccessToken == "" {
		return LoginResult{}, ErrMissingToken
	}

	approved := approvalFlag(res.IsActive)
	if !approved && res.User != nil {
		approved = approvalFlag(res.User["is_active"])
	}

	if !approved {
		return LoginResult{}, ErrNotApproved
	}

	return LoginResult{
		Token:    res.AccessToken,
		Profile:  res.User,
		Approved: true,
	}, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.post(ctx, pathLogout, "", nil)
	return err
}

func (c *HTTPClient) Refresh(ctx context.Context) (string, error) {
	raw, err := c.post(ctx, pathRefresh, "", nil)
	if err != nil {
		return "", err
	}

	var res refreshResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", requestError("refresh", "", "malformed refresh response", err)
	}

	if res.AccessToken == "" {
		return "", ErrMissingToken
	}

	return res.AccessToken, nil
}

func (c *HTTPClient) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	op := opFromPath(path)
	target := c.base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return nil, requestError(op, "", "", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.client.Do(req)
	if err != nil {
		return nil, requestError(op, "", "", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, requestError(op, "", "", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var failure errorResponse
		// Best effort decode, a non JSON body degrades to the fallbacks.
		_ = json.Unmarshal(raw, &failure)

		c.logger.Debug("auth call %s failed with status %d", op, res.StatusCode)
		return nil, requestError(op, failure.Detail, failure.Message, nil)
	}

	return raw, nil
}

// approvalFlag applies the service's loose activation semantics: boolean
// true and the string "true" both count, everything else does not.
func approvalFlag(v any) bool {
	switch flag := v.(type) {
	case bool:
		return flag
	case string:
		return flag == "true"
	default:
		return false
	}
}

func opFromPath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

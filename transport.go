package session

import (
	"io"
	"net/http"
)

// Transport wraps base so that outgoing requests carry the current bearer
// token and a 401 answer triggers at most one refresh-and-retry. The
// original request is never mutated; attempts go out on clones, and the
// retry marker lives on the clone's context.
func (c *Controller) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &refreshTransport{controller: c, base: base}
}

type refreshTransport struct {
	controller *Controller
	base       http.RoundTripper
}

func (t *refreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if token := t.controller.AccessToken(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusUnauthorized {
		return res, nil
	}

	if wasRetried(req.Context()) {
		return res, nil
	}

	// A consumed body that cannot be rebuilt makes the request
	// unreplayable; surface the 401 as is.
	if req.Body != nil && req.GetBody == nil {
		return res, nil
	}

	token, rerr := t.controller.RefreshAccessToken(req.Context())
	if rerr != nil {
		// The controller already forced a logout. The caller gets the
		// original request's failure unchanged.
		return res, nil
	}

	retry := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, berr := req.GetBody()
		if berr != nil {
			return res, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)

	drainAndClose(res)

	return t.base.RoundTrip(retry)
}

// drainAndClose releases the superseded response so the underlying
// connection can be reused.
func drainAndClose(res *http.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
	_ = res.Body.Close()
}

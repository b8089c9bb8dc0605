package session

import (
	"github.com/goliatone/go-errors"
)

const (
	textCodeRequestFailed     = "AUTH_REQUEST_FAILED"
	textCodeNotApproved       = "ACCOUNT_NOT_APPROVED"
	textCodeTokenMalformed    = "TOKEN_MALFORMED"
	textCodeMissingToken      = "MISSING_ACCESS_TOKEN"
	textCodeInvalidTransition = "INVALID_SESSION_TRANSITION"
)

// ErrNotApproved is returned when login succeeds at the transport level but
// the account is still awaiting activation. No local state is mutated.
var ErrNotApproved = errors.New("Not approved yet", errors.CategoryAuth).
	WithTextCode(textCodeNotApproved).
	WithCode(errors.CodeForbidden)

// ErrTokenMalformed is returned by the codec for tokens it cannot decode.
// The controller swallows it and treats the claims as absent.
var ErrTokenMalformed = errors.New("unable to decode access token", errors.CategoryValidation).
	WithTextCode(textCodeTokenMalformed).
	WithCode(errors.CodeBadRequest)

// ErrMissingToken is returned when a login or refresh response carries no
// access token.
var ErrMissingToken = errors.New("response carries no access token", errors.CategoryOperation).
	WithTextCode(textCodeMissingToken).
	WithCode(errors.CodeBadRequest)

// ErrIncompleteLogin is returned when a login response approves the account
// but carries no usable token/profile pair. Publishing one without the
// other would break the isAuthenticated invariant, so neither is kept.
var ErrIncompleteLogin = errors.New("login response missing token or profile", errors.CategoryOperation).
	WithTextCode(textCodeRequestFailed).
	WithCode(errors.CodeBadRequest)

// ErrInvalidTransition is returned when a requested session state change is
// not in the transition table.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryConflict).
	WithTextCode(textCodeInvalidTransition).
	WithCode(errors.CodeConflict)

// requestError builds the error for a failed auth call. The message is
// picked by priority: server detail, then server message, then the
// transport error, then a generic fallback.
func requestError(op, detail, message string, transportErr error) *errors.Error {
	msg := detail
	if msg == "" {
		msg = message
	}
	if msg == "" && transportErr != nil {
		msg = transportErr.Error()
	}
	if msg == "" {
		msg = "authentication request failed"
	}

	if transportErr != nil {
		return errors.Wrap(transportErr, errors.CategoryOperation, msg).
			WithTextCode(textCodeRequestFailed).
			WithMetadata(map[string]any{"operation": op})
	}

	return errors.New(msg, errors.CategoryOperation).
		WithTextCode(textCodeRequestFailed).
		WithMetadata(map[string]any{"operation": op})
}

// IsRequestError reports whether err represents a failed auth HTTP call.
func IsRequestError(err error) bool {
	return hasTextCode(err, textCodeRequestFailed) || hasTextCode(err, textCodeMissingToken)
}

// IsApprovalError reports whether err is the unapproved-account rejection.
func IsApprovalError(err error) bool {
	return hasTextCode(err, textCodeNotApproved)
}

// IsDecodeError reports whether err came from the token codec.
func IsDecodeError(err error) bool {
	return hasTextCode(err, textCodeTokenMalformed)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

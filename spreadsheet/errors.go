package spreadsheet

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrMissingKey is returned by New when the spreadsheet key is blank.
	ErrMissingKey = errors.New("spreadsheet key not provided")

	// ErrDeprecatedAuth is always returned by SetAuth. The feed service no longer accepts
	// username/password (ClientLogin) authentication.
	ErrDeprecatedAuth = errors.New("username/password authentication is no longer supported by Google - use a service account or an OAuth2 token")

	// ErrTransport wraps network level failures.
	ErrTransport = errors.New("feed request failed")

	// ErrUnauthorized is returned for a 401 response.
	ErrUnauthorized = errors.New("invalid authorization key")

	// ErrPrivateSheet is returned when the feed answers 200 with an HTML page, which is what
	// happens when a private sheet is requested anonymously.
	ErrPrivateSheet = errors.New("sheet is private, needs auth or public sharing")

	// ErrMalformedResponse is returned when a response body is not valid XML.
	ErrMalformedResponse = errors.New("malformed feed response")

	// ErrEmptyResponse is returned when data was expected but the feed response had no body.
	ErrEmptyResponse = errors.New("empty feed response")

	// ErrTokenRenewal wraps failures to obtain a bearer token from the token source.
	ErrTokenRenewal = errors.New("token renewal failed")

	// ErrNotEditable is returned when an entity has no 'edit' link, usually because it was
	// fetched with the 'values' projection.
	ErrNotEditable = errors.New("entity has no edit link (fetch with the 'full' projection)")

	// ErrDuplicateColumn is returned by AddRow when two keys reduce to the same column name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrDeleted is returned for edits on a row that has already been deleted.
	ErrDeleted = errors.New("row has been deleted")
)

// HTTPError is returned for any response with a status of 400 or more (other than 401).
type HTTPError struct {
	Code   int
	Reason string
	Body   string

	err *googleapi.Error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s %s", e.Code, e.Reason, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return e.err
}

func newHTTPError(response *http.Response) error {
	err := googleapi.CheckResponse(response)

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		gerr = &googleapi.Error{
			Code:   response.StatusCode,
			Header: response.Header,
		}
	}

	return &HTTPError{
		Code:   gerr.Code,
		Reason: http.StatusText(gerr.Code),
		Body:   gerr.Body,
		err:    gerr,
	}
}

// IsNotFound returns true if the error is a 404 response.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsForbidden returns true if the error is a 403 response.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsRateLimited returns true if the error is a 429 response.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

func hasStatus(err error, status int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == status
	}

	return false
}

package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// feedURL composes <root>/<kind>/<key>[/<worksheet>]/<visibility>/<projection>.
func (s *Spreadsheet) feedURL(segments ...string) string {
	path := append([]string{strings.TrimSuffix(s.feedRoot, "/")}, segments...)
	path = append(path, string(s.Visibility()), string(s.Projection()))

	return strings.Join(path, "/")
}

// feed issues a request against a feed addressed by path segments.
func (s *Spreadsheet) feed(ctx context.Context, method string, segments []string, query url.Values, body []byte) (*Response, error) {
	return s.request(ctx, method, s.feedURL(segments...), query, body)
}

// request issues a request against an absolute URL, typically a link relation from an
// earlier response.
func (s *Spreadsheet) request(ctx context.Context, method string, uri string, query url.Values, body []byte) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	authorization, err := s.authorization(ctx)
	if err != nil {
		return nil, err
	}

	if method == http.MethodGet && len(query) > 0 {
		if strings.Contains(uri, "?") {
			uri += "&" + query.Encode()
		} else {
			uri += "?" + query.Encode()
		}
	}

	var content io.Reader = http.NoBody
	if body != nil {
		content = bytes.NewReader(body)
	}

	rq, err := http.NewRequestWithContext(ctx, method, uri, content)
	if err != nil {
		return nil, fmt.Errorf("%w (%w)", ErrTransport, err)
	}

	if authorization != "" {
		rq.Header.Set("Authorization", authorization)
	}

	if method == http.MethodPost || method == http.MethodPut {
		rq.Header.Set("Content-Type", mediaAtom)
	}

	start := time.Now()
	response, err := s.client.Do(rq)
	if err != nil {
		s.log.WithFields(logrus.Fields{"method": method, "url": uri}).Debugf("feed request failed (%v)", err)
		return nil, fmt.Errorf("%w (%w)", ErrTransport, err)
	}

	defer response.Body.Close()

	s.log.WithFields(logrus.Fields{
		"method":  method,
		"url":     uri,
		"status":  response.StatusCode,
		"elapsed": time.Since(start),
	}).Debug("feed request")

	switch {
	case response.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized

	case response.StatusCode == http.StatusTooManyRequests:
		if s.limiter != nil {
			s.limiter.RecordRateLimitError(retryAfter(response.Header))
		}
		return nil, newHTTPError(response)

	case response.StatusCode >= 400:
		return nil, newHTTPError(response)
	}

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w (%w)", ErrTransport, err)
	}

	if response.StatusCode == http.StatusOK && strings.Contains(response.Header.Get("Content-Type"), "text/html") {
		return nil, ErrPrivateSheet
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return &Response{}, nil
	}

	return parse(b)
}

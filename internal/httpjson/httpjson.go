// Package httpjson performs the JSON GET requests shared by the vACDM and VATSIM clients.
package httpjson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// API is the JSON codec used for every response body.
var API = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidJSON is wrapped by every error caused by a malformed response body.
var ErrInvalidJSON = errors.New("invalid JSON")

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
}

// DecodeError is a malformed response body. Its message never spans more than one line.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	// jsoniter quotes up to 50 bytes of the body after this marker
	reason, _, _ := strings.Cut(e.Err.Error(), ", error found in #")
	return SingleLine(fmt.Sprintf("%s from %s: %s", ErrInvalidJSON, e.URL, reason))
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrInvalidJSON, e.Err}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// SingleLine replaces the line breaks in s with spaces
func SingleLine(s string) string {
	return lineBreaks.Replace(s)
}

// Get fetches url and returns the body once it is known to be valid JSON.
func Get(ctx context.Context, c Doer, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	// Unmarshal, unlike Valid, rejects bytes trailing the top-level value.
	var raw jsoniter.RawMessage
	if err = API.Unmarshal(body, &raw); err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}

	return body, nil
}

// GetInto fetches url and decodes the body into a T.
func GetInto[T any](ctx context.Context, c Doer, url string) (T, error) {
	var r T

	body, err := Get(ctx, c, url)
	if err != nil {
		return r, err
	}

	if err = API.Unmarshal(body, &r); err != nil {
		return r, &DecodeError{URL: url, Err: err}
	}

	return r, nil
}

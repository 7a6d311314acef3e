package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

var endpointPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s"']+`)

// FailureNote turns an analyzer error into text that is safe to store on a
// claim or show to any caller. Endpoints are never echoed back, since they
// may carry credentials.
func FailureNote(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "analyzer unavailable: timeout"
	case errors.Is(err, context.Canceled):
		return "analyzer unavailable: request cancelled"
	case errors.Is(err, ErrNoProvider):
		return "analyzer unavailable: " + ErrNoProvider.Error()
	}
	return endpointPattern.ReplaceAllString(err.Error(), "<endpoint>")
}

// transportError drops the request URL from an http.Client error.
func transportError(provider string, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return fmt.Errorf("%s request failed: %w", provider, err)
}

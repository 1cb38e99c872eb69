package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
)

// maxErrorBody caps how much of a downstream error body is read.
const maxErrorBody = 1 << 20

// DownstreamErrorResponse is the `{"error":{...}}` envelope spoken by the
// external APIs this service calls, such as the mail provider.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError turns a non-2xx downstream response into an error,
// preserving the downstream code and message when the body carries the
// structured envelope. It consumes and closes the body.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(body, &downstream) == nil && downstream.Error != nil {
		return mapDownstreamError(resp.StatusCode, downstream.Error.Code, downstream.Error.Message, serviceName)
	}

	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(body))
}

// mapDownstreamError keeps downstream error semantics intact when they cross
// the service boundary, so a 404 from the provider stays a not-found here.
func mapDownstreamError(status int, code, message, serviceName string) error {
	qualified := serviceName + ": " + message

	switch status {
	case http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case http.StatusConflict:
		return apperrors.Conflict(qualified)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case http.StatusGone:
		return apperrors.Gone(qualified)
	case http.StatusServiceUnavailable:
		return apperrors.New(code, qualified, http.StatusServiceUnavailable, apperrors.ErrServiceUnavail)
	}

	if status >= 500 {
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	}
	return apperrors.New(code, qualified, status, nil)
}

// IsClientError reports whether status is a 4xx. Client errors are never
// retried: the request itself is at fault, not the network.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

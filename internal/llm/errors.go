package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTimeout        = errors.New("completion timed out")
	ErrNetwork        = errors.New("completion service unreachable")
	ErrUnauthorized   = errors.New("completion service rejected the credentials")
	ErrQuota          = errors.New("completion service quota exhausted")
	ErrModelNotFound  = errors.New("completion model not found")
	ErrServer         = errors.New("completion service internal error")
	ErrGatewayTimeout = errors.New("completion service gateway timeout")
	ErrEmptyResponse  = errors.New("completion response has no choices")
)

// APIError is a non-2xx answer from the completion service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API error %d: %s", e.Status, e.Body)
}

// Unwrap maps the status onto the sentinel errors so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	body := strings.ToLower(e.Body)
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusPaymentRequired, e.Status == http.StatusForbidden,
		strings.Contains(body, "quota"), strings.Contains(body, "credits"), strings.Contains(body, "insufficient"):
		return ErrQuota
	case e.Status == http.StatusNotFound:
		return ErrModelNotFound
	case e.Status == http.StatusGatewayTimeout:
		return ErrGatewayTimeout
	case e.Status >= 500:
		return ErrServer
	}
	return nil
}

// Diagnostic turns a completion failure into a message for the user.
func Diagnostic(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "The completion service did not answer in time. Try a shorter text or wait a moment and retry."
	case errors.Is(err, ErrNetwork):
		return "The completion service is unreachable. Check the network connection and the service address."
	case errors.Is(err, ErrUnauthorized):
		return "The completion service rejected the API key. Check the LLM_API_KEY setting."
	case errors.Is(err, ErrQuota):
		return "The completion service account has run out of credits or quota. Check the account balance."
	case errors.Is(err, ErrModelNotFound):
		return "The configured model was not found. Check the LLM_MODEL setting."
	case errors.Is(err, ErrGatewayTimeout):
		return "The model could not finish the answer in the allotted time. Rephrase the request or try again later."
	case errors.Is(err, ErrServer):
		return "The completion service had an internal error. This is usually temporary, try again in a few minutes."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The completion service returned status %d. Check the connection and the API settings.", apiErr.Status)
	default:
		return fmt.Sprintf("The request to the completion service failed: %v", err)
	}
}

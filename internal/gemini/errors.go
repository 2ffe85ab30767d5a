package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gemcheck/internal/checker"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify wraps quota failures with checker.ErrQuotaExhausted and returns
// every other error untouched. iterator.Done passes through as-is.
func classify(err error) error {
	if err == nil || errors.Is(err, iterator.Done) {
		return err
	}
	if isQuotaExhausted(err) {
		return fmt.Errorf("%w: %w", checker.ErrQuotaExhausted, err)
	}
	return err
}

func isQuotaExhausted(err error) bool {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusTooManyRequests {
			return true
		}
		if apiErr.GRPCStatus().Code() == codes.ResourceExhausted {
			return true
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}

	if status.Code(err) == codes.ResourceExhausted {
		return true
	}

	// Errors that lost their type on the way (wrapped with %v, proxies)
	// still carry the HTTP status or reason in their text.
	if strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		return true
	}
	return llms.IsRateLimitError(googleai.MapError(err))
}

package lambda

import (
	"context"
	"errors"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
)

var (
	throttlingCodes = map[string]struct{}{
		"ThrottlingException":      {},
		"TooManyRequestsException": {},
		"Throttling":               {},
		"RequestLimitExceeded":     {},
	}
	accessDeniedCodes = map[string]struct{}{
		"AccessDeniedException": {},
		"AccessDenied":          {},
	}
)

// classify maps an SDK failure onto the domain error taxonomy. The wrapped
// SDK error stays reachable through Unwrap.
func classify(ctx context.Context, err error, operation, name string) error {
	if err == nil {
		return nil
	}

	meta := map[string]interface{}{"operation": operation, "function": name}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || (ctx != nil && ctx.Err() != nil) {
		return function.NewError(function.ErrCodeCancelled, "request cancelled", err, meta)
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return function.NewError(function.ErrCodeNotFound, "function not found", err, meta)
	}

	code := ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
		meta["aws_error_code"] = code
	}

	status := 0
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
		meta["status"] = status
		if id := respErr.ServiceRequestID(); id != "" {
			meta["request_id"] = id
		}
	}

	if code == "ResourceNotFoundException" {
		return function.NewError(function.ErrCodeNotFound, "function not found", err, meta)
	}
	if _, ok := throttlingCodes[code]; ok || status == http.StatusTooManyRequests {
		return function.NewError(function.ErrCodeRateLimited, "request throttled", err, meta)
	}
	if status >= http.StatusInternalServerError {
		return function.NewError(function.ErrCodeServerError, "service error", err, meta)
	}
	if _, ok := accessDeniedCodes[code]; ok || status == http.StatusForbidden {
		return function.NewError(function.ErrCodePermissionDenied, "permission denied", err, meta)
	}

	return function.NewError(function.ErrCodeUnclassified, "request failed", err, meta)
}

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/transport"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

var ErrTooManyRequests = &internal.AppError{
	Type:       internal.ErrorTypeValidation,
	Code:       internal.ErrCodeRateLimited,
	Message:    "Too many requests, try again later",
	StatusCode: http.StatusTooManyRequests,
}

// RateLimit limits requests per client IP using a formatted rate such as "10-M".
// An empty rate disables the limiter.
func RateLimit(rate string, lg *slog.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("rate limit %q: %w", rate, err)
	}

	base := transport.NewBaseHandler(lg)
	instance := limiter.New(memory.NewStore(), parsed)
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			base.WriteAppError(w, r, ErrTooManyRequests)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			base.WriteAppError(w, r, internal.NewInternalError("rate limiter", err))
		}),
	)
	return mw.Handler, nil
}

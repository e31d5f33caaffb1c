package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

// statusFor maps service errors onto HTTP status codes: validation and
// consistency problems are the caller's fault (400), a mirror ambiguity is a
// conflict (409), a missing row is 404, anything else is a 500.
func statusFor(err error) int {
	var (
		validation *apperrors.ErrValidation
		tradeType  *apperrors.InvalidTradeTypeError
		quantity   *apperrors.InvalidQuantityError
		cashOnly   *apperrors.CashAssetRequiredError
		noCash     *apperrors.CashAssetNotFoundError
		position   *apperrors.InsufficientPositionError
		negative   *apperrors.NegativeCostBasisError
		ambiguous  *apperrors.AmbiguousMirrorError
	)

	switch {
	case errors.As(err, &validation),
		errors.As(err, &tradeType),
		errors.As(err, &quantity),
		errors.As(err, &cashOnly),
		errors.As(err, &noCash),
		errors.As(err, &position),
		errors.As(err, &negative):
		return http.StatusBadRequest
	case errors.As(err, &ambiguous):
		return http.StatusConflict
	case strings.Contains(err.Error(), "not found"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError reports a service error with its mapped status. Only server
// faults are logged; client mistakes are just answered.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

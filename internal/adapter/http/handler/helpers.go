package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/http/dto"
	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/logger"
)

const maxRequestBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

type errorMapping struct {
	target error
	status int
	code   string
}

var domainErrors = []errorMapping{
	{domain.ErrAuctionNotFound, http.StatusNotFound, "auction_not_found"},
	{domain.ErrBidNotFound, http.StatusNotFound, "bid_not_found"},

	{domain.ErrAlreadySettled, http.StatusConflict, "already_settled"},
	{domain.ErrDuplicateBid, http.StatusConflict, "duplicate_bid"},
	{domain.ErrAuctionHasBids, http.StatusConflict, "auction_has_bids"},
	{domain.ErrAuctionNotOpen, http.StatusConflict, "auction_not_open"},
	{domain.ErrAuctionEnded, http.StatusConflict, "auction_ended"},
	{domain.ErrAuctionNotStarted, http.StatusConflict, "auction_not_started"},

	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{domain.ErrBidBelowReserve, http.StatusUnprocessableEntity, "bid_below_reserve"},

	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrInvalidDelta, http.StatusBadRequest, "invalid_delta"},
	{domain.ErrInvalidTokenType, http.StatusBadRequest, "invalid_token_type"},
	{domain.ErrInvalidAccountID, http.StatusBadRequest, "invalid_account_id"},
	{domain.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{domain.ErrInvalidAuction, http.StatusBadRequest, "invalid_auction"},

	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrExpiredToken, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// mapDomainError maps domain errors to an HTTP status and error code.
// Anything unrecognised is an internal error.
func mapDomainError(err error) (int, string) {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes err as a client error, or logs it and writes a generic
// 500 when it is not a known domain error.
func respondError(w http.ResponseWriter, r *http.Request, fallback zerolog.Logger, err error) {
	status, code := mapDomainError(err)
	if status == http.StatusInternalServerError {
		log := logger.FromContext(r.Context(), fallback)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, code, "internal server error", nil)
		return
	}
	writeError(w, status, code, err.Error(), nil)
}

// decodeAndValidate decodes a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether decoding succeeded.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", map[string]string{"body": err.Error()})
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
			return false
		}

		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describeFieldError(fe)
		}
		writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", details)
		return false
	}

	return true
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// callerID returns the authenticated account id. Routes that call it sit
// behind RequireMember.
func callerID(r *http.Request) (string, bool) {
	identity, ok := domain.IdentityFromContext(r.Context())
	if !ok || identity.AccountID == "" {
		return "", false
	}
	return identity.AccountID, true
}

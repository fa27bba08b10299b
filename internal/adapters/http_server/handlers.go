package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const maxBodyBytes = 1 << 20

type TokenParser interface {
	Parse(token string) (domain.Requester, error)
}

type Handlers struct {
	Bookings *app.BookingService
	Hotels   *app.HotelService
	Auth     *app.AuthService
	Tokens   TokenParser

	CookieTTL    time.Duration
	SecureCookie bool
}

type envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(data any) envelope { return envelope{Success: true, Data: data} }

func okList[T any](items []T) envelope {
	n := len(items)
	return envelope{Success: true, Count: &n, Data: items}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// statusFor maps every error kind to its HTTP status.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidRange, domain.KindDateConflict, domain.KindStayTooLong,
		domain.KindValidation, domain.KindDuplicateKey:
		return http.StatusBadRequest
	case domain.KindForbidden, domain.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(domain.KindOf(err))
	msg := "Something went wrong"
	var de *domain.Error
	if status == http.StatusInternalServerError || !errors.As(err, &de) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		status = http.StatusInternalServerError
	} else {
		msg = de.Message
	}
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("body", "Invalid request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "%s must be a positive number", name)
	}
	return id, nil
}

// parseDate reads a required YYYY-MM-DD or RFC 3339 value.
func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, domain.Invalid(field, "Please add a %s", field)
	}
	d, err := domain.ParseDay(v)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "Please add a valid %s", field)
	}
	return d, nil
}

func parseOptionalDate(field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	d, err := parseDate(field, *v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

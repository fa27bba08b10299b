package httpserver

import (
	"net/http"
	"time"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type bookingDTO struct {
	ID           int64               `json:"id"`
	User         int64               `json:"user"`
	Hotel        domain.HotelSummary `json:"hotel"`
	CheckInDate  string              `json:"checkInDate"`
	CheckOutDate string              `json:"checkOutDate"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toBookingDTO(v domain.BookingView) bookingDTO {
	return bookingDTO{
		ID:           v.ID,
		User:         v.UserID,
		Hotel:        v.Hotel,
		CheckInDate:  v.CheckIn.Format(domain.DayLayout),
		CheckOutDate: v.CheckOut.Format(domain.DayLayout),
		CreatedAt:    v.CreatedAt,
	}
}

type createBookingRequest struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

type updateBookingRequest struct {
	Hotel        *int64  `json:"hotel"`
	CheckInDate  *string `json:"checkInDate"`
	CheckOutDate *string `json:"checkOutDate"`
}

// bookingOutcome records the result of a booking write and reports
// whether it succeeded.
func bookingOutcome(op string, err error) bool {
	if err != nil {
		observability.ObserveBooking(op, domain.KindOf(err).String())
		return false
	}
	observability.ObserveBooking(op, "ok")
	return true
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	rq := mustRequester(r)
	hotelID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createBookingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	checkIn, err := parseDate("checkInDate", req.CheckInDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	checkOut, err := parseDate("checkOutDate", req.CheckOutDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	v, err := h.Bookings.Create(r.Context(), rq, hotelID, checkIn, checkOut)
	if !bookingOutcome("create", err) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(toBookingDTO(v)))
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Bookings.List(r.Context(), mustRequester(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]bookingDTO, len(vs))
	for i, v := range vs {
		out[i] = toBookingDTO(v)
	}
	writeJSON(w, http.StatusOK, okList(out))
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.Bookings.Get(r.Context(), mustRequester(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(toBookingDTO(v)))
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateBookingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ch := domain.BookingChange{HotelID: req.Hotel}
	if ch.CheckIn, err = parseOptionalDate("checkInDate", req.CheckInDate); err != nil {
		writeError(w, r, err)
		return
	}
	if ch.CheckOut, err = parseOptionalDate("checkOutDate", req.CheckOutDate); err != nil {
		writeError(w, r, err)
		return
	}

	v, err := h.Bookings.Update(r.Context(), mustRequester(r), id, ch)
	if !bookingOutcome("update", err) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(toBookingDTO(v)))
}

func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.Bookings.Delete(r.Context(), mustRequester(r), id)
	if !bookingOutcome("delete", err) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(struct{}{}))
}

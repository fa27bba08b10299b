package httpserver

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type hotelDTO struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	TelNo            string   `json:"telNo"`
	Email            string   `json:"email"`
	UnavailableDates []string `json:"unAvailableDates"`
}

func toHotelDTO(h domain.Hotel) hotelDTO {
	ds := make([]string, len(h.UnavailableDates))
	for i, d := range h.UnavailableDates {
		ds[i] = d.Format(domain.DayLayout)
	}
	return hotelDTO{ID: h.ID, Name: h.Name, Address: h.Address, TelNo: h.TelNo, Email: h.Email, UnavailableDates: ds}
}

func toHotelDTOs(hs []domain.Hotel) []hotelDTO {
	out := make([]hotelDTO, len(hs))
	for i, h := range hs {
		out[i] = toHotelDTO(h)
	}
	return out
}

type hotelRequest struct {
	Name             *string   `json:"name"`
	Address          *string   `json:"address"`
	TelNo            *string   `json:"telNo"`
	Email            *string   `json:"email"`
	UnavailableDates *[]string `json:"unAvailableDates"`
}

func (req hotelRequest) patch() (domain.HotelPatch, error) {
	p := domain.HotelPatch{Name: req.Name, Address: req.Address, TelNo: req.TelNo, Email: req.Email}
	if req.UnavailableDates != nil {
		ds := make([]time.Time, 0, len(*req.UnavailableDates))
		for _, s := range *req.UnavailableDates {
			d, err := parseDate("unAvailableDates", s)
			if err != nil {
				return domain.HotelPatch{}, err
			}
			ds = append(ds, d)
		}
		p.UnavailableDates = &ds
	}
	return p, nil
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Hotels.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okList(toHotelDTOs(hs)))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(ok(toHotelDTO(hotel)))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.Create(r.Context(), p.Apply(domain.Hotel{}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(toHotelDTO(hotel)))
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req hotelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(toHotelDTO(hotel)))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Hotels.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(struct{}{}))
}

func (h *Handlers) availableHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	checkIn, err := parseDate("checkInDate", q.Get("checkInDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	checkOut, err := parseDate("checkOutDate", q.Get("checkOutDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	hs, err := h.Hotels.Available(r.Context(), checkIn, checkOut)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okList(toHotelDTOs(hs)))
}

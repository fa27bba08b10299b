package domain

import (
	"regexp"
	"strings"
	"time"
)

type Hotel struct {
	ID               int64
	Name             string
	Address          string
	TelNo            string
	Email            string
	UnavailableDates []time.Time // UTC days, stored order preserved
}

// HotelSummary is the slice of a hotel embedded in booking reads.
type HotelSummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	TelNo   string `json:"telNo"`
	Email   string `json:"email"`
}

func (h Hotel) Summary() HotelSummary {
	return HotelSummary{ID: h.ID, Name: h.Name, Address: h.Address, TelNo: h.TelNo, Email: h.Email}
}

// HotelPatch carries a partial update; nil fields are left untouched.
type HotelPatch struct {
	Name             *string
	Address          *string
	TelNo            *string
	Email            *string
	UnavailableDates *[]time.Time
}

func (p HotelPatch) Apply(h Hotel) Hotel {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Address != nil {
		h.Address = *p.Address
	}
	if p.TelNo != nil {
		h.TelNo = *p.TelNo
	}
	if p.Email != nil {
		h.Email = *p.Email
	}
	if p.UnavailableDates != nil {
		h.UnavailableDates = append([]time.Time(nil), (*p.UnavailableDates)...)
	}
	return h
}

var emailRe = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// Normalize trims the name and pins every blocked date to its UTC day.
func (h Hotel) Normalize() Hotel {
	h.Name = strings.TrimSpace(h.Name)
	h.Email = strings.TrimSpace(h.Email)
	if len(h.UnavailableDates) > 0 {
		days := make([]time.Time, len(h.UnavailableDates))
		for i, d := range h.UnavailableDates {
			days[i] = NormalizeDate(d)
		}
		h.UnavailableDates = days
	}
	return h
}

func (h Hotel) Validate() error {
	switch {
	case h.Name == "":
		return Invalid("name", "Please add a name")
	case strings.TrimSpace(h.Address) == "":
		return Invalid("address", "Please add an address")
	case strings.TrimSpace(h.TelNo) == "":
		return Invalid("telNo", "Please add a telephone number")
	case h.Email == "":
		return Invalid("email", "Please add an email")
	case !ValidEmail(h.Email):
		return Invalid("email", "Please add a valid email")
	}
	return nil
}

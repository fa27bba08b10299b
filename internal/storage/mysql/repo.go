package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

// MySQL server error numbers mapped into the domain error set.
const (
	errDupEntry     = 1062
	errNoReferenced = 1452
)

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

// ---- hotels ----

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	dates, err := encodeDates(h.UnavailableDates)
	if err != nil {
		return domain.Hotel{}, err
	}
	res, err := r.db.ExecContext(ctx, insertHotelSQL, h.Name, h.Address, h.TelNo, h.Email, dates)
	if err != nil {
		return domain.Hotel{}, mapErr(err)
	}
	if h.ID, err = res.LastInsertId(); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return getHotel(ctx, r.db, id)
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Hotel, 0)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func getHotel(ctx context.Context, q querier, id int64) (domain.Hotel, error) {
	h, err := scanHotel(q.QueryRowContext(ctx, getHotelSQL, id))
	if err != nil {
		return domain.Hotel{}, mapErr(err)
	}
	return h, nil
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var (
		h     domain.Hotel
		dates []byte
	)
	if err := s.Scan(&h.ID, &h.Name, &h.Address, &h.TelNo, &h.Email, &dates); err != nil {
		return domain.Hotel{}, err
	}
	var err error
	if h.UnavailableDates, err = decodeDates(dates); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %d: %w", h.ID, err)
	}
	return h, nil
}

// ---- bookings ----

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.BookingView, error) {
	v, err := scanBookingView(r.db.QueryRowContext(ctx, bookingViewSQL+`WHERE b.id = ?`, id))
	if err != nil {
		return domain.BookingView{}, mapErr(err)
	}
	return v, nil
}

func (r *Repo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.BookingView, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		where = append(where, "b.user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.HotelID != nil {
		where = append(where, "b.hotel_id = ?")
		args = append(args, *f.HotelID)
	}
	q := bookingViewSQL
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	q += "ORDER BY b.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.BookingView, 0)
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanBookingView(s scanner) (domain.BookingView, error) {
	var v domain.BookingView
	if err := s.Scan(
		&v.ID, &v.UserID, &v.HotelID, &v.CheckIn, &v.CheckOut, &v.CreatedAt,
		&v.Hotel.Name, &v.Hotel.Address, &v.Hotel.TelNo, &v.Hotel.Email,
	); err != nil {
		return domain.BookingView{}, err
	}
	v.Hotel.ID = v.HotelID
	v.CheckIn, v.CheckOut = domain.NormalizeDate(v.CheckIn), domain.NormalizeDate(v.CheckOut)
	return v, nil
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	if err := s.Scan(&b.ID, &b.UserID, &b.HotelID, &b.CheckIn, &b.CheckOut, &b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.CheckIn, b.CheckOut = domain.NormalizeDate(b.CheckIn), domain.NormalizeDate(b.CheckOut)
	return b, nil
}

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	u.CreatedAt = r.now()
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.TelNo, u.Email, string(u.Role), u.PasswordHash, u.CreatedAt)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserSQL, id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.TelNo, &u.Email, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return domain.User{}, mapErr(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// ---- helpers ----

// encodeDates stores blocked days as a JSON array of YYYY-MM-DD, keeping
// their order.
func encodeDates(ds []time.Time) (string, error) {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = domain.NormalizeDate(d).Format(domain.DayLayout)
	}
	b, err := json.Marshal(out)
	return string(b), err
}

func decodeDates(b []byte) ([]time.Time, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := domain.ParseDay(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// mapErr translates driver failures into the domain error set. Driver
// message text stays out of the result.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *driver.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			f := duplicateField(me.Message)
			return domain.Duplicate(f, "Duplicate value for %s", f)
		case errNoReferenced:
			return domain.NotFound("No user or hotel with that id")
		}
	}
	return err
}

// duplicateField reads the column out of the unique key name, e.g.
// "Duplicate entry 'x' for key 'hotels.uq_hotels_email'".
func duplicateField(msg string) string {
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return ""
	}
	key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
	if j := strings.LastIndex(key, "_"); j >= 0 {
		return key[j+1:]
	}
	return key
}

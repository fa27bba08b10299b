package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hotel_booking/internal/domain"
)

// WithHotelLock runs fn in a transaction holding row locks on every listed
// hotel. Missing hotels are not an error here; fn sees them as NotFound.
func (r *Repo) WithHotelLock(ctx context.Context, hotelIDs []int64, fn func(ctx context.Context, tx domain.HotelTx) error) error {
	ids := domain.LockOrder(hotelIDs)

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if len(ids) > 0 {
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}
		q := lockHotelsPrefix + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + lockHotelsSuffix
		rows, err := sqlTx.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("lock hotels: %w", err)
		}
		// drain so the connection is free for fn
		for rows.Next() {
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("lock hotels: %w", err)
		}
	}

	if err := fn(ctx, &txStore{tx: sqlTx, repo: r}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

type txStore struct {
	tx   *sql.Tx
	repo *Repo
}

func (t *txStore) LoadHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return getHotel(ctx, t.tx, id)
}

func (t *txStore) LoadBooking(ctx context.Context, id int64) (domain.Booking, error) {
	b, err := scanBooking(t.tx.QueryRowContext(ctx, getBookingForUpdateSQL, id))
	if err != nil {
		return domain.Booking{}, mapErr(err)
	}
	return b, nil
}

func (t *txStore) SaveBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	checkIn, checkOut := b.CheckIn.Format(domain.DayLayout), b.CheckOut.Format(domain.DayLayout)
	if b.ID == 0 {
		b.CreatedAt = t.repo.now()
		res, err := t.tx.ExecContext(ctx, insertBookingSQL, b.UserID, b.HotelID, checkIn, checkOut, b.CreatedAt)
		if err != nil {
			return domain.Booking{}, mapErr(err)
		}
		if b.ID, err = res.LastInsertId(); err != nil {
			return domain.Booking{}, err
		}
		return b, nil
	}
	if _, err := t.tx.ExecContext(ctx, updateBookingSQL, b.HotelID, checkIn, checkOut, b.ID); err != nil {
		return domain.Booking{}, mapErr(err)
	}
	return b, nil
}

func (t *txStore) DeleteBooking(ctx context.Context, id int64) error {
	return execOne(ctx, t.tx, deleteBookingSQL, id)
}

func (t *txStore) DeleteBookingsForHotel(ctx context.Context, hotelID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, deleteBookingsForHotelSQL, hotelID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateHotel does not check affected rows: MySQL reports zero when the
// values are unchanged, and the row is already locked by the caller.
func (t *txStore) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	dates, err := encodeDates(h.UnavailableDates)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, updateHotelSQL, h.Name, h.Address, h.TelNo, h.Email, dates, h.ID)
	return mapErr(err)
}

func (t *txStore) DeleteHotel(ctx context.Context, id int64) error {
	return execOne(ctx, t.tx, deleteHotelSQL, id)
}

func execOne(ctx context.Context, q querier, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

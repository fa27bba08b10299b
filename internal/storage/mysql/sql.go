package mysql

const hotelColumns = `id, name, address, tel_no, email, unavailable_dates`

const insertHotelSQL = `
INSERT INTO hotels (name, address, tel_no, email, unavailable_dates)
VALUES (?, ?, ?, ?, ?)
`

const getHotelSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`

const listHotelsSQL = `SELECT ` + hotelColumns + ` FROM hotels ORDER BY id`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, address = ?, tel_no = ?, email = ?, unavailable_dates = ?
WHERE id = ?
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

// lockHotelsPrefix is completed with one placeholder per hotel id. Rows are
// locked in ascending id order so concurrent writers cannot deadlock.
const lockHotelsPrefix = `SELECT id FROM hotels WHERE id IN (`
const lockHotelsSuffix = `) ORDER BY id FOR UPDATE`

const bookingColumns = `id, user_id, hotel_id, check_in, check_out, created_at`

const getBookingForUpdateSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`

const insertBookingSQL = `
INSERT INTO bookings (user_id, hotel_id, check_in, check_out, created_at)
VALUES (?, ?, ?, ?, ?)
`

const updateBookingSQL = `
UPDATE bookings SET hotel_id = ?, check_in = ?, check_out = ?
WHERE id = ?
`

const deleteBookingSQL = `DELETE FROM bookings WHERE id = ?`

const deleteBookingsForHotelSQL = `DELETE FROM bookings WHERE hotel_id = ?`

// bookingViewSQL joins the hotel summary; callers append WHERE/ORDER clauses.
const bookingViewSQL = `
SELECT
  b.id, b.user_id, b.hotel_id, b.check_in, b.check_out, b.created_at,
  h.name, h.address, h.tel_no, h.email
FROM bookings b
JOIN hotels h ON h.id = b.hotel_id
`

const userColumns = `id, name, tel_no, email, role, password_hash, created_at`

const insertUserSQL = `
INSERT INTO users (name, tel_no, email, role, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const getUserSQL = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

const getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

const createLedgerSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version    VARCHAR(255) NOT NULL PRIMARY KEY,
  applied_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`

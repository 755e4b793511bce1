package repositories

import (
	"database/sql"
	"errors"
	"strconv"

	intconfig "github.com/DiosyStephen/routAfare/internal/config"
	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// BookingRepository stores confirmed bookings in MySQL.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepository) Create(booking models.Booking) (string, error) {
	res, err := r.db().Exec(`
		INSERT INTO bookings
			(chat_id, route, trip_time, service_id, service_name, passengers, fare, contact, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`,
		booking.ChatID, booking.Route, booking.Time,
		nullString(booking.ServiceID), booking.ServiceName,
		booking.Passengers, booking.Fare, booking.Contact,
	)
	if err != nil {
		return "", domain.InternalError{Msg: "insert booking", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", domain.InternalError{Msg: "booking id", Err: err}
	}
	return strconv.FormatInt(id, 10), nil
}

func (r BookingRepository) GetByID(id string) (models.Booking, error) {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}

	var (
		b         models.Booking
		rowID     int64
		serviceID sql.NullString
		createdAt sql.NullTime
	)
	err = r.db().QueryRow(`
		SELECT id, chat_id, route, trip_time, service_id, service_name, passengers, fare, contact, created_at
		FROM bookings
		WHERE id = ? LIMIT 1
	`, numID).Scan(
		&rowID, &b.ChatID, &b.Route, &b.Time, &serviceID,
		&b.ServiceName, &b.Passengers, &b.Fare, &b.Contact, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "get booking", Err: err}
	}

	b.ID = strconv.FormatInt(rowID, 10)
	if serviceID.Valid {
		b.ServiceID = serviceID.String
	}
	if createdAt.Valid {
		b.CreatedAt = createdAt.Time
	}
	return b, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ domain.BookingStore = BookingRepository{}

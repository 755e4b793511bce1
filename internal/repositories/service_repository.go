package repositories

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	intconfig "github.com/DiosyStephen/routAfare/internal/config"
	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// ServiceRepository stores provider services in MySQL.
type ServiceRepository struct {
	DB *sql.DB
}

func (r ServiceRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const serviceColumns = `id, route, service_name, driver, vehicle_class,
	adult_fare, teacher_fare, child_fare,
	total_seats, remaining_seats, status, contact, payment_methods, created_at`

func (r ServiceRepository) Create(service models.Service) (string, error) {
	if service.Status == "" {
		service.Status = models.StatusActive
	}
	if service.RemainingSeats == 0 {
		service.RemainingSeats = service.TotalSeats
	}

	adult := service.FareTable[models.BracketAdult]
	teacher := nullFare(service.FareTable, models.BracketTeacher)
	child := nullFare(service.FareTable, models.BracketChild)

	res, err := r.db().Exec(`
		INSERT INTO services
			(route, service_name, driver, vehicle_class,
			 adult_fare, teacher_fare, child_fare,
			 total_seats, remaining_seats, status, contact, payment_methods, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`,
		service.Route, service.ServiceName, service.Driver, service.VehicleClass,
		adult, teacher, child,
		service.TotalSeats, service.RemainingSeats, service.Status,
		service.Contact, strings.Join(service.PaymentMethods, ","),
	)
	if err != nil {
		return "", domain.InternalError{Msg: "insert service", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", domain.InternalError{Msg: "service id", Err: err}
	}
	return strconv.FormatInt(id, 10), nil
}

func (r ServiceRepository) ListAll() ([]models.Service, error) {
	rows, err := r.db().Query(`SELECT ` + serviceColumns + ` FROM services ORDER BY id`)
	if err != nil {
		return nil, domain.InternalError{Msg: "list services", Err: err}
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r ServiceRepository) ListByRoute(route string, activeOnly bool) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE route = ?`
	args := []any{route}
	if activeOnly {
		query += ` AND status = ?`
		args = append(args, models.StatusActive)
	}
	query += ` ORDER BY id`

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "list services by route", Err: err}
	}
	defer rows.Close()
	return scanServices(rows)
}

func (r ServiceRepository) GetByID(id string) (models.Service, error) {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return models.Service{}, domain.NotFoundError{Resource: "service"}
	}

	row := r.db().QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = ? LIMIT 1`, numID)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Service{}, domain.NotFoundError{Resource: "service"}
	}
	if err != nil {
		return models.Service{}, domain.InternalError{Msg: "get service", Err: err}
	}
	return svc, nil
}

func (r ServiceRepository) SetStatus(id, status string) error {
	if status != models.StatusActive && status != models.StatusUnavailable {
		return domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.NotFoundError{Resource: "service"}
	}

	res, err := r.db().Exec(`UPDATE services SET status = ? WHERE id = ?`, status, numID)
	if err != nil {
		return domain.InternalError{Msg: "update service status", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "update service status", Err: err}
	}
	if n == 0 {
		// RowsAffected is also 0 when the status already matches; treat a
		// present row as success.
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// DecrementSeats is a single conditional UPDATE, so two racing bookings can
// never drive remaining_seats below zero.
func (r ServiceRepository) DecrementSeats(id string, n int) error {
	if n <= 0 {
		return domain.ValidationError{Field: "passengers", Msg: "count must be positive"}
	}
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.NotFoundError{Resource: "service"}
	}

	res, err := r.db().Exec(`
		UPDATE services
		SET remaining_seats = remaining_seats - ?
		WHERE id = ? AND remaining_seats >= ?
	`, n, numID, n)
	if err != nil {
		return domain.InternalError{Msg: "decrement seats", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "decrement seats", Err: err}
	}
	if affected == 0 {
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
		return domain.InsufficientSeatsError{ServiceID: id, Requested: n}
	}
	return nil
}

// IncrementSeats returns seats to the pool, capped at total_seats.
func (r ServiceRepository) IncrementSeats(id string, n int) error {
	if n <= 0 {
		return domain.ValidationError{Field: "passengers", Msg: "count must be positive"}
	}
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.NotFoundError{Resource: "service"}
	}

	res, err := r.db().Exec(`
		UPDATE services
		SET remaining_seats = LEAST(remaining_seats + ?, total_seats)
		WHERE id = ?
	`, n, numID)
	if err != nil {
		return domain.InternalError{Msg: "increment seats", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "increment seats", Err: err}
	}
	if affected == 0 {
		// Also 0 when the service is already at capacity; a present row is
		// success.
		if _, getErr := r.GetByID(id); getErr != nil {
			return getErr
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (models.Service, error) {
	var (
		svc            models.Service
		id             int64
		teacher, child sql.NullFloat64
		adult          float64
		payments       string
		createdAt      sql.NullTime
	)
	err := row.Scan(
		&id, &svc.Route, &svc.ServiceName, &svc.Driver, &svc.VehicleClass,
		&adult, &teacher, &child,
		&svc.TotalSeats, &svc.RemainingSeats, &svc.Status, &svc.Contact,
		&payments, &createdAt,
	)
	if err != nil {
		return models.Service{}, err
	}
	svc.ID = strconv.FormatInt(id, 10)
	svc.FareTable = map[string]float64{models.BracketAdult: adult}
	if teacher.Valid {
		svc.FareTable[models.BracketTeacher] = teacher.Float64
	}
	if child.Valid {
		svc.FareTable[models.BracketChild] = child.Float64
	}
	if payments != "" {
		svc.PaymentMethods = strings.Split(payments, ",")
	}
	if createdAt.Valid {
		svc.CreatedAt = createdAt.Time
	}
	return svc, nil
}

func scanServices(rows *sql.Rows) ([]models.Service, error) {
	var out []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan service", Err: err}
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "scan services", Err: err}
	}
	return out, nil
}

func nullFare(table map[string]float64, bracket string) sql.NullFloat64 {
	if v, ok := table[bracket]; ok {
		return sql.NullFloat64{Float64: v, Valid: true}
	}
	return sql.NullFloat64{}
}

var _ domain.ServiceStore = ServiceRepository{}

package domain

import "github.com/DiosyStephen/routAfare/internal/domain/models"

// SessionStore persists per-chat conversation state. Keys partition by chat
// id, so last-write-wins per key is enough.
type SessionStore interface {
	Get(chatID string) (models.Session, bool, error)
	Put(session models.Session) error
	Delete(chatID string) error
}

// ServiceStore is the provider-owned catalog of bookable services.
// DecrementSeats must be atomic per service id: it either applies fully or
// returns InsufficientSeatsError with no effect, and remaining seats never
// leave [0, total].
type ServiceStore interface {
	Create(service models.Service) (string, error)
	ListAll() ([]models.Service, error)
	ListByRoute(route string, activeOnly bool) ([]models.Service, error)
	GetByID(id string) (models.Service, error)
	SetStatus(id, status string) error
	DecrementSeats(id string, n int) error
	// IncrementSeats returns seats to the pool, capped at total_seats. Used
	// to compensate a decrement whose booking never completed.
	IncrementSeats(id string, n int) error
}

// BookingStore keeps confirmed booking records.
type BookingStore interface {
	Create(booking models.Booking) (string, error)
	GetByID(id string) (models.Booking, error)
}

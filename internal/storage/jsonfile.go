// Package storage provides the file-backed store implementations used when
// no MySQL DSN is configured. Each store serializes its whole dataset to one
// JSON file under a mutex, so check-then-write sequences are atomic per
// store.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func writeJSON(path string, src any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

// SessionFile is a durable SessionStore over a single sessions.json.
type SessionFile struct {
	path string

	mu   sync.Mutex
	data map[string]models.Session
}

func OpenSessionFile(path string) (*SessionFile, error) {
	s := &SessionFile{path: path, data: make(map[string]models.Session)}
	if err := readJSON(path, &s.data); err != nil {
		return nil, domain.InternalError{Msg: "read session store", Err: err}
	}
	if s.data == nil {
		s.data = make(map[string]models.Session)
	}
	return s, nil
}

func (s *SessionFile) Get(chatID string) (models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[chatID]
	return sess, ok, nil
}

func (s *SessionFile) Put(session models.Session) error {
	if session.ChatID == "" {
		return domain.ValidationError{Field: "chat_id", Msg: "must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[session.ChatID]
	s.data[session.ChatID] = session
	if err := s.flush(); err != nil {
		if had {
			s.data[session.ChatID] = prev
		} else {
			delete(s.data, session.ChatID)
		}
		return err
	}
	return nil
}

func (s *SessionFile) Delete(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data[chatID]
	if !ok {
		return nil
	}
	delete(s.data, chatID)
	if err := s.flush(); err != nil {
		s.data[chatID] = prev
		return err
	}
	return nil
}

func (s *SessionFile) flush() error {
	if err := writeJSON(s.path, s.data); err != nil {
		return domain.InternalError{Msg: "write session store", Err: err}
	}
	return nil
}

// serviceFileDoc mirrors the legacy services.json layout.
type serviceFileDoc struct {
	Services []models.Service `json:"services"`
}

// ServiceFile is a ServiceStore over a single services.json.
type ServiceFile struct {
	path string

	mu  sync.Mutex
	doc serviceFileDoc
}

func OpenServiceFile(path string) (*ServiceFile, error) {
	s := &ServiceFile{path: path}
	if err := readJSON(path, &s.doc); err != nil {
		return nil, domain.InternalError{Msg: "read service store", Err: err}
	}
	return s, nil
}

func (s *ServiceFile) Create(service models.Service) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if service.ID == "" {
		service.ID = newID()
	}
	if service.Status == "" {
		service.Status = models.StatusActive
	}
	if service.RemainingSeats == 0 {
		service.RemainingSeats = service.TotalSeats
	}
	if service.CreatedAt.IsZero() {
		service.CreatedAt = time.Now()
	}
	s.doc.Services = append(s.doc.Services, service)
	if err := s.flush(); err != nil {
		s.doc.Services = s.doc.Services[:len(s.doc.Services)-1]
		return "", err
	}
	return service.ID, nil
}

func (s *ServiceFile) ListAll() ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Service, len(s.doc.Services))
	copy(out, s.doc.Services)
	return out, nil
}

func (s *ServiceFile) ListByRoute(route string, activeOnly bool) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Service
	for _, svc := range s.doc.Services {
		if svc.Route != route {
			continue
		}
		if activeOnly && svc.Status != models.StatusActive {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

func (s *ServiceFile) GetByID(id string) (models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, svc := range s.doc.Services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return models.Service{}, domain.NotFoundError{Resource: "service"}
}

func (s *ServiceFile) SetStatus(id, status string) error {
	if status != models.StatusActive && status != models.StatusUnavailable {
		return domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", status)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Services {
		if s.doc.Services[i].ID == id {
			prev := s.doc.Services[i].Status
			s.doc.Services[i].Status = status
			if err := s.flush(); err != nil {
				s.doc.Services[i].Status = prev
				return err
			}
			return nil
		}
	}
	return domain.NotFoundError{Resource: "service"}
}

// DecrementSeats applies the seat deduction or fails without effect. The
// store mutex makes the check and the write one operation.
func (s *ServiceFile) DecrementSeats(id string, n int) error {
	if n <= 0 {
		return domain.ValidationError{Field: "passengers", Msg: "count must be positive"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Services {
		if s.doc.Services[i].ID != id {
			continue
		}
		if s.doc.Services[i].RemainingSeats < n {
			return domain.InsufficientSeatsError{ServiceID: id, Requested: n}
		}
		s.doc.Services[i].RemainingSeats -= n
		if err := s.flush(); err != nil {
			s.doc.Services[i].RemainingSeats += n
			return err
		}
		return nil
	}
	return domain.NotFoundError{Resource: "service"}
}

// IncrementSeats returns seats to the pool, capped at total_seats.
func (s *ServiceFile) IncrementSeats(id string, n int) error {
	if n <= 0 {
		return domain.ValidationError{Field: "passengers", Msg: "count must be positive"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Services {
		if s.doc.Services[i].ID != id {
			continue
		}
		prev := s.doc.Services[i].RemainingSeats
		next := prev + n
		if next > s.doc.Services[i].TotalSeats {
			next = s.doc.Services[i].TotalSeats
		}
		s.doc.Services[i].RemainingSeats = next
		if err := s.flush(); err != nil {
			s.doc.Services[i].RemainingSeats = prev
			return err
		}
		return nil
	}
	return domain.NotFoundError{Resource: "service"}
}

func (s *ServiceFile) flush() error {
	if err := writeJSON(s.path, s.doc); err != nil {
		return domain.InternalError{Msg: "write service store", Err: err}
	}
	return nil
}

// BookingFile is a BookingStore over a single bookings.json.
type BookingFile struct {
	path string

	mu   sync.Mutex
	data []models.Booking
}

func OpenBookingFile(path string) (*BookingFile, error) {
	b := &BookingFile{path: path}
	if err := readJSON(path, &b.data); err != nil {
		return nil, domain.InternalError{Msg: "read booking store", Err: err}
	}
	return b, nil
}

func (b *BookingFile) Create(booking models.Booking) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if booking.ID == "" {
		booking.ID = newID()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	b.data = append(b.data, booking)
	if err := writeJSON(b.path, b.data); err != nil {
		b.data = b.data[:len(b.data)-1]
		return "", domain.InternalError{Msg: "write booking store", Err: err}
	}
	return booking.ID, nil
}

func (b *BookingFile) GetByID(id string) (models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bk := range b.data {
		if bk.ID == id {
			return bk, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

var (
	_ domain.SessionStore = (*SessionFile)(nil)
	_ domain.ServiceStore = (*ServiceFile)(nil)
	_ domain.BookingStore = (*BookingFile)(nil)
)

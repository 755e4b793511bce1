package services

import (
	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// BookingService turns a selected offer into a confirmed booking, enforcing
// the seat invariant for provider-backed offers.
type BookingService struct {
	Services domain.ServiceStore
	Bookings domain.BookingStore
}

// ConfirmResult carries what the confirmation summary needs.
type ConfirmResult struct {
	Booking        models.Booking
	Service        models.Service
	ServiceBacked  bool
	SeatsRemaining int
}

// Confirm books the offer for the session's passenger count. Provider-backed
// offers first pass the atomic seat decrement; InsufficientSeatsError comes
// back untouched so the caller can keep the user in offer selection.
func (s BookingService) Confirm(chatID string, answers models.Answers, offer models.Offer) (ConfirmResult, error) {
	count := answers.Count
	if count < 1 {
		count = 1
	}

	res := ConfirmResult{}
	if offer.Kind == models.OfferProvider {
		if err := s.Services.DecrementSeats(offer.ServiceID, count); err != nil {
			return ConfirmResult{}, err
		}
		svc, err := s.Services.GetByID(offer.ServiceID)
		if err != nil {
			return ConfirmResult{}, err
		}
		res.Service = svc
		res.ServiceBacked = true
		res.SeatsRemaining = svc.RemainingSeats
	}

	booking := models.Booking{
		ChatID:      chatID,
		Route:       answers.Route,
		Time:        answers.Time,
		ServiceID:   offer.ServiceID,
		ServiceName: offer.Name,
		Passengers:  count,
		Fare:        offer.Fare,
		Contact:     offer.Contact,
	}
	id, err := s.Bookings.Create(booking)
	if err != nil {
		if res.ServiceBacked {
			// The booking never happened; give the seats back.
			if rbErr := s.Services.IncrementSeats(offer.ServiceID, count); rbErr != nil {
				return ConfirmResult{}, domain.InternalError{Msg: "insert booking (seat restore also failed)", Err: err}
			}
		}
		return ConfirmResult{}, err
	}
	booking.ID = id
	res.Booking = booking
	return res, nil
}

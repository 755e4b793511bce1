package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
	"github.com/DiosyStephen/routAfare/internal/fare"
	"github.com/DiosyStephen/routAfare/internal/schedule"
	"github.com/DiosyStephen/routAfare/internal/utils"
)

const (
	maxAge = 120

	// "7+" is normalized to this for all fare and seat math.
	openEndedCount = 7
)

func (e *Engine) passengerRoute(sess models.Session, route string) (models.OutboundResponse, error) {
	if sess.Step != models.StepSelectRoute || route == "" {
		return e.unexpected(sess), nil
	}

	sess.Answers.Route = route
	sess.Step = models.StepSelectCount
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   fmt.Sprintf("Selected: %s\n\nHow many passengers?", route),
		Menu:   passengerCountMenu(),
	}, nil
}

func (e *Engine) passengerCount(sess models.Session, label string) (models.OutboundResponse, error) {
	if sess.Step != models.StepSelectCount {
		return e.unexpected(sess), nil
	}

	count := 0
	switch label {
	case "7+":
		count = openEndedCount
	default:
		n, err := strconv.Atoi(label)
		if err != nil || n < 1 || n > 6 {
			return e.unexpected(sess), nil
		}
		count = n
	}

	sess.Answers.Count = count
	sess.Answers.CountLabel = label
	sess.Answers.Ages = nil
	sess.Answers.AgeIndex = 0
	sess.Step = models.StepEnterAge
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   agePrompt(1, count),
	}, nil
}

func agePrompt(index, total int) string {
	return fmt.Sprintf("Enter the age of passenger %d of %d (0-%d):", index, total, maxAge)
}

// passengerAge runs one iteration of the age loop. An invalid age re-prompts
// the same passenger index; the loop never advances on bad input.
func (e *Engine) passengerAge(sess models.Session, text string) (models.OutboundResponse, error) {
	age, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || age < 0 || age > maxAge {
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text: fmt.Sprintf("Invalid age. %s",
				agePrompt(sess.Answers.AgeIndex+1, sess.Answers.Count)),
		}, nil
	}

	sess.Answers.Ages = append(sess.Answers.Ages, age)
	sess.Answers.AgeIndex++

	if sess.Answers.AgeIndex < sess.Answers.Count {
		if err := e.Sessions.Put(sess); err != nil {
			return models.OutboundResponse{}, err
		}
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   agePrompt(sess.Answers.AgeIndex+1, sess.Answers.Count),
		}, nil
	}

	sess.Step = models.StepEnterTime
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Enter your departure time in HH:MM (example: 13:45):",
	}, nil
}

func (e *Engine) passengerTime(ctx context.Context, sess models.Session, text string) (models.OutboundResponse, error) {
	t, ok := schedule.NormalizeTime(strings.TrimSpace(text))
	if !ok {
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   "Invalid time format. Use HH:MM (e.g. 13:45).",
		}, nil
	}

	sess.Answers.Time = t
	return e.search(ctx, sess)
}

// search merges timetable and provider matches into one offer list. An empty
// result is a terminal outcome: the session is cleared, not re-prompted.
func (e *Engine) search(ctx context.Context, sess models.Session) (models.OutboundResponse, error) {
	ans := sess.Answers

	estimated := e.Fares.Estimate(ctx, fare.TripContext{
		DistanceKM:   ans.DistanceKM,
		TrafficLevel: 1,
		Passengers:   ans.Count,
		Ages:         ans.Ages,
	})

	var offers []models.Offer
	for _, entry := range e.Schedule.EntriesForRoute(ans.Route) {
		if !containsTime(entry.DepartureTimes, ans.Time) {
			continue
		}
		offers = append(offers, models.Offer{
			ID:      "CSV-" + entry.ID,
			Kind:    models.OfferSchedule,
			Name:    fmt.Sprintf("Public Bus (%d)", entry.BusType),
			Details: scheduleDetails(entry.DepartureTimes, estimated),
			Fare:    estimated,
		})
	}

	matched, err := e.Services.ListByRoute(ans.Route, true)
	if err != nil {
		return models.OutboundResponse{}, err
	}
	for _, svc := range matched {
		tableFare := fare.TableFare(svc.FareTable, ans.Ages)
		offers = append(offers, models.Offer{
			ID:        "SVC-" + svc.ID,
			Kind:      models.OfferProvider,
			ServiceID: svc.ID,
			Name:      fmt.Sprintf("%s | Driver: %s", svc.ServiceName, svc.Driver),
			Details:   serviceDetails(svc, tableFare),
			Fare:      tableFare,
			Contact:   svc.Contact,
		})
	}

	if len(offers) == 0 {
		if err := e.Sessions.Delete(sess.ChatID); err != nil {
			return models.OutboundResponse{}, err
		}
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   "No buses found for that route/time.",
		}, nil
	}

	sess.Offers = offers
	sess.Step = models.StepSelectBus
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}

	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text: fmt.Sprintf(
			"Your Search Summary\nRoute: %s\nTime: %s\nPassengers: %s\nEstimated fare: %s\n\nSelect a bus to confirm booking:",
			ans.Route, ans.Time, ans.CountLabel, utils.FormatRupees(estimated)),
		Menu: offerMenu(offers),
	}, nil
}

func (e *Engine) passengerConfirm(sess models.Session, offerID string) (models.OutboundResponse, error) {
	if sess.Step != models.StepSelectBus {
		return e.unexpected(sess), nil
	}

	offer, ok := sess.FindOffer(offerID)
	if !ok {
		if err := e.Sessions.Delete(sess.ChatID); err != nil {
			return models.OutboundResponse{}, err
		}
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   "Bus details not found. Starting over.",
			Menu:   mainMenu(),
		}, nil
	}

	res, err := e.Booking.Confirm(sess.ChatID, sess.Answers, offer)
	if domain.IsInsufficientSeats(err) {
		// Non-fatal: the user stays in offer selection and may pick another bus.
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text: fmt.Sprintf("Not enough seats left on %s for %d passenger(s). Please pick another bus.",
				offer.Name, sess.Answers.Count),
			Menu:  offerMenu(sess.Offers),
			Alert: true,
		}, nil
	}
	if err != nil {
		return models.OutboundResponse{}, err
	}

	if err := e.Sessions.Delete(sess.ChatID); err != nil {
		return models.OutboundResponse{}, err
	}

	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   confirmationText(offer, res.Booking.ID, res.ServiceBacked, res.SeatsRemaining),
		Menu:   newSearchMenu(),
	}, nil
}

func confirmationText(offer models.Offer, bookingID string, serviceBacked bool, seatsRemaining int) string {
	var b strings.Builder
	b.WriteString("BOOKING CONFIRMED!\n\n")
	fmt.Fprintf(&b, "Service: %s\n", offer.Name)
	fmt.Fprintf(&b, "Fare: %s\n", utils.FormatRupees(offer.Fare))
	if serviceBacked {
		fmt.Fprintf(&b, "Contact: %s\n", orDash(offer.Contact))
		fmt.Fprintf(&b, "Seats remaining: %d\n", seatsRemaining)
	} else {
		b.WriteString("Fare is estimated; confirm with the operator.\n")
	}
	fmt.Fprintf(&b, "Booking ref: %s\n\n", bookingID)
	b.WriteString("Thank you for using RoutAfare. Please be ready to board at the departure time.")
	return b.String()
}

func scheduleDetails(times []string, estimated float64) string {
	preview := times
	if len(preview) > 2 {
		preview = preview[:2]
	}
	return fmt.Sprintf("Scheduled (%s...) | Estimated fare: %s",
		strings.Join(preview, ", "), utils.FormatRupees(estimated))
}

func serviceDetails(svc models.Service, tableFare float64) string {
	payments := strings.Join(svc.PaymentMethods, ", ")
	if payments == "" {
		payments = "-"
	}
	return fmt.Sprintf("Fare: %s | Contact: %s | Payment: %s | Seats left: %d",
		utils.FormatRupees(tableFare), orDash(svc.Contact), payments, svc.RemainingSeats)
}

func containsTime(times []string, t string) bool {
	for _, dt := range times {
		if dt == t {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package conversation

import (
	"crypto/subtle"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

var contactRe = regexp.MustCompile(`^\+?[\d\s-]{5,}$`)

// skipWord lets optional provider fields be skipped explicitly.
const skipWord = "skip"

func (e *Engine) providerAuth(sess models.Session, text string) (models.OutboundResponse, error) {
	if subtle.ConstantTimeCompare([]byte(text), []byte(e.ProviderPassword)) != 1 {
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   "Wrong password. Try again or send /start.",
		}, nil
	}

	sess.Step = models.StepProviderMenu
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Access granted.\nManage your fleet:",
		Menu:   providerMenu(),
	}, nil
}

func (e *Engine) providerAdd(sess models.Session) (models.OutboundResponse, error) {
	if sess.Role != models.RoleProvider || sess.Step != models.StepProviderMenu {
		return e.unexpected(sess), nil
	}

	sess.Draft = &models.ServiceDraft{}
	sess.Step = models.StepEnterRoute
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Add Service\n\nEnter the route name (e.g. Kandy-Colombo):",
	}, nil
}

// providerField advances the sequential field collection. Every validation
// failure re-prompts the same field.
func (e *Engine) providerField(sess models.Session, text string) (models.OutboundResponse, error) {
	if sess.Draft == nil {
		return e.unexpected(sess), nil
	}
	draft := sess.Draft

	var prompt string
	switch sess.Step {
	case models.StepEnterRoute:
		draft.Route = text
		sess.Step = models.StepEnterServiceName
		prompt = "Enter the bus service/company name (e.g. ABC Express):"

	case models.StepEnterServiceName:
		draft.ServiceName = text
		sess.Step = models.StepEnterDriver
		prompt = "Enter the driver name:"

	case models.StepEnterDriver:
		draft.Driver = text
		sess.Step = models.StepEnterVehicle
		prompt = `Enter the vehicle class (e.g. AC Luxury), or type "skip":`

	case models.StepEnterVehicle:
		if !strings.EqualFold(text, skipWord) {
			draft.VehicleClass = text
		}
		sess.Step = models.StepEnterSeats
		prompt = "Enter the total seat count:"

	case models.StepEnterSeats:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n <= 0 {
			return e.retry(sess, "Invalid seat count. Enter a whole number greater than 0."), nil
		}
		draft.TotalSeats = n
		sess.Step = models.StepEnterAdultFare
		prompt = "Enter the adult fare price (e.g. 150.00):"

	case models.StepEnterAdultFare:
		price, ok := parseFare(text)
		if !ok {
			return e.retry(sess, "Invalid price format. Enter a non-negative number (e.g. 150.00)."), nil
		}
		draft.AdultFare = price
		sess.Step = models.StepEnterTeacherFare
		prompt = `Enter the teacher/student fare, or type "skip" to use the adult fare:`

	case models.StepEnterTeacherFare:
		if !strings.EqualFold(text, skipWord) {
			price, ok := parseFare(text)
			if !ok {
				return e.retry(sess, `Invalid price format. Enter a non-negative number or "skip".`), nil
			}
			draft.TeacherFare = price
			draft.HasTeacherFare = true
		}
		sess.Step = models.StepEnterChildFare
		prompt = `Enter the child fare, or type "skip" to use the adult fare:`

	case models.StepEnterChildFare:
		if !strings.EqualFold(text, skipWord) {
			price, ok := parseFare(text)
			if !ok {
				return e.retry(sess, `Invalid price format. Enter a non-negative number or "skip".`), nil
			}
			draft.ChildFare = price
			draft.HasChildFare = true
		}
		sess.Step = models.StepEnterContact
		prompt = "Enter the contact number:"

	case models.StepEnterContact:
		if !contactRe.MatchString(text) {
			return e.retry(sess, "Invalid contact format. Enter a valid phone number."), nil
		}
		draft.Contact = text
		draft.PaymentMethods = []string{}
		sess.Step = models.StepSelectPayment
		if err := e.Sessions.Put(sess); err != nil {
			return models.OutboundResponse{}, err
		}
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   "Payment options\nToggle allowed methods:",
			Menu:   paymentMenu(nil),
		}, nil

	default:
		return e.unexpected(sess), nil
	}

	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{ChatID: sess.ChatID, Text: prompt}, nil
}

func (e *Engine) retry(sess models.Session, text string) models.OutboundResponse {
	return models.OutboundResponse{ChatID: sess.ChatID, Text: text}
}

func (e *Engine) providerPaymentToggle(sess models.Session, method string) (models.OutboundResponse, error) {
	if sess.Step != models.StepSelectPayment || sess.Draft == nil {
		return e.unexpected(sess), nil
	}
	if method != "weekly" && method != "monthly" {
		return e.unexpected(sess), nil
	}

	current := sess.Draft.PaymentMethods
	found := false
	for i, m := range current {
		if m == method {
			current = append(current[:i], current[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		current = append(current, method)
	}
	sess.Draft.PaymentMethods = current

	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Payment options\nToggle allowed methods:",
		Menu:   paymentMenu(current),
	}, nil
}

func (e *Engine) providerSave(sess models.Session) (models.OutboundResponse, error) {
	if sess.Step != models.StepSelectPayment || sess.Draft == nil {
		return e.unexpected(sess), nil
	}
	draft := sess.Draft

	table := map[string]float64{models.BracketAdult: draft.AdultFare}
	if draft.HasTeacherFare {
		table[models.BracketTeacher] = draft.TeacherFare
	}
	if draft.HasChildFare {
		table[models.BracketChild] = draft.ChildFare
	}

	id, err := e.Services.Create(models.Service{
		Route:          draft.Route,
		ServiceName:    draft.ServiceName,
		Driver:         draft.Driver,
		VehicleClass:   draft.VehicleClass,
		FareTable:      table,
		TotalSeats:     draft.TotalSeats,
		RemainingSeats: draft.TotalSeats,
		Status:         models.StatusActive,
		Contact:        draft.Contact,
		PaymentMethods: draft.PaymentMethods,
	})
	if err != nil {
		return models.OutboundResponse{}, err
	}

	// Back to the provider menu; the draft is done.
	sess.Draft = nil
	sess.Offers = nil
	sess.Step = models.StepProviderMenu
	if err := e.Sessions.Put(sess); err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   fmt.Sprintf("Service saved successfully! (id %s)", id),
		Menu:   providerMenu(),
	}, nil
}

func (e *Engine) providerStatusList(sess models.Session) (models.OutboundResponse, error) {
	if sess.Role != models.RoleProvider || sess.Step != models.StepProviderMenu {
		return e.unexpected(sess), nil
	}

	svcs, err := e.Services.ListAll()
	if err != nil {
		return models.OutboundResponse{}, err
	}
	if len(svcs) == 0 {
		return models.OutboundResponse{
			ChatID: sess.ChatID,
			Text:   "No services added yet.",
			Alert:  true,
		}, nil
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Tap to toggle availability (holiday/weather):",
		Menu:   statusMenu(svcs),
	}, nil
}

// providerStatusToggle flips one service and re-renders the list by
// rebuilding it from current data. It never re-enters the dispatcher.
func (e *Engine) providerStatusToggle(sess models.Session, id string) (models.OutboundResponse, error) {
	if sess.Role != models.RoleProvider || sess.Step != models.StepProviderMenu {
		return e.unexpected(sess), nil
	}

	svc, err := e.Services.GetByID(id)
	if err != nil {
		return models.OutboundResponse{}, err
	}
	next := models.StatusUnavailable
	if svc.Status != models.StatusActive {
		next = models.StatusActive
	}
	if err := e.Services.SetStatus(id, next); err != nil {
		return models.OutboundResponse{}, err
	}

	svcs, err := e.Services.ListAll()
	if err != nil {
		return models.OutboundResponse{}, err
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Tap to toggle availability (holiday/weather):",
		Menu:   statusMenu(svcs),
	}, nil
}

func (e *Engine) providerMenuReturn(sess models.Session) (models.OutboundResponse, error) {
	if sess.Role != models.RoleProvider || sess.Step != models.StepProviderMenu {
		return e.unexpected(sess), nil
	}
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Manage your fleet:",
		Menu:   providerMenu(),
	}, nil
}

func parseFare(text string) (float64, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

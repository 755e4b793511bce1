// Package conversation implements the chat-driven booking flow: a per-chat
// state machine that validates each input against the step it is waiting on
// and drives the passenger and provider paths.
package conversation

import (
	"context"
	"sort"
	"strings"

	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
	"github.com/DiosyStephen/routAfare/internal/fare"
	"github.com/DiosyStephen/routAfare/internal/schedule"
	"github.com/DiosyStephen/routAfare/internal/services"
)

// Engine owns all session state. Stores are injected; nothing here is
// package-level mutable.
type Engine struct {
	Sessions domain.SessionStore
	Services domain.ServiceStore
	Schedule *schedule.Index
	Fares    *fare.Estimator
	Booking  services.BookingService

	ProviderPassword  string
	DefaultDistanceKM float64
}

// Handle processes one inbound chat event and returns the reply. Errors are
// persistence failures only; every validation problem is answered in-band by
// re-prompting the current step.
func (e *Engine) Handle(ctx context.Context, ev models.InboundEvent) (models.OutboundResponse, error) {
	if ev.ChatID == "" {
		return models.OutboundResponse{}, domain.ValidationError{Field: "chat_id", Msg: "must not be empty"}
	}
	payload := strings.TrimSpace(ev.Payload)

	// Explicit cancel clears the session immediately, whatever the step.
	if isCancel(ev.Kind, payload) {
		if err := e.Sessions.Delete(ev.ChatID); err != nil {
			return models.OutboundResponse{}, err
		}
		return e.welcome(ev.ChatID), nil
	}

	sess, ok, err := e.Sessions.Get(ev.ChatID)
	if err != nil {
		return models.OutboundResponse{}, err
	}
	if !ok {
		// No active flow: role buttons start one, anything else just
		// re-offers role selection.
		if ev.Kind == models.EventMenu && (payload == cbRolePassenger || payload == cbRoleProvider) {
			return e.startRole(ctx, ev.ChatID, payload)
		}
		return e.welcome(ev.ChatID), nil
	}

	if ev.Kind == models.EventMenu {
		return e.handleMenu(ctx, sess, payload)
	}
	return e.handleText(ctx, sess, payload)
}

func isCancel(kind models.EventKind, payload string) bool {
	if kind == models.EventMenu {
		return payload == cbMainMenu
	}
	return payload == "/start" || payload == "/cancel" || strings.EqualFold(payload, "cancel")
}

func (e *Engine) welcome(chatID string) models.OutboundResponse {
	return models.OutboundResponse{
		ChatID: chatID,
		Text:   "Welcome to RoutAfare!\n\nPlease select your role:",
		Menu:   mainMenu(),
	}
}

func (e *Engine) startRole(ctx context.Context, chatID, payload string) (models.OutboundResponse, error) {
	switch payload {
	case cbRolePassenger:
		routes, err := e.AllRoutes()
		if err != nil {
			return models.OutboundResponse{}, err
		}
		if len(routes) == 0 {
			return models.OutboundResponse{
				ChatID: chatID,
				Text:   "No routes available. Contact the admin.",
				Alert:  true,
			}, nil
		}
		sess := models.Session{
			ChatID:  chatID,
			Role:    models.RolePassenger,
			Step:    models.StepSelectRoute,
			Answers: models.Answers{DistanceKM: e.DefaultDistanceKM},
		}
		if err := e.Sessions.Put(sess); err != nil {
			return models.OutboundResponse{}, err
		}
		return models.OutboundResponse{
			ChatID: chatID,
			Text:   "Select your route:",
			Menu:   routeMenu(routes),
		}, nil

	case cbRoleProvider:
		sess := models.Session{
			ChatID: chatID,
			Role:   models.RoleProvider,
			Step:   models.StepProviderAuth,
		}
		if err := e.Sessions.Put(sess); err != nil {
			return models.OutboundResponse{}, err
		}
		return models.OutboundResponse{
			ChatID: chatID,
			Text:   "Enter provider password:",
		}, nil
	}
	return e.welcome(chatID), nil
}

func (e *Engine) handleMenu(ctx context.Context, sess models.Session, payload string) (models.OutboundResponse, error) {
	switch {
	case payload == cbRolePassenger || payload == cbRoleProvider:
		// Restarting a role mid-flow replaces the session.
		return e.startRole(ctx, sess.ChatID, payload)

	case strings.HasPrefix(payload, cbRoutePrefix):
		return e.passengerRoute(sess, strings.TrimPrefix(payload, cbRoutePrefix))

	case strings.HasPrefix(payload, cbCountPrefix):
		return e.passengerCount(sess, strings.TrimPrefix(payload, cbCountPrefix))

	case strings.HasPrefix(payload, cbConfirmPrefix):
		return e.passengerConfirm(sess, strings.TrimPrefix(payload, cbConfirmPrefix))

	case payload == cbProviderAdd:
		return e.providerAdd(sess)

	case payload == cbProviderStatus:
		return e.providerStatusList(sess)

	case strings.HasPrefix(payload, cbStatusPrefix):
		return e.providerStatusToggle(sess, strings.TrimPrefix(payload, cbStatusPrefix))

	case payload == cbProviderReturn:
		return e.providerMenuReturn(sess)

	case strings.HasPrefix(payload, cbPayPrefix):
		return e.providerPaymentToggle(sess, strings.TrimPrefix(payload, cbPayPrefix))

	case payload == cbSaveService:
		return e.providerSave(sess)
	}
	return e.unexpected(sess), nil
}

func (e *Engine) handleText(ctx context.Context, sess models.Session, text string) (models.OutboundResponse, error) {
	switch sess.Step {
	case models.StepProviderAuth:
		return e.providerAuth(sess, text)
	case models.StepEnterRoute, models.StepEnterServiceName, models.StepEnterDriver,
		models.StepEnterVehicle, models.StepEnterSeats, models.StepEnterAdultFare,
		models.StepEnterTeacherFare, models.StepEnterChildFare, models.StepEnterContact:
		return e.providerField(sess, text)
	case models.StepEnterAge:
		return e.passengerAge(sess, text)
	case models.StepEnterTime:
		return e.passengerTime(ctx, sess, text)
	}
	// The current step expects a menu selection.
	return e.unexpected(sess), nil
}

// unexpected answers an input whose shape does not fit the current step. The
// session is left untouched.
func (e *Engine) unexpected(sess models.Session) models.OutboundResponse {
	return models.OutboundResponse{
		ChatID: sess.ChatID,
		Text:   "Unexpected input for this step. Use the options shown, or send /start to begin again.",
		Alert:  true,
	}
}

// AllRoutes is the union of timetable route names and active service routes,
// sorted and de-duplicated. Matching stays case-sensitive on both sides.
func (e *Engine) AllRoutes() ([]string, error) {
	seen := make(map[string]struct{})
	var routes []string
	for _, name := range e.Schedule.RouteNames() {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			routes = append(routes, name)
		}
	}

	svcs, err := e.Services.ListAll()
	if err != nil {
		return nil, err
	}
	for _, svc := range svcs {
		if svc.Status != models.StatusActive || svc.Route == "" {
			continue
		}
		if _, ok := seen[svc.Route]; !ok {
			seen[svc.Route] = struct{}{}
			routes = append(routes, svc.Route)
		}
	}
	sort.Strings(routes)
	return routes, nil
}

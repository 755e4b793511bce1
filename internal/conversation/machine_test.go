package conversation

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
	"github.com/DiosyStephen/routAfare/internal/fare"
	"github.com/DiosyStephen/routAfare/internal/schedule"
	"github.com/DiosyStephen/routAfare/internal/services"
	"github.com/DiosyStephen/routAfare/internal/storage"
)

type testEngine struct {
	*Engine
	services *storage.ServiceFile
}

func newTestEngine(t *testing.T, rows []schedule.Row) testEngine {
	t.Helper()
	dir := t.TempDir()

	sessions, err := storage.OpenSessionFile(filepath.Join(dir, "sessions.json"))
	if err != nil {
		t.Fatalf("open sessions: %v", err)
	}
	svcStore, err := storage.OpenServiceFile(filepath.Join(dir, "services.json"))
	if err != nil {
		t.Fatalf("open services: %v", err)
	}
	bookings, err := storage.OpenBookingFile(filepath.Join(dir, "bookings.json"))
	if err != nil {
		t.Fatalf("open bookings: %v", err)
	}

	return testEngine{
		Engine: &Engine{
			Sessions:          sessions,
			Services:          svcStore,
			Schedule:          schedule.NewIndex(rows, schedule.DefaultIntervalMinutes),
			Fares:             &fare.Estimator{},
			Booking:           services.BookingService{Services: svcStore, Bookings: bookings},
			ProviderPassword:  "admin",
			DefaultDistanceKM: 5,
		},
		services: svcStore,
	}
}

func kandyRows() []schedule.Row {
	return []schedule.Row{
		{RouteID: "R1", RouteName: "Kandy-Colombo", BusType: 1, TimeSlot: "06:00-08:00"},
	}
}

func menu(t *testing.T, e testEngine, chatID, payload string) models.OutboundResponse {
	t.Helper()
	resp, err := e.Handle(context.Background(), models.InboundEvent{
		ChatID: chatID, Kind: models.EventMenu, Payload: payload,
	})
	if err != nil {
		t.Fatalf("menu %q: %v", payload, err)
	}
	return resp
}

func text(t *testing.T, e testEngine, chatID, payload string) models.OutboundResponse {
	t.Helper()
	resp, err := e.Handle(context.Background(), models.InboundEvent{
		ChatID: chatID, Kind: models.EventText, Payload: payload,
	})
	if err != nil {
		t.Fatalf("text %q: %v", payload, err)
	}
	return resp
}

func menuValues(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

func hasMenuValue(items []models.MenuItem, value string) bool {
	for _, it := range items {
		if it.Value == value {
			return true
		}
	}
	return false
}

func TestHandleRejectsEmptyChatID(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	_, err := e.Handle(context.Background(), models.InboundEvent{Kind: models.EventText, Payload: "hi"})
	if err == nil {
		t.Fatal("expected an error for an empty chat id")
	}
}

func TestUnknownChatGetsWelcome(t *testing.T) {
	e := newTestEngine(t, kandyRows())

	resp := text(t, e, "chat-1", "hello")
	if !strings.Contains(resp.Text, "select your role") {
		t.Fatalf("expected role prompt, got %q", resp.Text)
	}
	if !hasMenuValue(resp.Menu, cbRolePassenger) || !hasMenuValue(resp.Menu, cbRoleProvider) {
		t.Fatalf("role menu missing options: %v", menuValues(resp.Menu))
	}
}

func TestPassengerBookingHappyPath(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	resp := menu(t, e, chat, cbRolePassenger)
	if !hasMenuValue(resp.Menu, cbRoutePrefix+"Kandy-Colombo") {
		t.Fatalf("route menu missing timetable route: %v", menuValues(resp.Menu))
	}

	resp = menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")
	if !strings.Contains(resp.Text, "How many passengers?") {
		t.Fatalf("expected count prompt, got %q", resp.Text)
	}
	if !hasMenuValue(resp.Menu, cbCountPrefix+"7+") {
		t.Fatalf("count menu missing open-ended option: %v", menuValues(resp.Menu))
	}

	resp = menu(t, e, chat, cbCountPrefix+"2")
	if !strings.Contains(resp.Text, "passenger 1 of 2") {
		t.Fatalf("expected first age prompt, got %q", resp.Text)
	}

	resp = text(t, e, chat, "30")
	if !strings.Contains(resp.Text, "passenger 2 of 2") {
		t.Fatalf("expected second age prompt, got %q", resp.Text)
	}

	resp = text(t, e, chat, "8")
	if !strings.Contains(resp.Text, "departure time") {
		t.Fatalf("expected time prompt, got %q", resp.Text)
	}

	// "7:00" normalizes to "07:00", inside the 06:00-08:00 window.
	resp = text(t, e, chat, "7:00")
	if !strings.Contains(resp.Text, "Your Search Summary") {
		t.Fatalf("expected search summary, got %q", resp.Text)
	}
	if !hasMenuValue(resp.Menu, cbConfirmPrefix+"CSV-BUS-1") {
		t.Fatalf("expected timetable offer, got %v", menuValues(resp.Menu))
	}

	resp = menu(t, e, chat, cbConfirmPrefix+"CSV-BUS-1")
	if !strings.Contains(resp.Text, "BOOKING CONFIRMED!") {
		t.Fatalf("expected confirmation, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "Booking ref:") {
		t.Fatalf("confirmation missing booking ref: %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "confirm with the operator") {
		t.Fatalf("timetable booking should flag the fare as estimated: %q", resp.Text)
	}

	// The flow is over; the next message starts fresh.
	if _, ok, _ := e.Sessions.Get(chat); ok {
		t.Fatal("session should be cleared after confirmation")
	}
}

func TestInvalidAgeRepromptsSamePassenger(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")
	menu(t, e, chat, cbCountPrefix+"2")

	for _, bad := range []string{"abc", "-1", "200", ""} {
		resp := text(t, e, chat, bad)
		if !strings.Contains(resp.Text, "Invalid age") || !strings.Contains(resp.Text, "passenger 1 of 2") {
			t.Fatalf("age %q should re-prompt passenger 1, got %q", bad, resp.Text)
		}
	}

	// A valid age finally advances.
	resp := text(t, e, chat, "30")
	if !strings.Contains(resp.Text, "passenger 2 of 2") {
		t.Fatalf("expected advance to passenger 2, got %q", resp.Text)
	}

	sess, ok, _ := e.Sessions.Get(chat)
	if !ok || len(sess.Answers.Ages) != 1 || sess.Answers.Ages[0] != 30 {
		t.Fatalf("only the valid age may be recorded: %+v", sess.Answers)
	}
}

func TestOpenEndedCountAsksSevenAges(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")

	resp := menu(t, e, chat, cbCountPrefix+"7+")
	if !strings.Contains(resp.Text, "passenger 1 of 7") {
		t.Fatalf("7+ should normalize to 7, got %q", resp.Text)
	}

	for i := 0; i < 6; i++ {
		resp = text(t, e, chat, "25")
	}
	if !strings.Contains(resp.Text, "passenger 7 of 7") {
		t.Fatalf("expected seventh age prompt, got %q", resp.Text)
	}

	resp = text(t, e, chat, "25")
	if !strings.Contains(resp.Text, "departure time") {
		t.Fatalf("expected time prompt after seven ages, got %q", resp.Text)
	}
}

func TestInvalidTimeReprompts(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")
	menu(t, e, chat, cbCountPrefix+"1")
	text(t, e, chat, "30")

	for _, bad := range []string{"25:00", "7pm", "0700", "12:60"} {
		resp := text(t, e, chat, bad)
		if !strings.Contains(resp.Text, "Invalid time format") {
			t.Fatalf("time %q should re-prompt, got %q", bad, resp.Text)
		}
	}

	sess, ok, _ := e.Sessions.Get(chat)
	if !ok || sess.Step != models.StepEnterTime {
		t.Fatalf("session must stay on the time step, got %+v", sess)
	}
}

func TestSearchWithNoMatchesEndsFlow(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")
	menu(t, e, chat, cbCountPrefix+"1")
	text(t, e, chat, "30")

	resp := text(t, e, chat, "09:00")
	if !strings.Contains(resp.Text, "No buses found") {
		t.Fatalf("expected empty-result message, got %q", resp.Text)
	}
	if _, ok, _ := e.Sessions.Get(chat); ok {
		t.Fatal("empty search must clear the session")
	}
}

func TestCancelClearsSessionMidFlow(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")

	for _, cancel := range []string{"/cancel", "/start", "Cancel"} {
		menu(t, e, chat, cbRolePassenger)
		resp := text(t, e, chat, cancel)
		if !strings.Contains(resp.Text, "select your role") {
			t.Fatalf("cancel %q should return the welcome, got %q", cancel, resp.Text)
		}
		if _, ok, _ := e.Sessions.Get(chat); ok {
			t.Fatalf("cancel %q left a session behind", cancel)
		}
	}
}

func TestUnexpectedMenuInputLeavesSessionUntouched(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")

	// A confirm callback in the count step is out of place.
	resp := menu(t, e, chat, cbConfirmPrefix+"CSV-BUS-1")
	if !resp.Alert || !strings.Contains(resp.Text, "Unexpected input") {
		t.Fatalf("expected an alert re-prompt, got %+v", resp)
	}

	sess, ok, _ := e.Sessions.Get(chat)
	if !ok || sess.Step != models.StepSelectCount {
		t.Fatalf("session must stay on the count step, got %+v", sess)
	}
}

func TestProviderRegistrationFlow(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "prov-1"

	resp := menu(t, e, chat, cbRoleProvider)
	if !strings.Contains(resp.Text, "password") {
		t.Fatalf("expected password prompt, got %q", resp.Text)
	}

	resp = text(t, e, chat, "wrong")
	if !strings.Contains(resp.Text, "Wrong password") {
		t.Fatalf("expected auth rejection, got %q", resp.Text)
	}

	resp = text(t, e, chat, "admin")
	if !strings.Contains(resp.Text, "Access granted") || !hasMenuValue(resp.Menu, cbProviderAdd) {
		t.Fatalf("expected provider menu, got %+v", resp)
	}

	menu(t, e, chat, cbProviderAdd)
	text(t, e, chat, "Galle-Matara")
	text(t, e, chat, "Ocean Line")
	text(t, e, chat, "P. Perera")
	text(t, e, chat, "skip") // vehicle class

	resp = text(t, e, chat, "forty")
	if !strings.Contains(resp.Text, "Invalid seat count") {
		t.Fatalf("expected seat retry, got %q", resp.Text)
	}
	text(t, e, chat, "40")

	resp = text(t, e, chat, "-5")
	if !strings.Contains(resp.Text, "Invalid price") {
		t.Fatalf("expected fare retry, got %q", resp.Text)
	}
	text(t, e, chat, "150")
	text(t, e, chat, "skip") // teacher fare
	text(t, e, chat, "75")   // child fare

	resp = text(t, e, chat, "123")
	if !strings.Contains(resp.Text, "Invalid contact") {
		t.Fatalf("short contact should be rejected, got %q", resp.Text)
	}
	resp = text(t, e, chat, "+94 77 1234567")
	if !strings.Contains(resp.Text, "Payment options") {
		t.Fatalf("expected payment menu, got %q", resp.Text)
	}

	// Toggle weekly on, monthly on, monthly off again.
	resp = menu(t, e, chat, cbPayPrefix+"weekly")
	if !hasMenuValue(resp.Menu, cbPayPrefix+"weekly") {
		t.Fatalf("payment menu lost its options: %v", menuValues(resp.Menu))
	}
	menu(t, e, chat, cbPayPrefix+"monthly")
	menu(t, e, chat, cbPayPrefix+"monthly")

	resp = menu(t, e, chat, cbSaveService)
	if !strings.Contains(resp.Text, "Service saved successfully!") {
		t.Fatalf("expected save confirmation, got %q", resp.Text)
	}

	svcs, err := e.services.ListByRoute("Galle-Matara", true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(svcs) != 1 {
		t.Fatalf("expected one saved service, got %d", len(svcs))
	}
	svc := svcs[0]
	if svc.ServiceName != "Ocean Line" || svc.TotalSeats != 40 || svc.RemainingSeats != 40 {
		t.Fatalf("service mismatch: %+v", svc)
	}
	if svc.FareTable[models.BracketAdult] != 150 || svc.FareTable[models.BracketChild] != 75 {
		t.Fatalf("fare table mismatch: %+v", svc.FareTable)
	}
	if _, ok := svc.FareTable[models.BracketTeacher]; ok {
		t.Fatal("skipped teacher fare must not enter the fare table")
	}
	if len(svc.PaymentMethods) != 1 || svc.PaymentMethods[0] != "weekly" {
		t.Fatalf("payment methods mismatch: %v", svc.PaymentMethods)
	}

	// Back on the provider menu for the next action.
	sess, ok, _ := e.Sessions.Get(chat)
	if !ok || sess.Step != models.StepProviderMenu || sess.Draft != nil {
		t.Fatalf("session not reset after save: %+v", sess)
	}
}

func addService(t *testing.T, e testEngine, svc models.Service) string {
	t.Helper()
	id, err := e.services.Create(svc)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return id
}

func TestProviderOfferUsesFareTable(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addService(t, e, models.Service{
		Route:       "Galle-Matara",
		ServiceName: "Ocean Line",
		Driver:      "P. Perera",
		FareTable:   map[string]float64{models.BracketAdult: 150, models.BracketChild: 75},
		TotalSeats:  40,
		Contact:     "+94 77 1234567",
	})
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Galle-Matara")
	menu(t, e, chat, cbCountPrefix+"3")
	text(t, e, chat, "10")
	text(t, e, chat, "30")
	text(t, e, chat, "5")

	resp := text(t, e, chat, "07:00")
	if !hasMenuValue(resp.Menu, cbConfirmPrefix+"SVC-"+id) {
		t.Fatalf("expected provider offer, got %v", menuValues(resp.Menu))
	}

	// Two children at 75 plus one adult at 150.
	resp = menu(t, e, chat, cbConfirmPrefix+"SVC-"+id)
	if !strings.Contains(resp.Text, "Fare: Rs. 300.00") {
		t.Fatalf("expected table fare 300.00, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "Seats remaining: 37") {
		t.Fatalf("expected 37 seats remaining, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "Contact: +94 77 1234567") {
		t.Fatalf("confirmation missing contact, got %q", resp.Text)
	}

	svc, err := e.services.GetByID(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if svc.RemainingSeats != 37 {
		t.Fatalf("remaining seats: got %d want 37", svc.RemainingSeats)
	}
}

func TestOverbookingKeepsUserInSelection(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addService(t, e, models.Service{
		Route:       "Galle-Matara",
		ServiceName: "Ocean Line",
		FareTable:   map[string]float64{models.BracketAdult: 150},
		TotalSeats:  2,
	})

	book := func(chat string) models.OutboundResponse {
		menu(t, e, chat, cbRolePassenger)
		menu(t, e, chat, cbRoutePrefix+"Galle-Matara")
		menu(t, e, chat, cbCountPrefix+"1")
		text(t, e, chat, "30")
		text(t, e, chat, "07:00")
		return menu(t, e, chat, cbConfirmPrefix+"SVC-"+id)
	}

	// Two seats, two single-passenger bookings.
	if resp := book("chat-1"); !strings.Contains(resp.Text, "BOOKING CONFIRMED!") {
		t.Fatalf("first booking failed: %q", resp.Text)
	}
	if resp := book("chat-2"); !strings.Contains(resp.Text, "BOOKING CONFIRMED!") {
		t.Fatalf("second booking failed: %q", resp.Text)
	}

	// The third finds the bus sold out but keeps its offer list.
	resp := book("chat-3")
	if !resp.Alert || !strings.Contains(resp.Text, "Not enough seats") {
		t.Fatalf("expected sold-out alert, got %+v", resp)
	}
	if len(resp.Menu) == 0 {
		t.Fatal("user should keep the offer menu to pick another bus")
	}
	sess, ok, _ := e.Sessions.Get("chat-3")
	if !ok || sess.Step != models.StepSelectBus {
		t.Fatalf("session must stay in bus selection, got %+v", sess)
	}

	svc, _ := e.services.GetByID(id)
	if svc.RemainingSeats != 0 {
		t.Fatalf("remaining seats: got %d want 0", svc.RemainingSeats)
	}
}

func TestStatusToggleRemovesAndRestoresService(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addService(t, e, models.Service{
		Route:       "Galle-Matara",
		ServiceName: "Ocean Line",
		FareTable:   map[string]float64{models.BracketAdult: 150},
		TotalSeats:  40,
	})

	search := func(chat string) models.OutboundResponse {
		resp := menu(t, e, chat, cbRolePassenger)
		if resp.Alert {
			return resp
		}
		menu(t, e, chat, cbRoutePrefix+"Galle-Matara")
		menu(t, e, chat, cbCountPrefix+"1")
		text(t, e, chat, "30")
		return text(t, e, chat, "07:00")
	}

	if resp := search("pass-1"); !hasMenuValue(resp.Menu, cbConfirmPrefix+"SVC-"+id) {
		t.Fatalf("service missing from search before toggle: %v", menuValues(resp.Menu))
	}

	// Provider takes the service offline.
	prov := "prov-1"
	menu(t, e, prov, cbRoleProvider)
	text(t, e, prov, "admin")
	resp := menu(t, e, prov, cbProviderStatus)
	if !hasMenuValue(resp.Menu, cbStatusPrefix+id) {
		t.Fatalf("status list missing service: %v", menuValues(resp.Menu))
	}
	resp = menu(t, e, prov, cbStatusPrefix+id)
	if !hasMenuValue(resp.Menu, cbStatusPrefix+id) {
		t.Fatalf("toggled list must still show the service: %v", menuValues(resp.Menu))
	}

	// The only route came from that service, so role selection dead-ends.
	if resp := search("pass-2"); !strings.Contains(resp.Text, "No routes available") {
		t.Fatalf("unavailable service still searchable: %+v", resp)
	}

	// Toggle back and it returns.
	menu(t, e, prov, cbStatusPrefix+id)
	if resp := search("pass-3"); !hasMenuValue(resp.Menu, cbConfirmPrefix+"SVC-"+id) {
		t.Fatalf("restored service missing from search: %v", menuValues(resp.Menu))
	}
}

func TestProviderActionsRequireAuth(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "prov-1"

	menu(t, e, chat, cbRoleProvider)
	// Still on the password step; menu actions are out of place.
	resp := menu(t, e, chat, cbProviderAdd)
	if !resp.Alert {
		t.Fatalf("provider menu before auth should alert, got %+v", resp)
	}
	resp = menu(t, e, chat, cbProviderStatus)
	if !resp.Alert {
		t.Fatalf("status list before auth should alert, got %+v", resp)
	}
}

func TestStatusListEmpty(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "prov-1"

	menu(t, e, chat, cbRoleProvider)
	text(t, e, chat, "admin")

	resp := menu(t, e, chat, cbProviderStatus)
	if !resp.Alert || !strings.Contains(resp.Text, "No services added yet") {
		t.Fatalf("expected empty-list alert, got %+v", resp)
	}
}

func TestStaleOfferRestartsFlow(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	chat := "chat-1"

	menu(t, e, chat, cbRolePassenger)
	menu(t, e, chat, cbRoutePrefix+"Kandy-Colombo")
	menu(t, e, chat, cbCountPrefix+"1")
	text(t, e, chat, "30")
	text(t, e, chat, "07:00")

	resp := menu(t, e, chat, cbConfirmPrefix+"SVC-nonexistent")
	if !strings.Contains(resp.Text, "Starting over") {
		t.Fatalf("expected restart on stale offer, got %q", resp.Text)
	}
	if _, ok, _ := e.Sessions.Get(chat); ok {
		t.Fatal("stale offer must clear the session")
	}
}

func TestAllRoutesMergesTimetableAndServices(t *testing.T) {
	e := newTestEngine(t, kandyRows())
	addService(t, e, models.Service{
		Route:       "Galle-Matara",
		ServiceName: "Ocean Line",
		FareTable:   map[string]float64{models.BracketAdult: 150},
		TotalSeats:  40,
	})
	inactive := addService(t, e, models.Service{
		Route:       "Jaffna-Colombo",
		ServiceName: "North Star",
		FareTable:   map[string]float64{models.BracketAdult: 400},
		TotalSeats:  40,
	})
	if err := e.services.SetStatus(inactive, models.StatusUnavailable); err != nil {
		t.Fatalf("set status: %v", err)
	}

	routes, err := e.AllRoutes()
	if err != nil {
		t.Fatalf("all routes: %v", err)
	}
	want := []string{"Galle-Matara", "Kandy-Colombo"}
	if len(routes) != len(want) {
		t.Fatalf("routes mismatch: got %v want %v", routes, want)
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Fatalf("routes mismatch: got %v want %v", routes, want)
		}
	}
}

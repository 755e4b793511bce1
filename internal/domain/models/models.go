package models

import "time"

// Role is who the chat user identified as.
type Role string

const (
	RoleUnset     Role = ""
	RolePassenger Role = "passenger"
	RoleProvider  Role = "provider"
)

// Step marks which input the conversation is waiting for next.
type Step string

const (
	// Passenger flow.
	StepSelectRoute Step = "pass_select_route"
	StepSelectCount Step = "pass_count"
	StepEnterAge    Step = "pass_enter_age"
	StepEnterTime   Step = "await_time"
	StepSelectBus   Step = "await_bus_select"

	// Provider flow.
	StepProviderAuth     Step = "provider_auth"
	StepProviderMenu     Step = "provider_menu"
	StepEnterRoute       Step = "prov_enter_route"
	StepEnterServiceName Step = "prov_enter_service_name"
	StepEnterDriver      Step = "prov_enter_driver"
	StepEnterVehicle     Step = "prov_enter_vehicle"
	StepEnterSeats       Step = "prov_enter_seats"
	StepEnterAdultFare   Step = "prov_enter_fare_adult"
	StepEnterTeacherFare Step = "prov_enter_fare_teacher"
	StepEnterChildFare   Step = "prov_enter_fare_child"
	StepEnterContact     Step = "prov_enter_contact"
	StepSelectPayment    Step = "prov_select_payment"
)

// Fare bracket names as stored in a service fare table.
const (
	BracketAdult   = "adult"
	BracketTeacher = "teacher"
	BracketChild   = "child"
)

// Service statuses.
const (
	StatusActive      = "active"
	StatusUnavailable = "unavailable"
)

// Answers accumulates validated passenger-flow input.
type Answers struct {
	Route      string  `json:"route,omitempty"`
	Count      int     `json:"count,omitempty"`
	CountLabel string  `json:"count_label,omitempty"`
	Ages       []int   `json:"ages,omitempty"`
	AgeIndex   int     `json:"age_index,omitempty"`
	Time       string  `json:"time,omitempty"`
	DistanceKM float64 `json:"distance_km,omitempty"`
}

// ServiceDraft holds the provider registration fields collected so far.
type ServiceDraft struct {
	Route          string   `json:"route,omitempty"`
	ServiceName    string   `json:"service_name,omitempty"`
	Driver         string   `json:"driver,omitempty"`
	VehicleClass   string   `json:"vehicle_class,omitempty"`
	TotalSeats     int      `json:"total_seats,omitempty"`
	AdultFare      float64  `json:"adult_fare,omitempty"`
	TeacherFare    float64  `json:"teacher_fare,omitempty"`
	HasTeacherFare bool     `json:"has_teacher_fare,omitempty"`
	ChildFare      float64  `json:"child_fare,omitempty"`
	HasChildFare   bool     `json:"has_child_fare,omitempty"`
	Contact        string   `json:"contact,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

// OfferKind distinguishes what backs an offer.
type OfferKind string

const (
	OfferSchedule OfferKind = "schedule"
	OfferProvider OfferKind = "provider"
)

// Offer is one bookable search result shown to a passenger.
type Offer struct {
	ID        string    `json:"id"`
	Kind      OfferKind `json:"kind"`
	ServiceID string    `json:"service_id,omitempty"`
	Name      string    `json:"name"`
	Details   string    `json:"details"`
	Fare      float64   `json:"fare"`
	Contact   string    `json:"contact,omitempty"`
}

// Session is the durable per-chat conversation state.
type Session struct {
	ChatID  string        `json:"chat_id"`
	Step    Step          `json:"step"`
	Role    Role          `json:"role"`
	Answers Answers       `json:"answers"`
	Draft   *ServiceDraft `json:"draft,omitempty"`
	Offers  []Offer       `json:"offers,omitempty"`
}

// FindOffer returns the offer with the given id from the last search, if any.
func (s Session) FindOffer(id string) (Offer, bool) {
	for _, o := range s.Offers {
		if o.ID == id {
			return o, true
		}
	}
	return Offer{}, false
}

// Service is a provider-registered bus offering.
type Service struct {
	ID             string             `json:"id"`
	Route          string             `json:"route"`
	ServiceName    string             `json:"service_name"`
	Driver         string             `json:"driver,omitempty"`
	VehicleClass   string             `json:"vehicle_class,omitempty"`
	FareTable      map[string]float64 `json:"fare_table"`
	TotalSeats     int                `json:"total_seats"`
	RemainingSeats int                `json:"remaining_seats"`
	Status         string             `json:"status"`
	Contact        string             `json:"contact,omitempty"`
	PaymentMethods []string           `json:"payment_methods,omitempty"`
	CreatedAt      time.Time          `json:"created_at,omitempty"`
}

// ScheduleEntry is one static timetable record. Immutable after startup.
type ScheduleEntry struct {
	ID             string   `json:"id"`
	RouteID        string   `json:"route_id,omitempty"`
	RouteName      string   `json:"route_name"`
	BusType        int      `json:"bus_type,omitempty"`
	Direction      string   `json:"direction,omitempty"`
	DepartureTimes []string `json:"departure_times"`
}

// Booking records a confirmed passenger booking.
type Booking struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	Route       string    `json:"route"`
	Time        string    `json:"time"`
	ServiceID   string    `json:"service_id,omitempty"`
	ServiceName string    `json:"service_name"`
	Passengers  int       `json:"passengers"`
	Fare        float64   `json:"fare"`
	Contact     string    `json:"contact,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventKind is the shape of an inbound chat event.
type EventKind string

const (
	EventMenu EventKind = "menu"
	EventText EventKind = "text"
)

// InboundEvent is the transport-agnostic input: a button callback or a typed
// message, both reduced to a payload string.
type InboundEvent struct {
	ChatID  string    `json:"chat_id" binding:"required"`
	Kind    EventKind `json:"kind" binding:"required,oneof=menu text"`
	Payload string    `json:"payload" binding:"required"`
}

// MenuItem is one selectable option attached to a response.
type MenuItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// OutboundResponse is the prompt or result sent back to the transport.
type OutboundResponse struct {
	ChatID string     `json:"chat_id"`
	Text   string     `json:"text"`
	Menu   []MenuItem `json:"menu,omitempty"`
	Alert  bool       `json:"alert,omitempty"`
}

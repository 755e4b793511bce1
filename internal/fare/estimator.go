// Package fare prices trips: a heuristic estimate for schedule-backed
// offers and a bracket-table lookup for provider services.
package fare

import (
	"context"
	"math"
	"time"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

const (
	DefaultDistanceKM = 5.0

	baseFarePerPassenger = 20.0
	perKMRate            = 5.0
	minFare              = 5.0

	// ChildMaxAge is the inclusive upper bound of the child bracket.
	ChildMaxAge = 12
)

// TripContext carries everything an estimate can depend on.
type TripContext struct {
	DistanceKM   float64 `json:"distance_km"`
	TrafficLevel int     `json:"traffic_level"`
	Passengers   int     `json:"passengers"`
	Ages         []int   `json:"ages,omitempty"`
}

// Predictor is a pluggable remote fare model.
type Predictor interface {
	Predict(ctx context.Context, trip TripContext) (float64, error)
}

// Estimator wraps an optional remote predictor with a guaranteed local
// fallback. Estimate never fails and never blocks past Timeout.
type Estimator struct {
	Remote  Predictor
	Timeout time.Duration
}

// Estimate returns a finite non-negative fare. Remote errors, timeouts and
// non-positive remote answers all fall back to the local formula.
func (e *Estimator) Estimate(ctx context.Context, trip TripContext) float64 {
	if e != nil && e.Remote != nil {
		timeout := e.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if fare, err := e.Remote.Predict(rctx, trip); err == nil && fare > 0 && !math.IsInf(fare, 0) && !math.IsNaN(fare) {
			return round2(fare)
		}
	}
	return Fallback(trip)
}

// Fallback is the deterministic local formula:
// max(5.0, round((20*n + km*5) * (1 + 0.1*traffic), 2)).
func Fallback(trip TripContext) float64 {
	count := trip.Passengers
	if count < 1 {
		count = 1
	}
	km := trip.DistanceKM
	if km <= 0 {
		km = DefaultDistanceKM
	}
	traffic := trip.TrafficLevel
	if traffic < 1 {
		traffic = 1
	}

	fare := (baseFarePerPassenger*float64(count) + km*perKMRate) * (1.0 + 0.1*float64(traffic))
	return math.Max(minFare, round2(fare))
}

// Bracket classifies one passenger age. Ages <= 0 ride free and map to the
// empty bracket; the teacher bracket is provider-configured and never
// reachable from age alone.
func Bracket(age int) string {
	switch {
	case age <= 0:
		return ""
	case age <= ChildMaxAge:
		return models.BracketChild
	default:
		return models.BracketAdult
	}
}

// TableFare sums a service's fare table over the passenger ages. A bracket
// missing from the table falls back to the adult price.
func TableFare(table map[string]float64, ages []int) float64 {
	var total float64
	for _, age := range ages {
		bracket := Bracket(age)
		if bracket == "" {
			continue
		}
		price, ok := table[bracket]
		if !ok {
			price = table[models.BracketAdult]
		}
		total += price
	}
	return round2(total)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

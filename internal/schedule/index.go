// Package schedule builds the read-only departure index from the static
// timetable and answers route/time lookups for passenger search.
package schedule

import (
	"fmt"
	"sort"

	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// DefaultIntervalMinutes is the step used to expand a time window into
// discrete departures.
const DefaultIntervalMinutes = 60

// Index holds the expanded timetable. Immutable once built, safe for
// concurrent reads.
type Index struct {
	entries []models.ScheduleEntry
	byRoute map[string][]int
}

type groupKey struct {
	routeID   string
	routeName string
	busType   int
	direction string
}

// NewIndex groups rows by (route, bus type, direction), expands every
// distinct time window and keeps one entry per group. Groups whose windows
// all fail to parse are dropped.
func NewIndex(rows []Row, intervalMinutes int) *Index {
	groups := make(map[groupKey]map[string]struct{})
	order := make([]groupKey, 0)

	for _, row := range rows {
		key := groupKey{row.RouteID, row.RouteName, row.BusType, row.Direction}
		set, ok := groups[key]
		if !ok {
			set = make(map[string]struct{})
			groups[key] = set
			order = append(order, key)
		}
		for _, t := range ExpandWindow(row.TimeSlot, intervalMinutes) {
			set[t] = struct{}{}
		}
	}

	idx := &Index{byRoute: make(map[string][]int)}
	seq := 1
	for _, key := range order {
		set := groups[key]
		if len(set) == 0 {
			continue
		}
		times := make([]string, 0, len(set))
		for t := range set {
			times = append(times, t)
		}
		sort.Slice(times, func(i, j int) bool {
			a, _ := MinuteOfDay(times[i])
			b, _ := MinuteOfDay(times[j])
			return a < b
		})

		idx.entries = append(idx.entries, models.ScheduleEntry{
			ID:             fmt.Sprintf("BUS-%d", seq),
			RouteID:        key.routeID,
			RouteName:      key.routeName,
			BusType:        key.busType,
			Direction:      key.direction,
			DepartureTimes: times,
		})
		idx.byRoute[key.routeName] = append(idx.byRoute[key.routeName], len(idx.entries)-1)
		seq++
	}
	return idx
}

// EntriesForRoute returns all timetable entries whose route name matches
// exactly.
func (ix *Index) EntriesForRoute(routeName string) []models.ScheduleEntry {
	idxs := ix.byRoute[routeName]
	out := make([]models.ScheduleEntry, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, ix.entries[i])
	}
	return out
}

// HasDeparture reports whether the route has an expanded departure at the
// given normalized HH:MM time.
func (ix *Index) HasDeparture(routeName, t string) bool {
	for _, i := range ix.byRoute[routeName] {
		for _, dt := range ix.entries[i].DepartureTimes {
			if dt == t {
				return true
			}
		}
	}
	return false
}

// RouteNames lists the distinct route names in the index, sorted.
func (ix *Index) RouteNames() []string {
	names := make([]string, 0, len(ix.byRoute))
	for name := range ix.byRoute {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of entries in the index.
func (ix *Index) Len() int { return len(ix.entries) }

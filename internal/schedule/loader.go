package schedule

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Row is one raw timetable record before grouping.
type Row struct {
	RouteID   string
	RouteName string
	BusType   int
	Direction string
	TimeSlot  string
}

// LoadCSV reads the timetable export. Columns are located by header name so
// extra columns are ignored; recognized headers are route_id, bus_route,
// bus_type_num, direction and time_slot.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read timetable csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := Row{
			RouteID:   field(rec, "route_id"),
			RouteName: field(rec, "bus_route"),
			Direction: field(rec, "direction"),
			TimeSlot:  field(rec, "time_slot"),
		}
		if row.RouteName == "" {
			row.RouteName = row.RouteID
		}
		if v := field(rec, "bus_type_num"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				row.BusType = n
			}
		}
		if row.BusType == 0 {
			row.BusType = 1
		}
		if row.RouteID == "" && row.RouteName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

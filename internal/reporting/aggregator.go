package reporting

import (
	"sort"
	"strings"

	"github.com/nccpresi/attendance-backend/internal/database"
)

// SummaryRow is one roster line of the per-cadet attendance summary.
type SummaryRow struct {
	SrNo            int    `json:"sr_no"`
	EnrollmentID    string `json:"enrollment_id"`
	Rank            string `json:"rank"`
	Year            string `json:"year"`
	Name            string `json:"name"`
	Department      string `json:"dept"`
	PURollNumber    string `json:"pu_roll_number"`
	MandatoryParade int    `json:"mandatory_parade"`
	SocialDrives    int    `json:"social_drives"`
	CollegeEvents   int    `json:"college_events"`
	Others          int    `json:"others"`
	Total           int    `json:"total"`
}

// Summary builds one row per cadet with attendance counts broken down by
// event-type bucket. Every cadet appears, attended or not; rows are
// ordered by enrollment id and numbered from 1.
func Summary(cadets []database.Cadet, events []database.Event, logs []database.AttendanceLog) []SummaryRow {
	eventType := make(map[string]string, len(events))
	for _, e := range events {
		eventType[e.EventID] = e.EventType
	}

	type counts struct {
		buckets map[string]int
		total   int
	}
	perCadet := make(map[string]*counts, len(cadets))
	for _, c := range cadets {
		perCadet[c.EnrollmentID] = &counts{buckets: map[string]int{}}
	}

	// Every ledger row counts, whatever its status says; total stays
	// equal to the sum of the buckets.
	for _, l := range logs {
		c, ok := perCadet[l.EnrollmentID]
		if !ok {
			continue
		}
		c.total++
		c.buckets[BucketFor(eventType[l.EventID])]++
	}

	rows := make([]SummaryRow, 0, len(cadets))
	for _, cadet := range cadets {
		c := perCadet[cadet.EnrollmentID]
		rows = append(rows, SummaryRow{
			EnrollmentID:    cadet.EnrollmentID,
			Rank:            cadet.Rank,
			Year:            cadet.Year,
			Name:            cadet.Name,
			Department:      cadet.Department,
			PURollNumber:    cadet.PURollNumber,
			MandatoryParade: c.buckets["mandatory_parade"],
			SocialDrives:    c.buckets["social_drives"],
			CollegeEvents:   c.buckets["college_events"],
			Others:          c.buckets["others"],
			Total:           c.total,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].EnrollmentID < rows[j].EnrollmentID
	})
	for i := range rows {
		rows[i].SrNo = i + 1
	}
	return rows
}

// StrengthRow is one study-year line of the unit strength breakdown.
type StrengthRow struct {
	Year  string `json:"Year"`
	SD    int    `json:"SD"`
	SW    int    `json:"SW"`
	Total int    `json:"Total"`
}

// Strength is the unit headcount split by year and by SD/SW wing.
type Strength struct {
	Total     int           `json:"total"`
	Breakdown []StrengthRow `json:"breakdown"`
}

// yearOrder fixes the breakdown row order, seniors first. Cadets with any
// other year value count toward the total but get no breakdown row.
var yearOrder = []string{"3rd Year", "2nd Year", "1st Year"}

// ComputeStrength tallies the roster. Every year row is present even when
// empty.
func ComputeStrength(cadets []database.Cadet) Strength {
	rows := make(map[string]*StrengthRow, len(yearOrder))
	for _, y := range yearOrder {
		rows[y] = &StrengthRow{Year: y}
	}

	s := Strength{}
	for _, c := range cadets {
		s.Total++
		row, ok := rows[c.Year]
		if !ok {
			continue
		}
		row.Total++
		switch strings.ToUpper(strings.TrimSpace(c.SDSW)) {
		case "SD":
			row.SD++
		case "SW":
			row.SW++
		}
	}

	for _, y := range yearOrder {
		s.Breakdown = append(s.Breakdown, *rows[y])
	}
	return s
}

// EventStats is the per-event attendance count split by study year.
type EventStats struct {
	Total int `json:"total"`
	Year1 int `json:"year1"`
	Year2 int `json:"year2"`
	Year3 int `json:"year3"`
}

// ComputeEventStats counts the event's ledger rows by the marked cadet's
// year. Rows for cadets missing from the roster only count toward total.
func ComputeEventStats(logs []database.AttendanceLog, cadets []database.Cadet) EventStats {
	years := make(map[string]string, len(cadets))
	for _, c := range cadets {
		years[c.EnrollmentID] = c.Year
	}

	stats := EventStats{}
	for _, l := range logs {
		stats.Total++
		switch years[l.EnrollmentID] {
		case "1st Year":
			stats.Year1++
		case "2nd Year":
			stats.Year2++
		case "3rd Year":
			stats.Year3++
		}
	}
	return stats
}

package database

import "time"

// Event status values.
const (
	EventStatusActive = "Active"
	EventStatusEnded  = "Ended"
)

// StatusPresent is the attendance status that marks a cadet as present.
// Anything else (OD, Sick, ...) keeps the cadet on the on-duty list.
const StatusPresent = "Present"

// Cadet is a member of the unit roster, keyed by enrollment id.
type Cadet struct {
	EnrollmentID string `json:"enrollment_id"`
	Rank         string `json:"rank"`
	Name         string `json:"name"`
	Year         string `json:"year"`
	Department   string `json:"dept"`
	PURollNumber string `json:"pu_roll_number"`
	SDSW         string `json:"sd_sw"`
	MobileNumber string `json:"mobile_number"`
	Email        string `json:"email"`
	DateOfBirth  string `json:"date_of_birth"`
	BloodGroup   string `json:"blood_group"`
}

// Event is a single occasion attendance is taken for. Date is YYYY-MM-DD
// and Time is HH:MM; both are validated at the edge and stored verbatim.
type Event struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	EventType string    `json:"type"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// AttendanceCount is filled by listing queries, not stored.
	AttendanceCount int `json:"attendance_count"`
}

// AttendanceLog is one cadet marked at one event. The (EventID,
// EnrollmentID) pair is unique in storage.
type AttendanceLog struct {
	ID           int64     `json:"id"`
	EventID      string    `json:"event_id"`
	EnrollmentID string    `json:"enrollment_id"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

package database

import "context"

// CadetStore manages the unit roster.
type CadetStore interface {
	// Upsert inserts the cadet if the enrollment id is not present yet.
	// Returns true when a new row was created.
	Upsert(ctx context.Context, cadet Cadet) (bool, error)

	// Get returns the cadet or nil when the enrollment id is unknown.
	Get(ctx context.Context, enrollmentID string) (*Cadet, error)

	// List returns all cadets ordered by enrollment id.
	List(ctx context.Context) ([]Cadet, error)

	// Count returns the roster size.
	Count(ctx context.Context) (int, error)
}

// EventStore manages events and their lifecycle.
type EventStore interface {
	Create(ctx context.Context, event Event) error

	// Get returns the event or nil when the id is unknown.
	Get(ctx context.Context, eventID string) (*Event, error)

	// CurrentActive returns the most recently created Active event whose
	// date equals the given YYYY-MM-DD date, or nil when there is none.
	CurrentActive(ctx context.Context, date string) (*Event, error)

	// EndCurrent transitions the current active event for the given date
	// to Ended and returns it, or nil when there was nothing to end.
	EndCurrent(ctx context.Context, date string) (*Event, error)

	// List returns up to limit events, newest first, with attendance counts.
	List(ctx context.Context, limit int) ([]Event, error)
}

// AttendanceStore is the append-only attendance ledger.
type AttendanceStore interface {
	// Log records the attendance row. Returns false when the cadet was
	// already marked for the event; the existing row is left untouched.
	Log(ctx context.Context, entry AttendanceLog) (bool, error)

	// ForEvent returns all rows logged for the event.
	ForEvent(ctx context.Context, eventID string) ([]AttendanceLog, error)

	// NonPresentForEvent returns the rows whose status is not Present.
	NonPresentForEvent(ctx context.Context, eventID string) ([]AttendanceLog, error)

	// All returns every row in the ledger.
	All(ctx context.Context) ([]AttendanceLog, error)
}

// Package mock provides in-memory implementations of the storage
// interfaces for tests.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nccpresi/attendance-backend/internal/database"
)

// CadetStore is an in-memory database.CadetStore.
type CadetStore struct {
	mu     sync.Mutex
	cadets map[string]database.Cadet

	// Error injection for testing failure paths.
	UpsertError error
	GetError    error
	ListError   error
}

func NewCadetStore() *CadetStore {
	return &CadetStore{cadets: map[string]database.Cadet{}}
}

func (s *CadetStore) Upsert(_ context.Context, cadet database.Cadet) (bool, error) {
	if s.UpsertError != nil {
		return false, s.UpsertError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cadets[cadet.EnrollmentID]; ok {
		return false, nil
	}
	s.cadets[cadet.EnrollmentID] = cadet
	return true, nil
}

func (s *CadetStore) Get(_ context.Context, enrollmentID string) (*database.Cadet, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cadet, ok := s.cadets[enrollmentID]
	if !ok {
		return nil, nil
	}
	return &cadet, nil
}

func (s *CadetStore) List(_ context.Context) ([]database.Cadet, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cadets := make([]database.Cadet, 0, len(s.cadets))
	for _, c := range s.cadets {
		cadets = append(cadets, c)
	}
	sort.Slice(cadets, func(i, j int) bool {
		return cadets[i].EnrollmentID < cadets[j].EnrollmentID
	})
	return cadets, nil
}

func (s *CadetStore) Count(_ context.Context) (int, error) {
	if s.ListError != nil {
		return 0, s.ListError
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cadets), nil
}

// EventStore is an in-memory database.EventStore.
type EventStore struct {
	mu     sync.Mutex
	events map[string]database.Event

	// Attendance, when set, fills AttendanceCount on reads.
	Attendance *AttendanceStore

	CreateError error
	GetError    error
	ListError   error
}

func NewEventStore() *EventStore {
	return &EventStore{events: map[string]database.Event{}}
}

func (s *EventStore) Create(_ context.Context, event database.Event) error {
	if s.CreateError != nil {
		return s.CreateError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.EventID]; ok {
		return fmt.Errorf("event %s already exists", event.EventID)
	}
	s.events[event.EventID] = event
	return nil
}

func (s *EventStore) Get(_ context.Context, eventID string) (*database.Event, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, nil
	}
	event.AttendanceCount = s.attendanceCount(eventID)
	return &event, nil
}

func (s *EventStore) CurrentActive(_ context.Context, date string) (*database.Event, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.currentActiveLocked(date)
	if event == nil {
		return nil, nil
	}
	found := *event
	found.AttendanceCount = s.attendanceCount(found.EventID)
	return &found, nil
}

func (s *EventStore) EndCurrent(_ context.Context, date string) (*database.Event, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.currentActiveLocked(date)
	if event == nil {
		return nil, nil
	}
	ended := *event
	ended.Status = database.EventStatusEnded
	s.events[ended.EventID] = ended
	return &ended, nil
}

func (s *EventStore) List(_ context.Context, limit int) ([]database.Event, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]database.Event, 0, len(s.events))
	for _, e := range s.events {
		e.AttendanceCount = s.attendanceCount(e.EventID)
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Exists reports whether the event id is known. Used by the attendance
// mock to mimic the foreign key.
func (s *EventStore) Exists(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[eventID]
	return ok
}

func (s *EventStore) currentActiveLocked(date string) *database.Event {
	var found *database.Event
	for id := range s.events {
		e := s.events[id]
		if e.Status != database.EventStatusActive || e.Date != date {
			continue
		}
		if found == nil || e.CreatedAt.After(found.CreatedAt) {
			found = &e
		}
	}
	return found
}

func (s *EventStore) attendanceCount(eventID string) int {
	if s.Attendance == nil {
		return 0
	}
	logs, err := s.Attendance.ForEvent(context.Background(), eventID)
	if err != nil {
		return 0
	}
	return len(logs)
}

// AttendanceStore is an in-memory database.AttendanceStore. When Events
// is set, Log enforces the event foreign key the way PostgreSQL does.
type AttendanceStore struct {
	mu     sync.Mutex
	logs   []database.AttendanceLog
	nextID int64

	Events *EventStore

	LogError  error
	ListError error
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{nextID: 1}
}

func (s *AttendanceStore) Log(_ context.Context, entry database.AttendanceLog) (bool, error) {
	if s.LogError != nil {
		return false, s.LogError
	}
	if s.Events != nil && !s.Events.Exists(entry.EventID) {
		return false, fmt.Errorf("event %s does not exist", entry.EventID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.logs {
		if l.EventID == entry.EventID && l.EnrollmentID == entry.EnrollmentID {
			return false, nil
		}
	}

	entry.ID = s.nextID
	s.nextID++
	s.logs = append(s.logs, entry)
	return true, nil
}

func (s *AttendanceStore) ForEvent(_ context.Context, eventID string) ([]database.AttendanceLog, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []database.AttendanceLog
	for _, l := range s.logs {
		if l.EventID == eventID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (s *AttendanceStore) NonPresentForEvent(_ context.Context, eventID string) ([]database.AttendanceLog, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []database.AttendanceLog
	for _, l := range s.logs {
		if l.EventID == eventID && l.Status != database.StatusPresent {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (s *AttendanceStore) All(_ context.Context) ([]database.AttendanceLog, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.AttendanceLog{}, s.logs...), nil
}

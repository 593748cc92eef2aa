package models

import "time"

// FacultyScheduleEntry is a recurring weekly class imported from the faculty
// timetable export. Entries are replaced wholesale on re-import and are
// read-only to the composer.
//
// Slots are stored as minute columns so override matching is a plain composite
// equality on (lab_id, day_of_week, start_minute, end_minute).
type FacultyScheduleEntry struct {
	ID          string    `db:"id" json:"id"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	StartMinute int       `db:"start_minute" json:"start_minute"`
	EndMinute   int       `db:"end_minute" json:"end_minute"`
	// OriginalSlotText preserves the unsplit source interval when the import
	// narrows a class (e.g. "12.30 - 15.00" recorded as 12.30 - 14.10).
	OriginalSlotText string    `db:"original_slot_text" json:"original_slot_text,omitempty"`
	LabID            string    `db:"lab_id" json:"lab_id"`
	LabName          string    `db:"lab_name" json:"lab_name"`
	Subject          string    `db:"subject" json:"subject"`
	Lecturer         string    `db:"lecturer" json:"lecturer"`
	ClassName        string    `db:"class_name" json:"class_name"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Interval returns the entry's time slot.
func (e FacultyScheduleEntry) Interval() TimeInterval {
	return TimeInterval{StartMinute: e.StartMinute, EndMinute: e.EndMinute}
}

// FacultyScheduleFilter narrows faculty entries for listing.
type FacultyScheduleFilter struct {
	DayOfWeek string
	LabID     string
}

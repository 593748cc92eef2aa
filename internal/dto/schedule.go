package dto

import (
	"time"

	"github.com/laboserve/laboserve-api/internal/models"
)

// ScheduleItemKind tags the originating source of a composed item.
type ScheduleItemKind string

const (
	KindFaculty     ScheduleItemKind = "faculty"
	KindReservation ScheduleItemKind = "reservation"
)

// ScheduleItem is one occupancy entry in the composed timetable, either
// faculty-derived or reservation-derived.
type ScheduleItem struct {
	ID        string              `json:"id"`
	Kind      ScheduleItemKind    `json:"kind"`
	Day       string              `json:"day"`
	Slot      models.TimeInterval `json:"slot"`
	SlotText  string              `json:"slot_text"`
	LabID     string              `json:"lab_id"`
	LabName   string              `json:"lab_name"`
	Subject   string              `json:"subject"`
	Lecturer  string              `json:"lecturer"`
	ClassName string              `json:"class_name"`
	UserName  string              `json:"user_name,omitempty"`
	Category  string              `json:"category,omitempty"`
	Date      *time.Time          `json:"date,omitempty"`
}

// ScheduleFilter carries the view filters applied after composition.
type ScheduleFilter struct {
	Search  string
	Program string
	LabID   string
}

// AvailableLabel is rendered in empty timetable cells.
const AvailableLabel = "TERSEDIA"

// GridCell is one (day, lab, display-slot) cell of the timetable grid. Items
// is empty for an available cell; more than one item may stack in a cell.
type GridCell struct {
	Slot      models.TimeInterval `json:"slot"`
	SlotText  string              `json:"slot_text"`
	Available bool                `json:"available"`
	Label     string              `json:"label,omitempty"`
	Items     []ScheduleItem      `json:"items,omitempty"`
}

// DayGrid groups grid cells per lab for a single day column.
type DayGrid struct {
	Day   string                `json:"day"`
	Cells map[string][]GridCell `json:"cells"` // keyed by lab id
}

// BookedSlot marks one entry of the booking form's fixed slot menu.
type BookedSlot struct {
	Slot     models.TimeInterval `json:"slot"`
	SlotText string              `json:"slot_text"`
	Booked   bool                `json:"booked"`
}

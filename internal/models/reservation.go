package models

import (
	"fmt"
	"time"
)

// ReservationStatus tracks the booking lifecycle: pending is initial,
// approved and rejected are terminal.
type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationApproved ReservationStatus = "approved"
	ReservationRejected ReservationStatus = "rejected"
)

// ActivityType distinguishes academic from non-academic bookings.
type ActivityType string

const (
	ActivityAkademik    ActivityType = "akademik"
	ActivityNonAkademik ActivityType = "non-akademik"
)

// ReservationCategory enumerates the booking form categories.
type ReservationCategory string

const (
	CategoryKelasPengganti      ReservationCategory = "kelas-pengganti"
	CategoryPraktikum           ReservationCategory = "praktikum"
	CategoryKegiatanOrganisasi  ReservationCategory = "kegiatan-organisasi"
	CategoryLainnya             ReservationCategory = "lainnya"
)

// IsValidCategory reports whether the category is one of the form options.
func IsValidCategory(c ReservationCategory) bool {
	switch c {
	case CategoryKelasPengganti, CategoryPraktikum, CategoryKegiatanOrganisasi, CategoryLainnya:
		return true
	}
	return false
}

// Reservation is an ad-hoc booking anchored to one calendar date. Only
// approved reservations count toward occupancy. LecturerName and CourseName
// are present iff the category is kelas-pengganti.
type Reservation struct {
	ID                string              `db:"id" json:"id"`
	LabID             string              `db:"lab_id" json:"lab_id"`
	LabName           string              `db:"lab_name" json:"lab_name"`
	UserID            string              `db:"user_id" json:"user_id"`
	UserName          string              `db:"user_name" json:"user_name"`
	Date              time.Time           `db:"date" json:"date"`
	StartMinute       int                 `db:"start_minute" json:"start_minute"`
	EndMinute         int                 `db:"end_minute" json:"end_minute"`
	ActivityType      ActivityType        `db:"activity_type" json:"activity_type"`
	Category          ReservationCategory `db:"category" json:"category"`
	LecturerName      *string             `db:"lecturer_name" json:"lecturer_name,omitempty"`
	CourseName        *string             `db:"course_name" json:"course_name,omitempty"`
	Description       string              `db:"description" json:"description"`
	SupportingFileRef *string             `db:"supporting_file_ref" json:"supporting_file_ref,omitempty"`
	Status            ReservationStatus   `db:"status" json:"status"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

// Interval returns the reservation's time slot.
func (r Reservation) Interval() TimeInterval {
	return TimeInterval{StartMinute: r.StartMinute, EndMinute: r.EndMinute}
}

// ReservationFilter narrows reservation listings.
type ReservationFilter struct {
	LabID    string
	UserID   string
	Status   ReservationStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// SlotConflictError is returned when an approval or submission targets a slot
// already occupied by an approved reservation.
type SlotConflictError struct {
	LabID    string       `json:"lab_id"`
	Date     time.Time    `json:"date"`
	Slot     TimeInterval `json:"slot"`
	Existing Reservation  `json:"existing"`
}

// Error implements the error interface.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("slot %s on %s already reserved by %s (reservation %s)",
		e.Slot, e.Date.Format("2006-01-02"), e.Existing.UserName, e.Existing.ID)
}

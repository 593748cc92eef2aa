package models

import "time"

// OverrideType is the kind of schedule override an administrator issued.
type OverrideType string

const (
	OverrideCancel     OverrideType = "cancel"
	OverrideReschedule OverrideType = "reschedule"
)

// ScheduleOverride alters one faculty entry's occurrence on one calendar
// date. It references that occurrence by value equality on
// (lab_id, slot, day-of-week-of-date), not by a foreign key, so editing the
// faculty entry after the fact does not silently retarget the override.
// NewDate and new slot minutes are present iff Type is reschedule.
// Overrides are hard-deleted; there is no update-in-place.
type ScheduleOverride struct {
	ID             string       `db:"id" json:"id"`
	Type           OverrideType `db:"type" json:"type"`
	Date           time.Time    `db:"date" json:"date"`
	StartMinute    int          `db:"start_minute" json:"start_minute"`
	EndMinute      int          `db:"end_minute" json:"end_minute"`
	LabID          string       `db:"lab_id" json:"lab_id"`
	LabName        string       `db:"lab_name" json:"lab_name"`
	Reason         string       `db:"reason" json:"reason"`
	NewDate        *time.Time   `db:"new_date" json:"new_date,omitempty"`
	NewStartMinute *int         `db:"new_start_minute" json:"new_start_minute,omitempty"`
	NewEndMinute   *int         `db:"new_end_minute" json:"new_end_minute,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// Interval returns the original slot targeted by the override.
func (o ScheduleOverride) Interval() TimeInterval {
	return TimeInterval{StartMinute: o.StartMinute, EndMinute: o.EndMinute}
}

// NewInterval returns the rescheduled slot. Only meaningful when Type is
// reschedule and both minute fields are set.
func (o ScheduleOverride) NewInterval() (TimeInterval, bool) {
	if o.NewStartMinute == nil || o.NewEndMinute == nil {
		return TimeInterval{}, false
	}
	return TimeInterval{StartMinute: *o.NewStartMinute, EndMinute: *o.NewEndMinute}, true
}

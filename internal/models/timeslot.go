package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeInterval is a half-open range of minutes since midnight. Back-to-back
// intervals (a.End == b.Start) do not overlap.
type TimeInterval struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Overlaps reports whether two half-open intervals intersect.
func (t TimeInterval) Overlaps(other TimeInterval) bool {
	return t.StartMinute < other.EndMinute && other.StartMinute < t.EndMinute
}

// String renders the interval in the portal's "HH.mm - HH.mm" form.
func (t TimeInterval) String() string {
	return fmt.Sprintf("%s - %s", formatMinutes(t.StartMinute), formatMinutes(t.EndMinute))
}

// IsZero reports whether the interval is unset.
func (t TimeInterval) IsZero() bool {
	return t.StartMinute == 0 && t.EndMinute == 0
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d.%02d", m/60, m%60)
}

// ParseTimeRange parses a "HH.mm - HH.mm" token pair as entered throughout the
// timetable exports. Spacing around the dash is irregular in practice and is
// tolerated. The minute part defaults to 0 when absent. A non-numeric hour is
// a parse error, never a zero interval.
func ParseTimeRange(text string) (TimeInterval, error) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return TimeInterval{}, fmt.Errorf("parse time range %q: expected two tokens separated by '-'", text)
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return TimeInterval{}, fmt.Errorf("parse time range %q: %w", text, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return TimeInterval{}, fmt.Errorf("parse time range %q: %w", text, err)
	}

	if start >= end {
		return TimeInterval{}, fmt.Errorf("parse time range %q: start must precede end", text)
	}
	return TimeInterval{StartMinute: start, EndMinute: end}, nil
}

func parseClock(token string) (int, error) {
	token = strings.TrimSpace(token)
	hourPart := token
	minutePart := "0"
	if idx := strings.Index(token, "."); idx >= 0 {
		hourPart = strings.TrimSpace(token[:idx])
		minutePart = strings.TrimSpace(token[idx+1:])
		if minutePart == "" {
			minutePart = "0"
		}
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q", hourPart)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, fmt.Errorf("invalid minute %q", minutePart)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", token)
	}
	return hour*60 + minute, nil
}

// Uppercase Indonesian day names, as stored by the faculty timetable import.
const (
	DayMinggu = "MINGGU"
	DaySenin  = "SENIN"
	DaySelasa = "SELASA"
	DayRabu   = "RABU"
	DayKamis  = "KAMIS"
	DayJumat  = "JUMAT"
	DaySabtu  = "SABTU"
)

var dayNames = [7]string{DayMinggu, DaySenin, DaySelasa, DayRabu, DayKamis, DayJumat, DaySabtu}

// DayOfWeek returns the portal's uppercase day name for a calendar date. It is
// always recomputed from the date rather than trusted from a stored field.
func DayOfWeek(date time.Time) string {
	return dayNames[int(date.Weekday())]
}

// IsValidDayName reports whether the given uppercase day name is known.
func IsValidDayName(name string) bool {
	for _, d := range dayNames {
		if d == name {
			return true
		}
	}
	return false
}

// BookingSlots is the fixed four-slot menu offered on the reservation form.
var BookingSlots = []TimeInterval{
	{StartMinute: 450, EndMinute: 600},  // 07.30 - 10.00
	{StartMinute: 600, EndMinute: 750},  // 10.00 - 12.30
	{StartMinute: 750, EndMinute: 900},  // 12.30 - 15.00
	{StartMinute: 900, EndMinute: 1080}, // 15.00 - 18.00
}

// DailyBookingCapacity is the number of approved reservations after which a
// lab counts as fully booked for the day.
const DailyBookingCapacity = 4

// DisplaySlots holds the hand-authored timetable grid boundaries per day.
// Wednesday and Friday carry extra split slots for classes shorter than the
// standard block; an item is rendered in every cell its interval overlaps.
var DisplaySlots = map[string][]TimeInterval{
	DaySenin: {
		{StartMinute: 450, EndMinute: 600},
		{StartMinute: 600, EndMinute: 750},
		{StartMinute: 750, EndMinute: 900},
		{StartMinute: 900, EndMinute: 1050},
	},
	DaySelasa: {
		{StartMinute: 450, EndMinute: 600},
		{StartMinute: 600, EndMinute: 750},
		{StartMinute: 750, EndMinute: 900},
		{StartMinute: 900, EndMinute: 1050},
	},
	DayRabu: {
		{StartMinute: 450, EndMinute: 600},
		{StartMinute: 600, EndMinute: 750},
		{StartMinute: 750, EndMinute: 850}, // 12.30 - 14.10
		{StartMinute: 850, EndMinute: 900}, // 14.10 - 15.00
		{StartMinute: 900, EndMinute: 1050},
	},
	DayKamis: {
		{StartMinute: 450, EndMinute: 600},
		{StartMinute: 600, EndMinute: 750},
		{StartMinute: 750, EndMinute: 900},
		{StartMinute: 900, EndMinute: 1050},
	},
	DayJumat: {
		{StartMinute: 450, EndMinute: 600},
		{StartMinute: 600, EndMinute: 750},
		{StartMinute: 780, EndMinute: 880}, // 13.00 - 14.40
		{StartMinute: 880, EndMinute: 930}, // 14.40 - 15.30
	},
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/dto"
	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type facultyScheduleReader interface {
	List(ctx context.Context, filter models.FacultyScheduleFilter) ([]models.FacultyScheduleEntry, error)
}

type approvedReservationReader interface {
	ListApproved(ctx context.Context, labID string, from, to time.Time) ([]models.Reservation, error)
}

type overrideReader interface {
	List(ctx context.Context, from, to *time.Time) ([]models.ScheduleOverride, error)
}

type labReader interface {
	List(ctx context.Context) ([]models.Lab, error)
}

// Synthetic item constants for rescheduled classes.
const (
	rescheduledSubject  = "Jadwal Dipindahkan"
	rescheduledUserName = "Admin"
	rescheduledCategory = "Reschedule"
)

// ScheduleService merges the recurring faculty timetable, approved
// reservations and admin overrides into one occupancy view. Sources are
// loaded per request; composition happens in memory.
type ScheduleService struct {
	faculty      facultyScheduleReader
	reservations approvedReservationReader
	overrides    overrideReader
	labs         labReader
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(faculty facultyScheduleReader, reservations approvedReservationReader, overrides overrideReader, labs labReader, cache *CacheService, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		faculty:      faculty,
		reservations: reservations,
		overrides:    overrides,
		labs:         labs,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

// weekRange returns the Monday and Sunday of the week containing the given
// instant, truncated to calendar dates.
func weekRange(at time.Time) (time.Time, time.Time) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// scopeDates resolves the composition window. A nil date means the current
// Monday to Sunday week.
func (s *ScheduleService) scopeDates(date *time.Time) []time.Time {
	if date != nil {
		d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		return []time.Time{d}
	}
	monday, _ := weekRange(s.now())
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// Compose returns the merged occupancy entries for one date or, when date is
// nil, the current week. Cancel overrides suppress the matched faculty
// occurrence; reschedule overrides add a synthetic entry at the new slot
// without touching the original. No deduplication is attempted across
// sources.
func (s *ScheduleService) Compose(ctx context.Context, date *time.Time, filter dto.ScheduleFilter) ([]dto.ScheduleItem, error) {
	dates := s.scopeDates(date)
	from, to := dates[0], dates[len(dates)-1]

	cacheKey := ""
	if date == nil && filter == (dto.ScheduleFilter{}) {
		cacheKey = fmt.Sprintf("schedule:week:%s", from.Format("2006-01-02"))
		var cached []dto.ScheduleItem
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	entries, err := s.faculty.List(ctx, models.FacultyScheduleFilter{LabID: filter.LabID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty schedules")
	}
	reservations, err := s.reservations.ListApproved(ctx, filter.LabID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservations")
	}
	overrides, err := s.overrides.List(ctx, &from, &to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overrides")
	}

	daysInScope := make(map[string]bool, len(dates))
	for _, d := range dates {
		daysInScope[models.DayOfWeek(d)] = true
	}

	// Cancellations match the faculty occurrence by value, not by id.
	type occurrenceKey struct {
		day   string
		labID string
		slot  models.TimeInterval
	}
	cancelled := make(map[occurrenceKey]bool)
	for _, ov := range overrides {
		if ov.Type != models.OverrideCancel {
			continue
		}
		if ov.Date.Before(from) || ov.Date.After(to) {
			continue
		}
		cancelled[occurrenceKey{day: models.DayOfWeek(ov.Date), labID: ov.LabID, slot: ov.Interval()}] = true
	}

	var items []dto.ScheduleItem
	for _, entry := range entries {
		if !daysInScope[entry.DayOfWeek] {
			continue
		}
		if cancelled[occurrenceKey{day: entry.DayOfWeek, labID: entry.LabID, slot: entry.Interval()}] {
			continue
		}
		slotText := entry.OriginalSlotText
		if slotText == "" {
			slotText = entry.Interval().String()
		}
		items = append(items, dto.ScheduleItem{
			ID:        entry.ID,
			Kind:      dto.KindFaculty,
			Day:       entry.DayOfWeek,
			Slot:      entry.Interval(),
			SlotText:  slotText,
			LabID:     entry.LabID,
			LabName:   entry.LabName,
			Subject:   entry.Subject,
			Lecturer:  entry.Lecturer,
			ClassName: entry.ClassName,
		})
	}

	for _, res := range reservations {
		res := res
		subject := res.Description
		if res.CourseName != nil && *res.CourseName != "" {
			subject = *res.CourseName
		}
		if subject == "" {
			subject = "Reservasi"
		}
		lecturer := res.UserName
		if res.LecturerName != nil && *res.LecturerName != "" {
			lecturer = *res.LecturerName
		}
		items = append(items, dto.ScheduleItem{
			ID:       res.ID,
			Kind:     dto.KindReservation,
			Day:      models.DayOfWeek(res.Date),
			Slot:     res.Interval(),
			SlotText: res.Interval().String(),
			LabID:    res.LabID,
			LabName:  res.LabName,
			Subject:  subject,
			Lecturer: lecturer,
			UserName: res.UserName,
			Category: string(res.Category),
			Date:     &res.Date,
		})
	}

	for _, ov := range overrides {
		ov := ov
		if ov.Type != models.OverrideReschedule || ov.NewDate == nil {
			continue
		}
		if ov.NewDate.Before(from) || ov.NewDate.After(to) {
			continue
		}
		slot, ok := ov.NewInterval()
		if !ok {
			s.logger.Warn("reschedule override missing new slot", zap.String("override_id", ov.ID))
			continue
		}
		if filter.LabID != "" && ov.LabID != filter.LabID {
			continue
		}
		items = append(items, dto.ScheduleItem{
			ID:       ov.ID,
			Kind:     dto.KindReservation,
			Day:      models.DayOfWeek(*ov.NewDate),
			Slot:     slot,
			SlotText: slot.String(),
			LabID:    ov.LabID,
			LabName:  ov.LabName,
			Subject:  rescheduledSubject,
			UserName: rescheduledUserName,
			Category: rescheduledCategory,
			Date:     ov.NewDate,
		})
	}

	items = applyScheduleFilter(items, filter)
	sortScheduleItems(items)

	if cacheKey != "" {
		_ = s.cache.Set(ctx, cacheKey, items, 0)
	}
	return items, nil
}

// Grid renders the weekly timetable grid: one column per day carrying that
// day's display slots, cells keyed by lab. An item lands in every cell its
// interval overlaps; an untouched cell is available.
func (s *ScheduleService) Grid(ctx context.Context, filter dto.ScheduleFilter) ([]dto.DayGrid, error) {
	items, err := s.Compose(ctx, nil, filter)
	if err != nil {
		return nil, err
	}
	labs, err := s.labs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load labs")
	}

	byDay := make(map[string][]dto.ScheduleItem)
	for _, item := range items {
		byDay[item.Day] = append(byDay[item.Day], item)
	}

	gridDays := []string{models.DaySenin, models.DaySelasa, models.DayRabu, models.DayKamis, models.DayJumat}
	grids := make([]dto.DayGrid, 0, len(gridDays))
	for _, day := range gridDays {
		slots := models.DisplaySlots[day]
		cells := make(map[string][]dto.GridCell, len(labs))
		for _, lab := range labs {
			if filter.LabID != "" && lab.ID != filter.LabID {
				continue
			}
			column := make([]dto.GridCell, 0, len(slots))
			for _, slot := range slots {
				cell := dto.GridCell{Slot: slot, SlotText: slot.String()}
				for _, item := range byDay[day] {
					if item.LabID == lab.ID && item.Slot.Overlaps(slot) {
						cell.Items = append(cell.Items, item)
					}
				}
				if len(cell.Items) == 0 {
					cell.Available = true
					cell.Label = dto.AvailableLabel
				}
				column = append(column, cell)
			}
			cells[lab.ID] = column
		}
		grids = append(grids, dto.DayGrid{Day: day, Cells: cells})
	}
	return grids, nil
}

func applyScheduleFilter(items []dto.ScheduleItem, filter dto.ScheduleFilter) []dto.ScheduleItem {
	if filter.Search == "" && filter.Program == "" {
		return items
	}
	search := strings.ToLower(filter.Search)
	program := strings.ToUpper(filter.Program)

	filtered := items[:0]
	for _, item := range items {
		if search != "" {
			haystack := strings.ToLower(strings.Join([]string{item.Subject, item.Lecturer, item.ClassName, item.UserName, item.LabName}, " "))
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		if program != "" && !strings.HasPrefix(strings.ToUpper(item.ClassName), program) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

var dayOrder = map[string]int{
	models.DaySenin:  0,
	models.DaySelasa: 1,
	models.DayRabu:   2,
	models.DayKamis:  3,
	models.DayJumat:  4,
	models.DaySabtu:  5,
	models.DayMinggu: 6,
}

func sortScheduleItems(items []dto.ScheduleItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if dayOrder[items[i].Day] != dayOrder[items[j].Day] {
			return dayOrder[items[i].Day] < dayOrder[items[j].Day]
		}
		if items[i].Slot.StartMinute != items[j].Slot.StartMinute {
			return items[i].Slot.StartMinute < items[j].Slot.StartMinute
		}
		return items[i].LabName < items[j].LabName
	})
}

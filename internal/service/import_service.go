package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type facultyScheduleWriter interface {
	ReplaceAll(ctx context.Context, entries []models.FacultyScheduleEntry) error
}

// ImportReport summarises one timetable import run.
type ImportReport struct {
	RowsTotal   int `json:"rows_total"`
	RowsSkipped int `json:"rows_skipped"`
	Entries     int `json:"entries"`
}

// cellPattern matches "IF - 1A (Oman Komarudin) PENGENALAN PEMROGRAMAN".
var cellPattern = regexp.MustCompile(`^(.+?)\s*\((.+?)\)\s*(.+)$`)

// ParsedCell is one decoded timetable cell.
type ParsedCell struct {
	ClassName string
	Lecturer  string
	Subject   string
}

// ParseCell decodes a timetable cell. Empty and "null" cells mean no class.
// A cell that does not match the class-lecturer-subject pattern is kept as a
// bare subject rather than dropped.
func ParseCell(text string) (ParsedCell, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return ParsedCell{}, false
	}
	if match := cellPattern.FindStringSubmatch(trimmed); match != nil {
		return ParsedCell{
			ClassName: strings.TrimSpace(match[1]),
			Lecturer:  strings.TrimSpace(match[2]),
			Subject:   strings.TrimSpace(match[3]),
		}, true
	}
	return ParsedCell{Subject: trimmed}, true
}

// ImportService loads the faculty timetable from the semicolon-delimited
// faculty export. Layout: No; Hari; Jam; then one column per lab.
type ImportService struct {
	schedules facultyScheduleWriter
	labs      labReader
	audit     auditWriter
	cache     *CacheService
	logger    *zap.Logger
}

// NewImportService instantiates ImportService.
func NewImportService(schedules facultyScheduleWriter, labs labReader, audit auditWriter, cache *CacheService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{schedules: schedules, labs: labs, audit: audit, cache: cache, logger: logger}
}

// Parse reads the CSV and returns timetable entries. Rows whose time range
// does not parse are logged and skipped; the import is partial-success, not
// all-or-nothing.
func (s *ImportService) Parse(ctx context.Context, r io.Reader) ([]models.FacultyScheduleEntry, *ImportReport, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "failed to read csv header")
	}
	if len(header) < 4 {
		return nil, nil, appErrors.Clone(appErrors.ErrParse, "csv header must carry No, Hari, Jam and at least one lab column")
	}

	labs, err := s.labs.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load labs")
	}
	labColumns := resolveLabColumns(header[3:], labs)
	for i, lab := range labColumns {
		if lab == nil {
			s.logger.Warn("unknown lab column, skipping", zap.String("header", header[3+i]))
		}
	}

	report := &ImportReport{}
	var entries []models.FacultyScheduleEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "failed to read csv row")
		}
		if len(record) < 4 || strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}
		report.RowsTotal++

		day := strings.ToUpper(strings.TrimSpace(record[1]))
		if !models.IsValidDayName(day) {
			s.logger.Warn("skipping row with unknown day", zap.String("day", record[1]))
			report.RowsSkipped++
			continue
		}
		slotText := strings.TrimSpace(record[2])
		slot, err := models.ParseTimeRange(slotText)
		if err != nil {
			s.logger.Warn("skipping row with invalid time range", zap.String("time", slotText), zap.Error(err))
			report.RowsSkipped++
			continue
		}

		for i, lab := range labColumns {
			if lab == nil || 3+i >= len(record) {
				continue
			}
			cell, ok := ParseCell(record[3+i])
			if !ok {
				continue
			}
			entrySlot, entrySlotText := adjustSlot(day, slot, slotText, cell.Subject)
			entries = append(entries, models.FacultyScheduleEntry{
				DayOfWeek:        day,
				StartMinute:      entrySlot.StartMinute,
				EndMinute:        entrySlot.EndMinute,
				OriginalSlotText: entrySlotText,
				LabID:            lab.ID,
				LabName:          lab.Name,
				Subject:          cell.Subject,
				Lecturer:         cell.Lecturer,
				ClassName:        cell.ClassName,
			})
		}
	}

	report.Entries = len(entries)
	return entries, report, nil
}

// Import parses and full-replaces the stored timetable in one transaction.
func (s *ImportService) Import(ctx context.Context, actorID string, r io.Reader) (*ImportReport, error) {
	entries, report, err := s.Parse(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.ReplaceAll(ctx, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace faculty schedules")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "schedule:*")
	}
	s.writeAudit(ctx, actorID, report)
	s.logger.Info("faculty timetable imported",
		zap.Int("rows", report.RowsTotal),
		zap.Int("skipped", report.RowsSkipped),
		zap.Int("entries", report.Entries))
	return report, nil
}

// adjustSlot narrows the Wednesday culture class to its actual duration while
// preserving the source slot text. The grid carries a matching split cell.
func adjustSlot(day string, slot models.TimeInterval, slotText, subject string) (models.TimeInterval, string) {
	if day == models.DayRabu && slotText == "12.30 - 15.00" && strings.Contains(subject, "Budaya Bangsa") {
		return models.TimeInterval{StartMinute: 750, EndMinute: 850}, slotText
	}
	return slot, slotText
}

// resolveLabColumns maps CSV lab headers onto stored labs, tolerating the
// export's inconsistent casing and spacing ("Lab dasar 1", "lab dasar2").
func resolveLabColumns(headers []string, labs []models.Lab) []*models.Lab {
	columns := make([]*models.Lab, len(headers))
	for i, header := range headers {
		key := normalizeLabName(header)
		for j := range labs {
			if normalizeLabName(labs[j].Name) == key {
				columns[i] = &labs[j]
				break
			}
		}
	}
	return columns
}

func normalizeLabName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "")
}

func (s *ImportService) writeAudit(ctx context.Context, actorID string, report *ImportReport) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		payload = nil
	}
	entry := &models.AuditLog{
		Action:    models.AuditActionScheduleImport,
		Resource:  "faculty_schedule",
		NewValues: payload,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
)

func TestParseCell(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		want ParsedCell
		ok   bool
	}{
		{
			name: "full pattern",
			text: "IF - 1A (Oman Komarudin) PENGENALAN PEMROGRAMAN",
			want: ParsedCell{ClassName: "IF - 1A", Lecturer: "Oman Komarudin", Subject: "PENGENALAN PEMROGRAMAN"},
			ok:   true,
		},
		{
			name: "multi word subject",
			text: "SI - 5A (H. Bagja Nugraha) Perencanaan Strategi Sistem Informasi",
			want: ParsedCell{ClassName: "SI - 5A", Lecturer: "H. Bagja Nugraha", Subject: "Perencanaan Strategi Sistem Informasi"},
			ok:   true,
		},
		{
			name: "bare subject fallback",
			text: "RAPAT KOORDINASI",
			want: ParsedCell{Subject: "RAPAT KOORDINASI"},
			ok:   true,
		},
		{name: "empty", text: "", ok: false},
		{name: "whitespace", text: "   ", ok: false},
		{name: "null literal", text: "null", ok: false},
		{name: "null uppercase", text: " NULL ", ok: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCell(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

type captureScheduleWriter struct {
	replaced []models.FacultyScheduleEntry
	err      error
}

func (c *captureScheduleWriter) ReplaceAll(ctx context.Context, entries []models.FacultyScheduleEntry) error {
	if c.err != nil {
		return c.err
	}
	c.replaced = entries
	return nil
}

var importLabs = &stubLabReader{labs: []models.Lab{
	{ID: "lab-dasar-1", Name: "Lab Dasar 1"},
	{ID: "lab-dasar-2", Name: "Lab Dasar 2"},
	{ID: "lab-lanjut-1", Name: "Lab Lanjut 1"},
	{ID: "lab-lanjut-2", Name: "Lab Lanjut 2"},
}}

const importHeader = "No;Hari;Jam;Lab dasar 1;lab dasar2;lab lanjut 1;lab lanjut 2\n"

func newImportService(writer *captureScheduleWriter) *ImportService {
	return NewImportService(writer, importLabs, &mockAuditWriter{}, nil, zap.NewNop())
}

func TestImportParsesRows(t *testing.T) {
	csv := importHeader +
		"1;SENIN;07.30 - 10.00;IF - 1A (Oman Komarudin) PENGENALAN PEMROGRAMAN;null;;SI - 5A (H. Bagja Nugraha) Perencanaan Strategi Sistem Informasi\n"
	svc := newImportService(&captureScheduleWriter{})

	entries, report, err := svc.Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.RowsTotal)
	assert.Equal(t, 0, report.RowsSkipped)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, models.DaySenin, first.DayOfWeek)
	assert.Equal(t, models.TimeInterval{StartMinute: 450, EndMinute: 600}, first.Interval())
	assert.Equal(t, "07.30 - 10.00", first.OriginalSlotText)
	assert.Equal(t, "lab-dasar-1", first.LabID)
	assert.Equal(t, "PENGENALAN PEMROGRAMAN", first.Subject)

	second := entries[1]
	assert.Equal(t, "lab-lanjut-2", second.LabID)
	assert.Equal(t, "H. Bagja Nugraha", second.Lecturer)
}

func TestImportSkipsUnparseableRows(t *testing.T) {
	csv := importHeader +
		"1;SENIN;bukan jam;IF - 1A (Oman Komarudin) PENGENALAN PEMROGRAMAN;;;\n" +
		"2;HARI ANEH;07.30 - 10.00;IF - 1A (Oman Komarudin) PENGENALAN PEMROGRAMAN;;;\n" +
		"3;SELASA;10.00 - 12.30;IF - 2A (Dosen Lain) BASIS DATA;;;\n"
	svc := newImportService(&captureScheduleWriter{})

	entries, report, err := svc.Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, report.RowsTotal)
	assert.Equal(t, 2, report.RowsSkipped)
	require.Len(t, entries, 1)
	assert.Equal(t, models.DaySelasa, entries[0].DayOfWeek)
}

func TestImportNarrowsWednesdayCultureClass(t *testing.T) {
	csv := importHeader +
		"1;RABU;12.30 - 15.00;IF - 1B (Tim Dosen) Pendidikan Budaya Bangsa;;;\n"
	svc := newImportService(&captureScheduleWriter{})

	entries, _, err := svc.Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TimeInterval{StartMinute: 750, EndMinute: 850}, entries[0].Interval())
	assert.Equal(t, "12.30 - 15.00", entries[0].OriginalSlotText)
}

func TestImportReplacesAtomically(t *testing.T) {
	writer := &captureScheduleWriter{}
	svc := newImportService(writer)

	csv := importHeader +
		"1;SENIN;07.30 - 10.00;IF - 1A (Oman Komarudin) PENGENALAN PEMROGRAMAN;;;\n"
	report, err := svc.Import(context.Background(), "admin-1", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entries)
	assert.Len(t, writer.replaced, 1)
}

func TestImportRejectsMissingHeader(t *testing.T) {
	svc := newImportService(&captureScheduleWriter{})

	_, _, err := svc.Parse(context.Background(), strings.NewReader("No;Hari\n"))
	require.Error(t, err)
}

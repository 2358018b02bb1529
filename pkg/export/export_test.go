package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Table{
		Columns: []Column{{Key: "name", Title: "Name"}, {Key: "enrolled"}},
		Rows:    []map[string]string{{"name": "UI/UX Design", "enrolled": "42"}, {"name": "Go, basics"}},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,enrolled", lines[0])
	assert.Equal(t, "UI/UX Design,42", lines[1])
	assert.Equal(t, `"Go, basics",`, lines[2])
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Syllabus{
		Name: "Cybersecurity 101", Category: "Technology", Enrolled: 24,
		Modules: []SyllabusModule{{Name: "Introduction", Content: "What is cybersecurity?"}, {}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))

	_, err = NewPDFExporter().Render(Syllabus{})
	assert.Error(t, err)
}

func TestICSCodecRoundTrip(t *testing.T) {
	codec := NewICSCodec("", "PeerRoom")
	day := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	body := codec.Render([]CalendarEntry{{UID: "e-1", Day: day, Title: "Call peer"}})
	assert.Contains(t, string(body), "SUMMARY:Call peer")
	assert.Contains(t, string(body), "20260215")

	entries, skipped, err := codec.Parse(body)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].UID)
	assert.Equal(t, "Call peer", entries[0].Title)
	assert.True(t, entries[0].Day.Equal(day))
}

func TestICSCodecParseTimedAndInvalid(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART:20260218T093000Z",
		"SUMMARY:Connect with mentor",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTART:20260219",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	entries, skipped, err := NewICSCodec("", "").Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-02-18", entries[0].Day.Format("2006-01-02"))

	_, _, err = NewICSCodec("", "").Parse(nil)
	assert.Error(t, err)
}

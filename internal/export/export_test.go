package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trackmytime/internal/model"
)

type names map[string]string

func (n names) ProjectName(id string) string {
	if v, ok := n[id]; ok {
		return v
	}
	return "No Project"
}

func (n names) TagNames(ids []string) []string {
	out := []string{}
	for _, id := range ids {
		if v, ok := n[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

var testNames = names{"p1": "Work, Inc.", "t1": "call", "t2": "review"}

func sample() []model.Entry {
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	return []model.Entry{
		{ID: "e1", ProjectID: "p1", TagIDs: []string{"t1", "t2"}, Notes: `said "hi"`, Start: start, End: &end, Source: model.SourceManual},
		{ID: "e2", ProjectID: "gone", Start: start.Add(26 * time.Hour), Source: model.SourceManual},
	}
}

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), testNames))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,project,tags,notes,start,end,duration_seconds", lines[0])
	assert.Equal(t, `e1,"Work, Inc.",call;review,"said ""hi""",2026-02-27T09:00:00Z,2026-02-27T10:30:00Z,5400`, lines[1])
	assert.Equal(t, "e2,No Project,,,2026-02-28T11:00:00Z,,", lines[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample(), testNames))

	var got []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Work, Inc.", got[0].Project)
	assert.Equal(t, []string{"call", "review"}, got[0].Tags)
	require.NotNil(t, got[0].DurationSeconds)
	assert.Equal(t, int64(5400), *got[0].DurationSeconds)
	assert.Nil(t, got[1].End)
	assert.Nil(t, got[1].DurationSeconds)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sample(), testNames))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0]["id"])
	assert.Equal(t, 5400, got[0]["duration_seconds"])
	assert.NotContains(t, got[1], "end")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sample(), testNames))

	want := "## 2026-02-27\n\n" +
		"- 09:00–10:30 **Work, Inc.** `call` `review` said \"hi\" (1h 30m 00s)\n" +
		"\n## 2026-02-28\n\n" +
		"- 11:00–ongoing **No Project**\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteMarkdown(&buf, nil, testNames))
	assert.Equal(t, "No entries found.\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil, testNames))
}

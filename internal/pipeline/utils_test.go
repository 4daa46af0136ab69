package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://example.test/pm/1", resolveURL("https://example.test/suche", "/pm/1"))
	assert.Equal(t, "https://other.test/x", resolveURL("https://example.test", "https://other.test/x"))
	assert.Equal(t, "", resolveURL("https://example.test", "   "))
	assert.Equal(t, "", resolveURL("://kaputt", "/pm/1"))
}

func TestIsoDateRange(t *testing.T) {
	req := FetchRequest{StartDate: "01.01.2026", EndDate: "31.01.2026"}
	start, end, err := isoDateRange(req)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", start)
	assert.Equal(t, "2026-01-31", end)

	_, _, err = isoDateRange(FetchRequest{StartDate: "2026-01-01", EndDate: "31.01.2026"})
	assert.Error(t, err)
}

func TestWithinRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, withinRange(start, start, end))
	assert.True(t, withinRange(end, start, end))
	assert.True(t, withinRange(start.AddDate(0, 0, 15), start, end))
	assert.False(t, withinRange(start.AddDate(0, 0, -1), start, end))
	assert.False(t, withinRange(end.AddDate(0, 0, 1), start, end))
}

func TestJSONFileRoundtrip(t *testing.T) {
	path := t.TempDir() + "/out.json"
	in := []NewsItem{{Title: "Eine Meldung", URL: "https://example.test"}}
	require.NoError(t, WriteJSONFile(path, in))

	var out []NewsItem
	require.NoError(t, ReadJSONFile(path, &out))
	assert.Equal(t, in, out)
}

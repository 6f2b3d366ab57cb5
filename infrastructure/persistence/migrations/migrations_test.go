package migrations

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(files, "*.sql")
	require.NoError(t, err)
	require.Len(t, names, 3)

	for _, name := range names {
		body, err := fs.ReadFile(files, name)
		require.NoError(t, err)

		text := string(body)
		up := strings.Index(text, "-- +goose Up")
		down := strings.Index(text, "-- +goose Down")
		assert.GreaterOrEqual(t, up, 0, name)
		assert.Greater(t, down, up, name)
	}
}

func TestChangeRequestStatusesMatchSchema(t *testing.T) {
	body, err := fs.ReadFile(files, "00003_create_change_requests.sql")
	require.NoError(t, err)

	for _, status := range []string{"'PENDING'", "'APPROVED'", "'REJECTED'"} {
		assert.Contains(t, string(body), status)
	}
}

func TestChangeRequestPayloadKeptVerbatim(t *testing.T) {
	body, err := fs.ReadFile(files, "00003_create_change_requests.sql")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`(?m)^\s*payload\s+JSON\s+NOT NULL`), string(body))
}

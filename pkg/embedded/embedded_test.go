package embedded

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidays_HasHeaderAndRows(t *testing.T) {
	data, err := Holidays()
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Greater(t, len(lines), 100)
	assert.Equal(t, "Data,Feriado", string(lines[0]))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("2001-01-01,")))
}

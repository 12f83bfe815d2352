package obs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"INFO":    Info,
		"":        Info,
		"warning": Warn,
		" warn ":  Warn,
		"Error":   Error,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogrusLogger_FiltersAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrusLogger(&buf, Warn, true)

	l.Logf(Info, "dropped %d", 1)
	assert.Zero(t, buf.Len())

	With(l, "conn", "abc").Logf(Error, "read failed: %s", "eof")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "read failed: eof", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "abc", entry["conn"])
}

func TestWith_NonFieldLogger(t *testing.T) {
	var l Logger = NopLogger{}
	assert.Equal(t, l, With(l, "k", "v"))
}

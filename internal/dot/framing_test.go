package dot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramed_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := []byte("a dns message, pretend")

	require.NoError(t, writeFramed(&buf, msg))
	got, err := readFramed(&buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestWriteFramed_RejectsOversizedMessage(t *testing.T) {
	var buf bytes.Buffer
	oversized := make([]byte, maxMessageSize+1)
	err := writeFramed(&buf, oversized)
	assert.Error(t, err)
}

func TestReadFramed_ShortReadIsError(t *testing.T) {
	_, err := readFramed(strings.NewReader("\x00"))
	assert.Error(t, err)
}

func TestReadFramed_RespectsLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFramed(&buf, []byte("one")))
	require.NoError(t, writeFramed(&buf, []byte("two")))

	first, err := readFramed(&buf)
	require.NoError(t, err)
	assert.Equal(t, "one", string(first))

	second, err := readFramed(&buf)
	require.NoError(t, err)
	assert.Equal(t, "two", string(second))
}

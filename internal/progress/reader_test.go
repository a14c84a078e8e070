package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReportsCumulativeBytes(t *testing.T) {
	data := strings.Repeat("x", 100)
	var events [][2]int64

	r := NewReader(iotest.OneByteReader(strings.NewReader(data)), int64(len(data)), func(loaded, total int64) {
		events = append(events, [2]int64{loaded, total})
	})

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, string(out))
	require.Len(t, events, 100)

	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev[0])
		assert.Equal(t, int64(100), ev[1])
	}
	assert.Equal(t, int64(100), r.Loaded())
}

func TestReader_ClampsToTotal(t *testing.T) {
	var last int64
	r := NewReader(bytes.NewReader(make([]byte, 50)), 10, func(loaded, total int64) {
		last = loaded
	})

	_, err := io.Copy(io.Discard, r)
	require.NoError(t, err)
	assert.Equal(t, int64(10), last)
	assert.Equal(t, int64(50), r.Loaded())
}

func TestReader_UnknownTotal(t *testing.T) {
	var totals []int64
	r := NewReader(strings.NewReader("abc"), -1, func(loaded, total int64) {
		totals = append(totals, total)
	})

	_, err := io.ReadAll(r)
	require.NoError(t, err)
	for _, total := range totals {
		assert.Equal(t, int64(-1), total)
	}
}

func TestReader_NilCallback(t *testing.T) {
	r := NewReader(strings.NewReader("hello"), 5, nil)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
	assert.Equal(t, int64(5), r.Loaded())
}

package session

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/stroke.report/internal/pose"
)

func fullLandmarks() []pose.Landmark {
	lms := make([]pose.Landmark, pose.NumLandmarks)
	for i := range lms {
		lms[i] = pose.Landmark{X: float64(i) * 0.01, Y: 0.5, Visibility: 1.0}
	}
	return lms
}

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	for ts := int64(1000); ts < 1100; ts += 33 {
		require.NoError(t, w.Write(&FrameRecord{TimestampMs: ts, Landmarks: fullLandmarks()}))
	}

	r := NewReader(&buf)
	var got []int64
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Len(t, rec.Landmarks, pose.NumLandmarks)
		got = append(got, rec.TimestampMs)
	}
	assert.Equal(t, []int64{1000, 1033, 1066, 1099}, got)
}

func TestReaderSkipsBlankLinesAndReportsLineNumbers(t *testing.T) {
	input := `{"timestamp_ms": 1000, "landmarks": []}

not json
{"timestamp_ms": 1066, "landmarks": []}
`
	r := NewReader(strings.NewReader(input))

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rec.TimestampMs)

	_, err = r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1066), rec.TimestampMs)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameRecordJoints(t *testing.T) {
	t.Run("full_set", func(t *testing.T) {
		rec := &FrameRecord{TimestampMs: 1000, Landmarks: fullLandmarks()}
		j, err := rec.Joints()
		require.NoError(t, err)
		assert.Equal(t, rec.Landmarks[pose.RightWrist], j[pose.RightWrist])
	})

	t.Run("wrong_count", func(t *testing.T) {
		rec := &FrameRecord{TimestampMs: 1000, Landmarks: fullLandmarks()[:10]}
		_, err := rec.Joints()
		assert.ErrorContains(t, err, "10 landmarks")
	})
}

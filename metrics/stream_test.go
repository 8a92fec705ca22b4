package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStreamCollector verifies frame, event, and session accounting.
func TestStreamCollector(t *testing.T) {
	c := NewStreamCollector()

	c.RecordFrame("TRADE", 40)
	c.RecordFrame("QUOTE", 52)
	c.RecordFrame("QUOTE", 52)
	c.RecordEvent()
	c.RecordEvent()
	c.RecordDrop()
	c.RecordDecodeError()
	c.RecordAck()
	c.RecordSession(true)
	c.RecordSession(true)
	c.RecordSession(false)

	m := c.GetMetrics()
	assert.Equal(t, int64(3), m["frames_received"])
	assert.Equal(t, int64(144), m["bytes_received"])
	assert.Equal(t, int64(2), m["events_delivered"])
	assert.Equal(t, int64(1), m["events_dropped"])
	assert.Equal(t, int64(1), m["decode_errors"])
	assert.Equal(t, int64(1), m["acks_received"])
	assert.Equal(t, int32(1), m["active_sessions"])
	assert.Equal(t, int64(2), m["total_sessions"])
	assert.Equal(t, map[string]int64{"TRADE": 1, "QUOTE": 2}, m["frame_counts"])
}

// TestStreamCollectorReset verifies Reset clears counters while the
// active-session gauge keeps tracking live sessions.
func TestStreamCollectorReset(t *testing.T) {
	c := NewStreamCollector()
	c.RecordFrame("TRADE", 40)
	c.RecordEvent()
	c.RecordSession(true)

	c.Reset()

	m := c.GetMetrics()
	assert.Equal(t, int64(0), m["frames_received"])
	assert.Equal(t, int64(0), m["events_delivered"])
	assert.Equal(t, int64(0), m["total_sessions"])
	assert.Empty(t, m["frame_counts"])
	assert.Equal(t, int32(1), m["active_sessions"])
}

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestRequestExporter verifies the control-socket counters in exposition
// format.
func TestRequestExporter(t *testing.T) {
	c := NewRequestCollector()
	c.RecordRequest("HIST", 64)
	c.RecordRequest("ALL_ROOTS", 32)
	c.RecordResponse(1024, 5*time.Millisecond)
	c.RecordError(true)

	expected := `
# HELP theta_request_bytes_read_total Bytes read from the control socket.
# TYPE theta_request_bytes_read_total counter
theta_request_bytes_read_total 1024
# HELP theta_request_bytes_written_total Bytes written to the control socket.
# TYPE theta_request_bytes_written_total counter
theta_request_bytes_written_total 96
# HELP theta_request_errors_total Failed control-socket requests.
# TYPE theta_request_errors_total counter
theta_request_errors_total 1
# HELP theta_request_timeouts_total Control-socket requests that hit the read deadline.
# TYPE theta_request_timeouts_total counter
theta_request_timeouts_total 1
# HELP theta_requests_by_op_total Requests by message type.
# TYPE theta_requests_by_op_total counter
theta_requests_by_op_total{op="ALL_ROOTS"} 1
theta_requests_by_op_total{op="HIST"} 1
# HELP theta_requests_sent_total Requests written to the Terminal control socket.
# TYPE theta_requests_sent_total counter
theta_requests_sent_total 2
# HELP theta_responses_received_total Responses fully read from the control socket.
# TYPE theta_responses_received_total counter
theta_responses_received_total 1
`
	require.NoError(t, testutil.CollectAndCompare(NewRequestExporter(c), strings.NewReader(expected)))
}

// TestStreamExporter verifies the stream counters and the session gauge
// in exposition format.
func TestStreamExporter(t *testing.T) {
	c := NewStreamCollector()
	c.RecordFrame("TRADE", 40)
	c.RecordFrame("QUOTE", 52)
	c.RecordFrame("QUOTE", 52)
	c.RecordEvent()
	c.RecordEvent()
	c.RecordEvent()
	c.RecordDrop()
	c.RecordDecodeError()
	c.RecordAck()
	c.RecordSession(true)
	c.RecordSession(true)
	c.RecordSession(false)

	expected := `
# HELP theta_stream_acks_received_total Subscription acknowledgements received.
# TYPE theta_stream_acks_received_total counter
theta_stream_acks_received_total 1
# HELP theta_stream_active_sessions Currently connected stream sessions.
# TYPE theta_stream_active_sessions gauge
theta_stream_active_sessions 1
# HELP theta_stream_bytes_received_total Bytes read from the stream socket.
# TYPE theta_stream_bytes_received_total counter
theta_stream_bytes_received_total 144
# HELP theta_stream_decode_errors_total Frames that failed to decode.
# TYPE theta_stream_decode_errors_total counter
theta_stream_decode_errors_total 1
# HELP theta_stream_events_delivered_total Events delivered to consumers.
# TYPE theta_stream_events_delivered_total counter
theta_stream_events_delivered_total 3
# HELP theta_stream_events_dropped_total Events dropped by slow consumers.
# TYPE theta_stream_events_dropped_total counter
theta_stream_events_dropped_total 1
# HELP theta_stream_frames_by_tag_total Frames by stream message type.
# TYPE theta_stream_frames_by_tag_total counter
theta_stream_frames_by_tag_total{tag="QUOTE"} 2
theta_stream_frames_by_tag_total{tag="TRADE"} 1
# HELP theta_stream_frames_received_total Frames decoded from the stream socket.
# TYPE theta_stream_frames_received_total counter
theta_stream_frames_received_total 3
`
	require.NoError(t, testutil.CollectAndCompare(NewStreamExporter(c), strings.NewReader(expected)))
}

// TestWSExporter verifies the bridge counters in exposition format.
func TestWSExporter(t *testing.T) {
	c := NewWSCollector()
	c.RecordMessageSent(100)
	c.RecordMessageSent(50)
	c.RecordMessageDropped()
	c.RecordError()
	c.RecordConnection(true)
	c.RecordConnection(true)
	c.RecordConnection(false)
	c.RecordRejected()

	expected := `
# HELP theta_bridge_active_clients Currently connected bridge clients.
# TYPE theta_bridge_active_clients gauge
theta_bridge_active_clients 1
# HELP theta_bridge_bytes_sent_total Bytes written to bridge clients.
# TYPE theta_bridge_bytes_sent_total counter
theta_bridge_bytes_sent_total 150
# HELP theta_bridge_clients_rejected_total Bridge clients turned away at the cap.
# TYPE theta_bridge_clients_rejected_total counter
theta_bridge_clients_rejected_total 1
# HELP theta_bridge_clients_total Bridge clients accepted since start.
# TYPE theta_bridge_clients_total counter
theta_bridge_clients_total 2
# HELP theta_bridge_errors_total Bridge write and upgrade errors.
# TYPE theta_bridge_errors_total counter
theta_bridge_errors_total 1
# HELP theta_bridge_messages_dropped_total Events dropped on slow bridge clients.
# TYPE theta_bridge_messages_dropped_total counter
theta_bridge_messages_dropped_total 1
# HELP theta_bridge_messages_sent_total Events written to bridge clients.
# TYPE theta_bridge_messages_sent_total counter
theta_bridge_messages_sent_total 2
`
	require.NoError(t, testutil.CollectAndCompare(NewWSExporter(c), strings.NewReader(expected)))
}

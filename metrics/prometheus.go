package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// requestExporter exposes a RequestCollector as Prometheus metrics.
type requestExporter struct {
	c *RequestCollector

	requestsSent      *prometheus.Desc
	responsesReceived *prometheus.Desc
	bytesWritten      *prometheus.Desc
	bytesRead         *prometheus.Desc
	errors            *prometheus.Desc
	timeouts          *prometheus.Desc
	requestsByOp      *prometheus.Desc
}

// NewRequestExporter wraps a RequestCollector in a prometheus.Collector.
// Register it on any prometheus.Registerer.
func NewRequestExporter(c *RequestCollector) prometheus.Collector {
	return &requestExporter{
		c: c,
		requestsSent: prometheus.NewDesc(
			"theta_requests_sent_total", "Requests written to the Terminal control socket.", nil, nil),
		responsesReceived: prometheus.NewDesc(
			"theta_responses_received_total", "Responses fully read from the control socket.", nil, nil),
		bytesWritten: prometheus.NewDesc(
			"theta_request_bytes_written_total", "Bytes written to the control socket.", nil, nil),
		bytesRead: prometheus.NewDesc(
			"theta_request_bytes_read_total", "Bytes read from the control socket.", nil, nil),
		errors: prometheus.NewDesc(
			"theta_request_errors_total", "Failed control-socket requests.", nil, nil),
		timeouts: prometheus.NewDesc(
			"theta_request_timeouts_total", "Control-socket requests that hit the read deadline.", nil, nil),
		requestsByOp: prometheus.NewDesc(
			"theta_requests_by_op_total", "Requests by message type.", []string{"op"}, nil),
	}
}

func (e *requestExporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.requestsSent
	ch <- e.responsesReceived
	ch <- e.bytesWritten
	ch <- e.bytesRead
	ch <- e.errors
	ch <- e.timeouts
	ch <- e.requestsByOp
}

func (e *requestExporter) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(e.requestsSent, prometheus.CounterValue, float64(e.c.requestsSent.Load()))
	ch <- prometheus.MustNewConstMetric(e.responsesReceived, prometheus.CounterValue, float64(e.c.responsesReceived.Load()))
	ch <- prometheus.MustNewConstMetric(e.bytesWritten, prometheus.CounterValue, float64(e.c.bytesWritten.Load()))
	ch <- prometheus.MustNewConstMetric(e.bytesRead, prometheus.CounterValue, float64(e.c.bytesRead.Load()))
	ch <- prometheus.MustNewConstMetric(e.errors, prometheus.CounterValue, float64(e.c.errors.Load()))
	ch <- prometheus.MustNewConstMetric(e.timeouts, prometheus.CounterValue, float64(e.c.timeouts.Load()))

	e.c.mu.RLock()
	for op, count := range e.c.requestCounts {
		ch <- prometheus.MustNewConstMetric(e.requestsByOp, prometheus.CounterValue, float64(count), op)
	}
	e.c.mu.RUnlock()
}

// streamExporter exposes a StreamCollector as Prometheus metrics.
type streamExporter struct {
	c *StreamCollector

	framesReceived  *prometheus.Desc
	bytesReceived   *prometheus.Desc
	eventsDelivered *prometheus.Desc
	eventsDropped   *prometheus.Desc
	decodeErrors    *prometheus.Desc
	acksReceived    *prometheus.Desc
	activeSessions  *prometheus.Desc
	framesByTag     *prometheus.Desc
}

// NewStreamExporter wraps a StreamCollector in a prometheus.Collector.
func NewStreamExporter(c *StreamCollector) prometheus.Collector {
	return &streamExporter{
		c: c,
		framesReceived: prometheus.NewDesc(
			"theta_stream_frames_received_total", "Frames decoded from the stream socket.", nil, nil),
		bytesReceived: prometheus.NewDesc(
			"theta_stream_bytes_received_total", "Bytes read from the stream socket.", nil, nil),
		eventsDelivered: prometheus.NewDesc(
			"theta_stream_events_delivered_total", "Events delivered to consumers.", nil, nil),
		eventsDropped: prometheus.NewDesc(
			"theta_stream_events_dropped_total", "Events dropped by slow consumers.", nil, nil),
		decodeErrors: prometheus.NewDesc(
			"theta_stream_decode_errors_total", "Frames that failed to decode.", nil, nil),
		acksReceived: prometheus.NewDesc(
			"theta_stream_acks_received_total", "Subscription acknowledgements received.", nil, nil),
		activeSessions: prometheus.NewDesc(
			"theta_stream_active_sessions", "Currently connected stream sessions.", nil, nil),
		framesByTag: prometheus.NewDesc(
			"theta_stream_frames_by_tag_total", "Frames by stream message type.", []string{"tag"}, nil),
	}
}

func (e *streamExporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.framesReceived
	ch <- e.bytesReceived
	ch <- e.eventsDelivered
	ch <- e.eventsDropped
	ch <- e.decodeErrors
	ch <- e.acksReceived
	ch <- e.activeSessions
	ch <- e.framesByTag
}

func (e *streamExporter) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(e.framesReceived, prometheus.CounterValue, float64(e.c.framesReceived.Load()))
	ch <- prometheus.MustNewConstMetric(e.bytesReceived, prometheus.CounterValue, float64(e.c.bytesReceived.Load()))
	ch <- prometheus.MustNewConstMetric(e.eventsDelivered, prometheus.CounterValue, float64(e.c.eventsDelivered.Load()))
	ch <- prometheus.MustNewConstMetric(e.eventsDropped, prometheus.CounterValue, float64(e.c.eventsDropped.Load()))
	ch <- prometheus.MustNewConstMetric(e.decodeErrors, prometheus.CounterValue, float64(e.c.decodeErrors.Load()))
	ch <- prometheus.MustNewConstMetric(e.acksReceived, prometheus.CounterValue, float64(e.c.acksReceived.Load()))
	ch <- prometheus.MustNewConstMetric(e.activeSessions, prometheus.GaugeValue, float64(e.c.activeSessions.Load()))

	e.c.mu.RLock()
	for tag, count := range e.c.frameCounts {
		ch <- prometheus.MustNewConstMetric(e.framesByTag, prometheus.CounterValue, float64(count), tag)
	}
	e.c.mu.RUnlock()
}

// wsExporter exposes a WSCollector as Prometheus metrics.
type wsExporter struct {
	c *WSCollector

	messagesSent    *prometheus.Desc
	bytesSent       *prometheus.Desc
	messagesDropped *prometheus.Desc
	errors          *prometheus.Desc
	activeClients   *prometheus.Desc
	totalClients    *prometheus.Desc
	rejectedClients *prometheus.Desc
}

// NewWSExporter wraps a WSCollector in a prometheus.Collector.
func NewWSExporter(c *WSCollector) prometheus.Collector {
	return &wsExporter{
		c: c,
		messagesSent: prometheus.NewDesc(
			"theta_bridge_messages_sent_total", "Events written to bridge clients.", nil, nil),
		bytesSent: prometheus.NewDesc(
			"theta_bridge_bytes_sent_total", "Bytes written to bridge clients.", nil, nil),
		messagesDropped: prometheus.NewDesc(
			"theta_bridge_messages_dropped_total", "Events dropped on slow bridge clients.", nil, nil),
		errors: prometheus.NewDesc(
			"theta_bridge_errors_total", "Bridge write and upgrade errors.", nil, nil),
		activeClients: prometheus.NewDesc(
			"theta_bridge_active_clients", "Currently connected bridge clients.", nil, nil),
		totalClients: prometheus.NewDesc(
			"theta_bridge_clients_total", "Bridge clients accepted since start.", nil, nil),
		rejectedClients: prometheus.NewDesc(
			"theta_bridge_clients_rejected_total", "Bridge clients turned away at the cap.", nil, nil),
	}
}

func (e *wsExporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.messagesSent
	ch <- e.bytesSent
	ch <- e.messagesDropped
	ch <- e.errors
	ch <- e.activeClients
	ch <- e.totalClients
	ch <- e.rejectedClients
}

func (e *wsExporter) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(e.messagesSent, prometheus.CounterValue, float64(e.c.messagesSent.Load()))
	ch <- prometheus.MustNewConstMetric(e.bytesSent, prometheus.CounterValue, float64(e.c.bytesSent.Load()))
	ch <- prometheus.MustNewConstMetric(e.messagesDropped, prometheus.CounterValue, float64(e.c.messagesDropped.Load()))
	ch <- prometheus.MustNewConstMetric(e.errors, prometheus.CounterValue, float64(e.c.errors.Load()))
	ch <- prometheus.MustNewConstMetric(e.activeClients, prometheus.GaugeValue, float64(e.c.activeConnections.Load()))
	ch <- prometheus.MustNewConstMetric(e.totalClients, prometheus.CounterValue, float64(e.c.totalConnections.Load()))
	ch <- prometheus.MustNewConstMetric(e.rejectedClients, prometheus.CounterValue, float64(e.c.rejectedConnections.Load()))
}

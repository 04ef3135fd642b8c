package bridge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/olira/fhz2mqtt/internal/fht"
	"github.com/olira/fhz2mqtt/internal/fhz"
	"github.com/olira/fhz2mqtt/internal/infrastructure/mqtt"
)

// MockMQTTClient implements MQTTClient for testing.
type MockMQTTClient struct {
	mu            sync.Mutex
	published     []mockPublish
	subscriptions []string
	connected     bool
	handlers      map[string]mqtt.MessageHandler
}

type mockPublish struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

func NewMockMQTTClient() *MockMQTTClient {
	return &MockMQTTClient{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

func (m *MockMQTTClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, mockPublish{
		Topic:    topic,
		Payload:  append([]byte{}, payload...),
		QoS:      qos,
		Retained: retained,
	})
	return nil
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = append(m.subscriptions, topic)
	m.handlers[topic] = handler
	return nil
}

func (m *MockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// StatePublished returns the state reports published so far, health
// traffic excluded.
func (m *MockMQTTClient) StatePublished() []mockPublish {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []mockPublish
	for _, p := range m.published {
		if p.Topic == (mqtt.Topics{}).Health() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *MockMQTTClient) Subscriptions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.subscriptions...)
}

// SimulateMessage simulates receiving an MQTT message on a topic.
// The bridge subscribes with a wildcard, so deliver to the first handler.
func (m *MockMQTTClient) SimulateMessage(topic string, payload []byte) error {
	m.mu.Lock()
	var handler mqtt.MessageHandler
	for _, h := range m.handlers {
		handler = h
		break
	}
	m.mu.Unlock()
	if handler == nil {
		return errors.New("no handler registered")
	}
	return handler(topic, payload)
}

// MockTransport implements Transport for testing.
type MockTransport struct {
	mu        sync.Mutex
	connected bool
	sent      []fht.Payload
	onPayload func(fht.Payload)
	sendError error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

func (m *MockTransport) Send(_ context.Context, p fht.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, p)
	return nil
}

func (m *MockTransport) SetOnPayload(callback func(fht.Payload)) {
	m.mu.Lock()
	m.onPayload = callback
	m.mu.Unlock()
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) Stats() fhz.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fhz.Stats{Connected: m.connected}
}

// DeliverPayload injects an inbound payload as if read from the bus.
func (m *MockTransport) DeliverPayload(p fht.Payload) {
	m.mu.Lock()
	callback := m.onPayload
	m.mu.Unlock()
	if callback != nil {
		callback(p)
	}
}

func (m *MockTransport) Sent() []fht.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fht.Payload{}, m.sent...)
}

// ackPayload builds an inbound acknowledgement frame payload.
func ackPayload(hc fht.Hauscode, function, value byte) fht.Payload {
	return fht.Payload{
		Type: 0x04,
		Data: []byte{0x83, 0x09, 0x83, 0x01, hc.Upper, hc.Lower, function, value, 0x00},
	}
}

// statusPayload builds an inbound status frame payload.
func statusPayload(hc fht.Hauscode, function, subfunction, status, value byte) fht.Payload {
	return fht.Payload{
		Type: 0x04,
		Data: []byte{0x09, 0x09, 0xA0, 0x01, hc.Upper, hc.Lower, function, subfunction, status, value},
	}
}

// newTestBridge builds a started bridge on mocks.
func newTestBridge(t *testing.T) (*Bridge, *MockMQTTClient, *MockTransport) {
	t.Helper()

	mqttClient := NewMockMQTTClient()
	transport := NewMockTransport()

	b, err := New(Options{
		MQTTClient:  mqttClient,
		Transport:   transport,
		RetainState: true,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() {
		b.Stop()
		cancel()
	})

	return b, mqttClient, transport
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Options{Transport: NewMockTransport()}); err == nil {
		t.Error("New() without MQTT client should fail")
	}
	if _, err := New(Options{MQTTClient: NewMockMQTTClient()}); err == nil {
		t.Error("New() without transport should fail")
	}
}

func TestStartSubscribesToCommands(t *testing.T) {
	_, mqttClient, _ := newTestBridge(t)

	subs := mqttClient.Subscriptions()
	if len(subs) != 1 || subs[0] != "fhz/+/set/#" {
		t.Errorf("subscriptions = %v, want [fhz/+/set/#]", subs)
	}
}

func TestInboundReportPublished(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	hc := fht.Hauscode{Upper: 12, Lower: 34}
	transport.DeliverPayload(ackPayload(hc, 0x41, 35))

	published := mqttClient.StatePublished()
	if len(published) != 1 {
		t.Fatalf("published %d messages, want 1", len(published))
	}
	p := published[0]
	if p.Topic != "fhz/1234/desired-temp" {
		t.Errorf("topic = %q, want fhz/1234/desired-temp", p.Topic)
	}
	if string(p.Payload) != "17.5" {
		t.Errorf("payload = %q, want 17.5", p.Payload)
	}
	if !p.Retained {
		t.Error("state report should be retained")
	}
}

func TestInboundStatusPublishesTwoReports(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	hc := fht.Hauscode{Upper: 12, Lower: 34}
	transport.DeliverPayload(statusPayload(hc, 0x44, 0x60, 0x00, 0x20))

	published := mqttClient.StatePublished()
	if len(published) != 2 {
		t.Fatalf("published %d messages, want 2", len(published))
	}

	got := map[string]string{}
	for _, p := range published {
		got[p.Topic] = string(p.Payload)
	}
	if got["fhz/1234/window"] != "open" {
		t.Errorf("window = %q, want open", got["fhz/1234/window"])
	}
	if got["fhz/1234/battery"] != "ok" {
		t.Errorf("battery = %q, want ok", got["fhz/1234/battery"])
	}
}

func TestSplitTemperaturePublishedOnce(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	hc := fht.Hauscode{Upper: 12, Lower: 34}

	// Low half alone publishes nothing.
	transport.DeliverPayload(ackPayload(hc, 0x42, 200))
	if n := len(mqttClient.StatePublished()); n != 0 {
		t.Fatalf("published %d messages after low half, want 0", n)
	}

	// High half completes the reading.
	transport.DeliverPayload(ackPayload(hc, 0x43, 1))
	published := mqttClient.StatePublished()
	if len(published) != 1 {
		t.Fatalf("published %d messages, want 1", len(published))
	}
	if published[0].Topic != "fhz/1234/is-temp" {
		t.Errorf("topic = %q, want fhz/1234/is-temp", published[0].Topic)
	}
	if string(published[0].Payload) != "45.60" {
		t.Errorf("payload = %q, want 45.60", published[0].Payload)
	}
}

func TestForeignFrameIgnored(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	transport.DeliverPayload(fht.Payload{
		Type: 0x04,
		Data: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04, 0x05},
	})

	if n := len(mqttClient.StatePublished()); n != 0 {
		t.Errorf("published %d messages for foreign frame, want 0", n)
	}
}

func TestUnknownFunctionIgnored(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	transport.DeliverPayload(ackPayload(fht.Hauscode{Upper: 12, Lower: 34}, 0xF0, 0x00))

	if n := len(mqttClient.StatePublished()); n != 0 {
		t.Errorf("published %d messages for unknown function, want 0", n)
	}
}

func TestCommandMessageSent(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	if err := mqttClient.SimulateMessage("fhz/3012/set/desired-temp", []byte("17.5")); err != nil {
		t.Fatalf("command handler failed: %v", err)
	}

	sent := transport.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d payloads, want 1", len(sent))
	}
	want := []byte{0x02, 0x01, 0x83, 30, 12, 0x41, 35}
	if !bytes.Equal(sent[0].Data, want) {
		t.Errorf("sent data = % X, want % X", sent[0].Data, want)
	}
	if sent[0].Type != fht.TypeFHTSend {
		t.Errorf("sent type = 0x%02X, want 0x%02X", sent[0].Type, fht.TypeFHTSend)
	}
}

func TestCommandMessageErrors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		wantErr error
	}{
		{"bad hauscode", "fhz/12ab/set/mode", "auto", fht.ErrInvalidFormat},
		{"unknown command", "fhz/1234/set/boost", "on", fht.ErrUnknownCommand},
		{"read-only command", "fhz/1234/set/is-temp", "21", fht.ErrPermissionDenied},
		{"bad payload", "fhz/1234/set/mode", "party", fht.ErrInvalidEnum},
		{"out of range", "fhz/1234/set/desired-temp", "40", fht.ErrOutOfRange},
	}

	_, mqttClient, transport := newTestBridge(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mqttClient.SimulateMessage(tt.topic, []byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("handler error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if n := len(transport.Sent()); n != 0 {
		t.Errorf("sent %d payloads for failing commands, want 0", n)
	}
}

func TestCommandSendFailure(t *testing.T) {
	_, mqttClient, transport := newTestBridge(t)

	transport.mu.Lock()
	transport.sendError = fhz.ErrNotConnected
	transport.mu.Unlock()

	err := mqttClient.SimulateMessage("fhz/1234/set/mode", []byte("auto"))
	if !errors.Is(err, fhz.ErrNotConnected) {
		t.Errorf("handler error = %v, want ErrNotConnected", err)
	}
}

func TestDevicesSeen(t *testing.T) {
	b, _, transport := newTestBridge(t)

	transport.DeliverPayload(ackPayload(fht.Hauscode{Upper: 12, Lower: 34}, 0x41, 35))
	transport.DeliverPayload(ackPayload(fht.Hauscode{Upper: 12, Lower: 34}, 0x41, 36))
	transport.DeliverPayload(ackPayload(fht.Hauscode{Upper: 56, Lower: 78}, 0x41, 40))

	seen := b.DevicesSeen()
	if len(seen) != 2 {
		t.Fatalf("DevicesSeen() = %d devices, want 2", len(seen))
	}

	codes := make([]string, len(seen))
	for i, hc := range seen {
		codes[i] = hc.String()
	}
	joined := strings.Join(codes, ",")
	for _, want := range []string{"1234", "5678"} {
		if !strings.Contains(joined, want) {
			t.Errorf("DevicesSeen() = %v, missing %s", codes, want)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	b, _, _ := newTestBridge(t)

	b.Stop()
	b.Stop()
}

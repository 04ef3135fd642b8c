package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/olira/fhz2mqtt/internal/fht"
	"github.com/olira/fhz2mqtt/internal/fhz"
	"github.com/olira/fhz2mqtt/internal/infrastructure/mqtt"
)

// Bridge operation constants.
const (
	// commandTimeout is the timeout for writing a command to the transceiver.
	commandTimeout = 5 * time.Second

	// commandQoS is the QoS used for command subscriptions and state reports.
	commandQoS = 1
)

// Bridge orchestrates bidirectional translation between the FHT bus and MQTT.
// It handles:
//   - Receiving commands via MQTT and translating them to FHT telegrams
//   - Receiving FHT reports and publishing state updates to MQTT
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt      MQTTClient
	transport Transport
	codec     *fht.Codec
	health    *HealthReporter

	// Retain state reports so late subscribers see last known values
	retainState bool

	// Devices heard on the bus, for the health report
	seen   map[fht.Hauscode]time.Time
	seenMu sync.Mutex

	// Shutdown coordination
	done     chan struct{}
	stopOnce sync.Once

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Transport is the interface to the FHZ transceiver.
// Satisfied by *fhz.Client; mocked in tests.
type Transport interface {
	// Send frames and writes a payload to the transceiver.
	Send(ctx context.Context, p fht.Payload) error

	// SetOnPayload registers the inbound payload callback.
	SetOnPayload(callback func(fht.Payload))

	// IsConnected returns true if the transceiver link is up.
	IsConnected() bool

	// Stats returns operational statistics.
	Stats() fhz.Stats
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Transport is the FHZ transceiver connection.
	Transport Transport

	// RetainState publishes state reports as retained messages.
	RetainState bool

	// HealthInterval is how often to publish health status.
	// Default: 30 seconds.
	HealthInterval time.Duration

	// Version is the bridge software version, for health reports.
	Version string

	// Logger is optional structured logger.
	Logger Logger
}

// New creates a new bridge instance.
// Call Start() to begin operation.
func New(opts Options) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}

	b := &Bridge{
		mqtt:        opts.MQTTClient,
		transport:   opts.Transport,
		codec:       fht.NewCodec(),
		retainState: opts.RetainState,
		seen:        make(map[fht.Hauscode]time.Time),
		done:        make(chan struct{}),
		logger:      opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Transport: opts.Transport,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This subscribes to the command topics, sets up the transceiver payload
// handler, and starts health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	b.transport.SetOnPayload(b.handlePayload)

	commandTopic := mqtt.Topics{}.AllDeviceCommands()
	if err := b.mqtt.Subscribe(commandTopic, commandQoS, b.handleCommandMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	b.health.Start(ctx)

	b.logInfo("bridge started")
	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		b.logInfo("bridge stopped")
	})
}

// handlePayload decodes one inbound payload and publishes its reports.
// Runs on the transport's dispatch goroutine; bus order is preserved, which
// the two-frame measured temperature depends on.
func (b *Bridge) handlePayload(p fht.Payload) {
	msg, err := b.codec.Decode(p)

	switch {
	case err == nil:
	case errors.Is(err, fht.ErrDeferred):
		// First half of a split reading; the second frame completes it.
		b.logDebug("report deferred", "hauscode", msg.Hauscode.String())
	case errors.Is(err, fht.ErrInvalidFrame):
		b.logDebug("ignoring foreign frame", "error", err)
		return
	case errors.Is(err, fht.ErrUnknownCommand):
		// Housekeeping traffic the registry does not model.
		b.logDebug("ignoring unknown function", "error", err)
		return
	default:
		b.logWarn("decode failed", "error", err, "payload", fmt.Sprintf("% X", p.Data))
	}

	if len(msg.Reports) == 0 {
		return
	}

	b.recordSeen(msg.Hauscode)

	// Publish every report the frame yielded, even when a later decoder
	// step failed; partial state beats no state.
	for _, report := range msg.Reports {
		topic := mqtt.Topics{}.DeviceState(msg.Hauscode.String(), report.Topic)
		if err := b.mqtt.Publish(topic, []byte(report.Value), commandQoS, b.retainState); err != nil {
			b.logError("failed to publish report", err)
			continue
		}
		b.logDebug("published report",
			"topic", topic,
			"value", report.Value,
			"kind", msg.Kind.String())
	}
}

// handleCommandMessage turns one MQTT command message into an FHT telegram.
func (b *Bridge) handleCommandMessage(topic string, payload []byte) error {
	hauscode, command, err := mqtt.Topics{}.ParseCommandTopic(topic)
	if err != nil {
		return fmt.Errorf("parse command topic: %w", err)
	}

	hc, err := fht.ParseHauscode(hauscode)
	if err != nil {
		return fmt.Errorf("hauscode %q: %w", hauscode, err)
	}

	p, err := b.codec.EncodeCommand(hc, command, string(payload))
	if err != nil {
		return fmt.Errorf("command %q: %w", command, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.transport.Send(ctx, p); err != nil {
		return fmt.Errorf("send command %q to %s: %w", command, hc.String(), err)
	}

	b.logInfo("sent command",
		"hauscode", hc.String(),
		"command", command,
		"payload", string(payload))
	return nil
}

// recordSeen notes a device heard on the bus and updates the health count.
func (b *Bridge) recordSeen(hc fht.Hauscode) {
	b.seenMu.Lock()
	_, known := b.seen[hc]
	b.seen[hc] = time.Now()
	count := len(b.seen)
	b.seenMu.Unlock()

	if !known {
		b.logInfo("new device heard", "hauscode", hc.String())
		b.health.SetDeviceCount(count)
	}
}

// DevicesSeen returns the hauscodes heard on the bus so far.
func (b *Bridge) DevicesSeen() []fht.Hauscode {
	b.seenMu.Lock()
	defer b.seenMu.Unlock()

	out := make([]fht.Hauscode, 0, len(b.seen))
	for hc := range b.seen {
		out = append(out, hc)
	}
	return out
}

// logDebug logs at debug level if a logger is set.
func (b *Bridge) logDebug(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Debug(msg, args...)
	}
}

// logInfo logs at info level if a logger is set.
func (b *Bridge) logInfo(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Info(msg, args...)
	}
}

// logWarn logs at warn level if a logger is set.
func (b *Bridge) logWarn(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Warn(msg, args...)
	}
}

// logError logs an error if a logger is set.
func (b *Bridge) logError(msg string, err error) {
	if l := b.getLogger(); l != nil {
		l.Error(msg, "error", err)
	}
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

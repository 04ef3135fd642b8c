package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the fhz2mqtt topic hierarchy.
//
// Device topics use the flat scheme: fhz/{hauscode}/{topic} for state
// reports and fhz/{hauscode}/set/{command} for commands.
const (
	// TopicPrefix is the base for all fhz2mqtt topics.
	TopicPrefix = "fhz"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "fhz/system"
)

// Topics provides builders for fhz2mqtt MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("1234", "desired-temp")
//	// Returns: "fhz/1234/desired-temp"
type Topics struct{}

// DeviceState returns the topic for a state report from a device.
//
// Example: fhz/1234/desired-temp
func (Topics) DeviceState(hauscode, topic string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, hauscode, topic)
}

// DeviceCommand returns the topic a command for a device is received on.
// Command names may contain slashes (e.g. "valve/1").
//
// Example: fhz/1234/set/desired-temp
func (Topics) DeviceCommand(hauscode, command string) string {
	return fmt.Sprintf("%s/%s/set/%s", TopicPrefix, hauscode, command)
}

// Health returns the topic for bridge health status.
//
// Example: fhz/health
func (Topics) Health() string {
	return fmt.Sprintf("%s/health", TopicPrefix)
}

// SystemStatus returns the system status topic carrying the online/offline
// payloads and the Last Will message.
//
// Example: fhz/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceCommands returns a pattern matching every command topic.
// The multi-level wildcard is required because command names may
// themselves contain a slash.
//
// Pattern: fhz/+/set/#
func (Topics) AllDeviceCommands() string {
	return fmt.Sprintf("%s/+/set/#", TopicPrefix)
}

// AllTopics returns a pattern matching all fhz2mqtt topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: fhz/#
func (Topics) AllTopics() string {
	return "fhz/#"
}

// ParseCommandTopic splits a command topic into its hauscode and command
// name. The command part may span several levels ("valve/1").
//
// Parameters:
//   - topic: Topic the message arrived on, e.g. "fhz/1234/set/mode"
//
// Returns:
//   - hauscode: The address segment, unvalidated
//   - command: The command name
//   - error: ErrInvalidTopic if the topic does not match the command scheme
func (Topics) ParseCommandTopic(topic string) (hauscode, command string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 || parts[0] != TopicPrefix || parts[2] != "set" {
		return "", "", fmt.Errorf("%w: %q is not a command topic", ErrInvalidTopic, topic)
	}
	command = strings.Join(parts[3:], "/")
	if parts[1] == "" || command == "" {
		return "", "", fmt.Errorf("%w: %q is not a command topic", ErrInvalidTopic, topic)
	}
	return parts[1], command, nil
}

package fht

import "fmt"

// FHT function ids.
const (
	funcIsValve        byte = 0x00
	funcValveFirst     byte = 0x01
	funcValveLast      byte = 0x08
	funcMode           byte = 0x3E
	funcDesiredTemp    byte = 0x41
	funcMeasuredLow    byte = 0x42
	funcMeasuredHigh   byte = 0x43
	funcStatus         byte = 0x44
	funcManuTemp       byte = 0x45
	funcAck            byte = 0x4B
	funcAck2           byte = 0x4C
	funcCanXmit        byte = 0x53
	funcCanRcv         byte = 0x54
	funcYear           byte = 0x60
	funcMonth          byte = 0x61
	funcDay            byte = 0x62
	funcHour           byte = 0x63
	funcMinute         byte = 0x64
	funcStartXmit      byte = 0x7D
	funcEndXmit        byte = 0x7E
	funcDayTemp        byte = 0x82
	funcNightTemp      byte = 0x84
	funcWindowOpenTemp byte = 0x8A
)

// Operating modes (function 0x3E).
const (
	modeAuto    byte = 0
	modeManual  byte = 1
	modeHoliday byte = 2
)

// command describes one recognised FHT function: an optional unique display
// name, an encoder (command payload → value byte), and a decoder (raw frame
// fields → reports). A nil encoder marks the command read-only.
type command struct {
	id     byte
	name   string
	encode func(payload string) (byte, error)
	decode func(c *Codec, hc Hauscode, raw rawFields, msg *Message, topic string) error
}

// commands is the authoritative registry, one descriptor per function id.
// The eight numbered valves are appended in init. Unnamed entries are
// telemetry or housekeeping codes that decode only.
var commands = []command{
	{id: funcIsValve, name: "is-valve", decode: decodeValve},
	{id: funcMode, name: "mode", encode: encodeMode, decode: decodeMode},
	{id: funcDesiredTemp, name: "desired-temp", encode: encodeTemp, decode: decodeTemp},
	{id: funcMeasuredLow, decode: decodeMeasuredLow},
	{id: funcMeasuredHigh, name: "is-temp", decode: decodeMeasuredHigh},
	{id: funcStatus, name: "status", decode: decodeStatus},
	{id: funcManuTemp, name: "manu-temp", encode: encodeTemp, decode: decodeTemp},
	{id: funcYear, name: "year", encode: encodeYear, decode: decodeYear},
	{id: funcMonth, name: "month", encode: encodeDateField("month", maxMonth), decode: decodeDateField("month", maxMonth)},
	{id: funcDay, name: "day", encode: encodeDateField("day", maxDay), decode: decodeDateField("day", maxDay)},
	{id: funcHour, name: "hour", encode: encodeDateField("hour", maxHour), decode: decodeDateField("hour", maxHour)},
	{id: funcMinute, name: "minute", encode: encodeDateField("minute", maxMinute), decode: decodeDateField("minute", maxMinute)},
	{id: funcDayTemp, name: "day-temp", encode: encodeTemp, decode: decodeTemp},
	{id: funcNightTemp, name: "night-temp", encode: encodeTemp, decode: decodeTemp},
	{id: funcWindowOpenTemp, name: "window-open-temp", encode: encodeTemp, decode: decodeTemp},

	// Bus housekeeping: always accepted, never reported.
	{id: funcAck, decode: decodeIgnored},
	{id: funcAck2, decode: decodeIgnored},
	{id: funcCanXmit, decode: decodeIgnored},
	{id: funcCanRcv, decode: decodeIgnored},
	{id: funcStartXmit, decode: decodeIgnored},
	{id: funcEndXmit, decode: decodeIgnored},
}

// Lookup maps built once at init.
var (
	commandByID   map[byte]*command
	commandByName map[string]*command
)

func init() {
	for id := funcValveFirst; id <= funcValveLast; id++ {
		commands = append(commands, command{
			id:     id,
			name:   fmt.Sprintf("valve/%d", id),
			decode: decodeValve,
		})
	}

	commandByID = make(map[byte]*command, len(commands))
	commandByName = make(map[string]*command, len(commands))
	for i := range commands {
		cmd := &commands[i]
		if _, dup := commandByID[cmd.id]; dup {
			panic(fmt.Sprintf("fht: duplicate function id 0x%02X", cmd.id))
		}
		commandByID[cmd.id] = cmd
		if cmd.name != "" {
			if _, dup := commandByName[cmd.name]; dup {
				panic(fmt.Sprintf("fht: duplicate command name %q", cmd.name))
			}
			commandByName[cmd.name] = cmd
		}
	}
}

// CommandNames returns the display names of all named commands. Useful for
// diagnostics and documentation; the slice is freshly allocated.
func CommandNames() []string {
	names := make([]string, 0, len(commandByName))
	for name := range commandByName {
		names = append(names, name)
	}
	return names
}

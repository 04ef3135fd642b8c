// Package bridge orchestrates bidirectional translation between the FHT
// radiator bus and MQTT.
//
// # Architecture
//
//	FHT devices ─┐
//	             │ radio (868 MHz)
//	FHZ transceiver ── internal/fhz ── Bridge ── internal/infrastructure/mqtt ── broker
//	                                     │
//	                               internal/fht
//	                               (frame codec)
//
// Inbound, the bridge decodes every payload the transceiver delivers and
// publishes the resulting reports to fhz/{hauscode}/{topic}, retained so
// late subscribers see the last known values. Outbound, it subscribes to
// fhz/+/set/# and turns each message into an FHT command telegram.
//
// # Health
//
// A HealthReporter publishes a JSON health document to fhz/health at a
// configurable interval, carrying transceiver statistics and the number
// of devices heard so far.
package bridge

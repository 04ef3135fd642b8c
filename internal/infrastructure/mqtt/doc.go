// Package mqtt provides MQTT client connectivity for fhz2mqtt.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// fhz2mqtt publishes device state reports under fhz/{hauscode}/{topic}
// and accepts commands on fhz/{hauscode}/set/{command}. The broker
// decouples the radiator bus from whatever consumes its data (home
// automation hubs, dashboards, recorders).
//
//	FHT devices ↔ FHZ transceiver ↔ fhz2mqtt ↔ MQTT Broker ↔ consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all device commands
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a state report
//	topic := mqtt.Topics{}.DeviceState("1234", "desired-temp")
//	client.Publish(topic, []byte("21.5"), 1, true)
package mqtt

// Package metrics defines the events a simulation emits and the sink
// interfaces that record them. Sinks like PromSink, InfluxSink or the MQTT
// publisher can be combined with NewMultiSink; the factory helpers return a
// MultiSink automatically when multiple sinks are configured.
package metrics

package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/chargesim/core/factory"
	coremetrics "github.com/kilianp07/chargesim/core/metrics"
	coremon "github.com/kilianp07/chargesim/core/monitoring"
	"github.com/kilianp07/chargesim/infra/logger"
)

func init() {
	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		p, err := NewResultPublisher(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// ResultPublisher is a metrics sink publishing simulation results as JSON.
// Averaged results go to <prefix>/results/<station_count>, single runs to
// <prefix>/runs.
type ResultPublisher struct {
	cli    pahoClient
	cfg    Config
	logger logger.Logger
}

// NewResultPublisher connects to the broker.
func NewResultPublisher(cfg Config) (*ResultPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &ResultPublisher{cli: c, cfg: cfg, logger: log}, nil
}

// ResultTopic returns the topic of averaged results for a station count.
func (p *ResultPublisher) ResultTopic(stations int) string {
	return p.cfg.TopicPrefix + "/results/" + strconv.Itoa(stations)
}

// RunTopic returns the topic of single runs.
func (p *ResultPublisher) RunTopic() string {
	return p.cfg.TopicPrefix + "/runs"
}

// ResultMessage is the payload published for a SimulationEvent.
type ResultMessage struct {
	SimulationID       string    `json:"simulation_id"`
	Seed               uint32    `json:"seed"`
	TotalRuns          int       `json:"total_runs"`
	Interval           int       `json:"interval"`
	Timezone           string    `json:"timezone"`
	StationCount       int       `json:"station_count"`
	StationPowerKW     float64   `json:"station_power_kw"`
	Consumption        float64   `json:"consumption_kwh_per_100km"`
	ArrivalMultiplier  float64   `json:"arrival_multiplier"`
	TotalEnergyKWh     float64   `json:"total_energy_consumed_kwh"`
	TheoreticalPowerKW float64   `json:"theoretical_maximum_power_demand_kw"`
	PeakPowerKW        float64   `json:"actual_maximum_power_demand_kw"`
	ConcurrencyFactor  float64   `json:"concurrency_factor"`
	Timestamp          time.Time `json:"timestamp"`
}

// RunMessage is the payload published for a RunEvent.
type RunMessage struct {
	SimulationID      string    `json:"simulation_id"`
	Run               int       `json:"run"`
	StationCount      int       `json:"station_count"`
	TotalEnergyKWh    float64   `json:"total_energy_consumed_kwh"`
	PeakPowerKW       float64   `json:"actual_maximum_power_demand_kw"`
	ConcurrencyFactor float64   `json:"concurrency_factor"`
	DurationMS        int64     `json:"duration_ms"`
	Timestamp         time.Time `json:"timestamp"`
}

// RecordSimulation publishes the averaged result.
func (p *ResultPublisher) RecordSimulation(ev coremetrics.SimulationEvent) error {
	return p.publish(p.ResultTopic(ev.StationCount), ResultMessage{
		SimulationID:       ev.SimulationID,
		Seed:               ev.Seed,
		TotalRuns:          ev.TotalRuns,
		Interval:           ev.IntervalMinutes,
		Timezone:           ev.Timezone,
		StationCount:       ev.StationCount,
		StationPowerKW:     ev.StationPowerKW,
		Consumption:        ev.Consumption,
		ArrivalMultiplier:  ev.ArrivalMultiplier,
		TotalEnergyKWh:     ev.EnergyKWh,
		TheoreticalPowerKW: ev.TheoreticalPowerKW,
		PeakPowerKW:        ev.PeakPowerKW,
		ConcurrencyFactor:  ev.ConcurrencyFactor,
		Timestamp:          ev.Time,
	})
}

// RecordRun publishes a single run.
func (p *ResultPublisher) RecordRun(ev coremetrics.RunEvent) error {
	return p.publish(p.RunTopic(), RunMessage{
		SimulationID:      ev.SimulationID,
		Run:               ev.Run,
		StationCount:      ev.StationCount,
		TotalEnergyKWh:    ev.EnergyKWh,
		PeakPowerKW:       ev.PeakPowerKW,
		ConcurrencyFactor: ev.ConcurrencyFactor,
		DurationMS:        ev.Duration.Milliseconds(),
		Timestamp:         ev.Time,
	})
}

// publish retries with exponential backoff and reports the final failure.
func (p *ResultPublisher) publish(topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(p.cfg.backoff() * time.Duration(1<<attempt))
		}
	}
	err = fmt.Errorf("publish %s: %w", topic, publishErr)
	coremon.CaptureException(err, map[string]string{"module": "mqtt", "topic": topic})
	return err
}

// Close gracefully closes the MQTT connection.
func (p *ResultPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}

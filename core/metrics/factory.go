package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/chargesim/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a sink factory under the type name used in the
// metrics.sinks list of the configuration.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink builds the sinks listed in cfgs. No entries yields a
// NopSink, one entry its sink and several a MultiSink. When an entry fails,
// the sinks already built are closed and the error names the failing entry.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("sink %d (%s): %w", i, c.Type, err),
				NewMultiSink(sinks...).Close(),
			)
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

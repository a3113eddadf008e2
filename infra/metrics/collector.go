package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/infra/logger"
	"github.com/kilianp07/chargesim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records simulation
// events on sink. It stops when the context is canceled or the bus is
// closed; the returned channel is closed once it has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case coremetrics.RunEvent:
					if r, ok := sink.(coremetrics.RunRecorder); ok {
						if err := r.RecordRun(e); err != nil {
							log.Errorf("record run %d of %s: %v", e.Run, e.SimulationID, err)
						}
					}
				case coremetrics.SimulationEvent:
					if err := sink.RecordSimulation(e); err != nil {
						log.Errorf("record simulation %s: %v", e.SimulationID, err)
					}
				}
			}
		}
	}()
	return done
}

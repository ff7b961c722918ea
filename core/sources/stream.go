// ABOUTME: Stream multiplexer forwards collector events to a transport sink
// ABOUTME: Treats client disconnection as normal termination, never as an error

package sources

import (
	"context"

	"blogforge-app-api/core/domain"
	"blogforge-app-api/core/interfaces"
)

// EventSink writes one event to the transport. Implementations serialize
// and flush immediately; an error means the consumer is gone.
type EventSink interface {
	Send(ev domain.StreamEvent) error
}

// Outcome describes how a multiplexed stream ended.
type Outcome struct {
	// Completed is true when processing_complete was observed and forwarded
	Completed bool

	// Disconnected is true when the client went away before the run ended
	Disconnected bool

	// Failed is true when the collector aborted with a terminal error event
	Failed bool
}

// Multiplexer forwards collector events to a sink one at a time, feeding
// the aggregator as events pass through. It is a single cooperative loop:
// it suspends while awaiting the next event and while awaiting the sink
// write, and it stops requesting events the moment the consumer is gone.
type Multiplexer struct {
	aggregator *Aggregator
	logger     interfaces.Logger
}

// NewMultiplexer creates a multiplexer feeding the given aggregator.
func NewMultiplexer(aggregator *Aggregator, logger interfaces.Logger) *Multiplexer {
	return &Multiplexer{
		aggregator: aggregator,
		logger:     logger,
	}
}

// Run consumes events until the channel closes, the context is cancelled,
// or a terminal event is forwarded. After detecting disconnection it never
// writes to the sink again. Events reach the sink in exactly the order
// produced; the only buffering is the channel's single in-flight slot.
func (m *Multiplexer) Run(ctx context.Context, events <-chan domain.StreamEvent, sink EventSink) Outcome {
	var outcome Outcome

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Client disconnected, stopping stream", nil)
			outcome.Disconnected = true
			return outcome

		case ev, ok := <-events:
			if !ok {
				return outcome
			}

			m.aggregator.Observe(ev)

			if err := sink.Send(ev); err != nil {
				m.logger.Warn("Send failed, client disconnected", map[string]interface{}{
					"error": err.Error(),
				})
				outcome.Disconnected = true
				return outcome
			}

			switch ev.Status {
			case domain.StatusProcessingComplete:
				outcome.Completed = true
				return outcome
			case domain.StatusFailed, domain.StatusError, domain.StatusStreamError:
				outcome.Failed = true
				return outcome
			}
		}
	}
}

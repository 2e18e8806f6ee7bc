package metrics

import (
	"fmt"

	"github.com/kilianp07/ocppcs/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to configuration.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

func SinkTypes() []string { return sinkRegistry.Names() }

// Build creates the configured sinks. Entries of type "none" are skipped, and
// several sinks are combined into a MultiSink. A type may appear only once.
func (c Config) Build() (MetricsSink, error) {
	seen := make(map[string]bool, len(c.Sinks))
	var sinks []MetricsSink
	for i, mc := range c.Sinks {
		if mc.Type == "none" {
			continue
		}
		if seen[mc.Type] {
			return nil, fmt.Errorf("metrics sink %d: duplicate type %q", i, mc.Type)
		}
		seen[mc.Type] = true
		s, err := sinkRegistry.Create(mc)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d: %w", i, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}

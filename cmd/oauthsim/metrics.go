package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type metricLine struct {
	Name       string `json:"name"`
	Attributes string `json:"attributes"`
	Value      int64  `json:"value"`
}

// collectMetrics flattens every int64 sum and gauge data point.
func collectMetrics(ctx context.Context, reader *sdkmetric.ManualReader) ([]metricLine, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}

	var lines []metricLine
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			var points []metricdata.DataPoint[int64]
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				points = data.DataPoints
			case metricdata.Gauge[int64]:
				points = data.DataPoints
			}
			for _, dp := range points {
				lines = append(lines, metricLine{
					Name:       m.Name,
					Attributes: dp.Attributes.Encoded(attribute.DefaultEncoder()),
					Value:      dp.Value,
				})
			}
		}
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].Attributes < lines[j].Attributes
	})
	return lines, nil
}

func printMetrics(out io.Writer, lines []metricLine) {
	fmt.Fprintln(out, "Metrics:")
	for _, l := range lines {
		fmt.Fprintf(out, "  %s{%s} %d\n", l.Name, l.Attributes, l.Value)
	}
}

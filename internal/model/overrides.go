package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MetricOverride adjusts a shipped metric's extraction paths or change
// threshold without recompiling. Unknown keys are ignored.
type MetricOverride struct {
	Paths     []string `yaml:"paths"`
	Threshold *float64 `yaml:"threshold"`
}

// ApplyOverrides reads a yaml file of per-metric overrides and returns a
// new registry with them applied. An empty path returns the registry
// unchanged.
func ApplyOverrides(reg *MetricRegistry, path string) (*MetricRegistry, error) {
	if path == "" {
		return reg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read metric overrides %s", path)
	}

	var overrides map[string]MetricOverride
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, eris.Wrap(err, "model: unmarshal metric overrides")
	}

	metrics := make([]Metric, len(reg.Metrics))
	copy(metrics, reg.Metrics)
	for i := range metrics {
		o, ok := overrides[metrics[i].Key]
		if !ok {
			continue
		}
		if len(o.Paths) > 0 {
			metrics[i].Paths = o.Paths
		}
		if o.Threshold != nil {
			metrics[i].Threshold = *o.Threshold
		}
	}
	return NewMetricRegistry(metrics), nil
}

package benchmark

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadFile reads house benchmark targets from a YAML file and applies them
// over the industry defaults. The file has a top-level "benchmarks" key:
//
//	benchmarks:
//	  labor_pct: 42
//	  food_cost_per_day: 9.25
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "benchmark: read file %s", path)
	}

	var wrapper struct {
		Benchmarks map[string]float64 `yaml:"benchmarks"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Config{}, eris.Wrap(err, "benchmark: parse file")
	}

	cfg, err := Defaults().Apply(wrapper.Benchmarks)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/irsa-sim/irsa-sim/sim"
)

// LoadConfig reads a SimulationConfig from a YAML file. Fields omitted from
// the file keep their defaults, so short configs stay short.
func LoadConfig(path string) (*sim.SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := sim.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

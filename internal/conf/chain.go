// conf/chain.go algorithm chain configuration file loading
package conf

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tkarvinen/soundpulse/internal/errors"
)

// ChainEntry is the configuration for one algorithm in the chain. In the
// chain file an entry is either a plain weight or a mapping carrying a
// weight plus algorithm specific parameters:
//
//	volume: 1.0
//	volume_dynamic:
//	  weight: 0.5
//	  dynamic_range: 40
//	  min_input: 1000
//	  max_input: 100
type ChainEntry struct {
	Weight float64
	Params map[string]float64
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (e *ChainEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var weight float64
		if err := value.Decode(&weight); err != nil {
			return err
		}
		e.Weight = weight
		return nil

	case yaml.MappingNode:
		var raw map[string]float64
		if err := value.Decode(&raw); err != nil {
			return err
		}
		e.Weight = 1.0
		if w, ok := raw["weight"]; ok {
			e.Weight = w
			delete(raw, "weight")
		}
		e.Params = raw
		return nil

	default:
		return errors.Newf("invalid chain entry format on line %d", value.Line).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// DefaultChainConfig is the chain used when no chain file is given.
func DefaultChainConfig() map[string]ChainEntry {
	return map[string]ChainEntry{
		"frequency": {Weight: 1.0},
	}
}

// LoadChainConfig reads a chain configuration file. Both YAML and JSON
// files are accepted, JSON being a subset of YAML.
func LoadChainConfig(path string) (map[string]ChainEntry, error) {
	if path == "" {
		return DefaultChainConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("operation", "load_chain_config").
			Context("path", path).
			Build()
	}

	var chain map[string]ChainEntry
	if err := yaml.Unmarshal(data, &chain); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "parse_chain_config").
			Context("path", path).
			Build()
	}

	if len(chain) == 0 {
		return nil, errors.Newf("chain configuration is empty: %s", path).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("path", path).
			Build()
	}

	return chain, nil
}

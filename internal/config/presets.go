package config

import "sort"

func preset(molecule string, steps int, temperature float64) *Config {
	cfg := DefaultConfig()
	cfg.Molecule = molecule
	cfg.Steps = steps
	cfg.Temperature = temperature
	return cfg
}

var Presets = map[string]map[string]*Config{
	"ethane": {
		"room": preset("ethane", 2500, 300),
		"cold": preset("ethane", 2500, 10),
		"hot":  preset("ethane", 2500, 1000),
	},
	"butane": {
		"room": preset("butane", 5000, 300),
		"cold": preset("butane", 5000, 10),
		"hot":  preset("butane", 5000, 1000),
	},
	"methane_pair": {
		"room": preset("methane_pair", 5000, 300),
		"cold": preset("methane_pair", 5000, 10),
		"close": func() *Config {
			cfg := preset("methane_pair", 5000, 300)
			cfg.Size = 0.35
			return cfg
		}(),
	},
}

// GetPreset returns a copy so callers may adjust it freely.
func GetPreset(molecule, name string) *Config {
	named, ok := Presets[molecule]
	if !ok {
		return nil
	}
	cfg, ok := named[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Repartition.Light = append([]int(nil), cfg.Repartition.Light...)
	return &c
}

func ListPresets(molecule string) []string {
	named, ok := Presets[molecule]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

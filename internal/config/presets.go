package config

import "sort"

var Presets = map[string]map[string]*Config{
	DistCube: {
		"small": {
			Strategy: "packed", Dt: 0.1, Steps: 200, RecordEvery: 10, Seed: 1, ValidateState: true,
			Init: InitConfig{Distribution: DistCube, NumBodies: 32, MaxMass: 1000, Extent: 1},
		},
		"bench": {
			Strategy: "packed", Dt: 0.1, Steps: 5, RecordEvery: 0, Seed: 1, ValidateState: true,
			Init: InitConfig{Distribution: DistCube, NumBodies: 250, MaxMass: 1000, Extent: 1},
		},
		"dense": {
			Strategy: "packed", Dt: 0.05, Steps: 100, RecordEvery: 5, Seed: 7, ValidateState: true,
			Init: InitConfig{Distribution: DistCube, NumBodies: 1000, MaxMass: 1000, Extent: 1},
		},
	},
	DistRing: {
		"stable": {
			Strategy: "packed", Dt: 0.01, Steps: 2000, RecordEvery: 20, ValidateState: true,
			Init: InitConfig{Distribution: DistRing, NumBodies: 12, Radius: 1, Mass: 1e6, Speed: 1e-2},
		},
		"collapse": {
			Strategy: "packed", Dt: 0.1, Steps: 1000, RecordEvery: 10, ValidateState: true,
			Init: InitConfig{Distribution: DistRing, NumBodies: 24, Radius: 1, Mass: 1e6},
		},
	},
	DistBinary: {
		"unit": {
			Strategy: "direct", Dt: 1, Steps: 1, RecordEvery: 1, ValidateState: true,
			Init: InitConfig{Distribution: DistBinary, Mass: 1, Mass2: 1, Separation: 1},
		},
		"infall": {
			Strategy: "direct", Dt: 1, Steps: 80, RecordEvery: 1, ValidateState: true,
			Init: InitConfig{Distribution: DistBinary, Mass: 1e6, Mass2: 1e6, Separation: 1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(dist, preset string) *Config {
	distPresets, ok := Presets[dist]
	if !ok {
		return nil
	}
	cfg, ok := distPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the sorted preset names for dist.
func ListPresets(dist string) []string {
	distPresets, ok := Presets[dist]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(distPresets))
	for name := range distPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

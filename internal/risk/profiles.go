package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"firebay/internal/types"
)

// Profile is a named threshold configuration with its active metric set.
// Profiles replace the original dashboard's slider state: callers pick a
// profile (or supply explicit thresholds) on every evaluation.
type Profile struct {
	Name       string                `yaml:"name"`
	Metrics    []types.Metric        `yaml:"metrics"`
	Thresholds types.ThresholdConfig `yaml:"thresholds"`
}

// profilesFile is the on-disk YAML shape.
type profilesFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultProfileName is the profile used when the caller does not name one.
const DefaultProfileName = "default"

// DefaultThresholds returns the standard critical thresholds for the
// monitored zone. The values match the dashboard's slider defaults.
func DefaultThresholds() types.ThresholdConfig {
	return types.ThresholdConfig{
		TemperatureC: 35,
		HumidityPct:  25,
		NDVI:         0.30,
		NDMI:         0.10,
		NBR:          0.10,
	}
}

// DefaultProfile returns the built-in default profile.
func DefaultProfile() Profile {
	return Profile{
		Name:       DefaultProfileName,
		Metrics:    DefaultMetricSet,
		Thresholds: DefaultThresholds(),
	}
}

// LoadProfiles reads threshold profiles from the YAML file at path. Each
// profile must have a unique name and only known metrics. A profile with an
// empty metric set gets DefaultMetricSet. If no "default" profile is present
// in the file, the built-in one is added.
func LoadProfiles(path string) (map[string]Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading threshold profiles: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing threshold profiles: %w", err)
	}

	profiles := make(map[string]Profile, len(file.Profiles)+1)
	for _, p := range file.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("threshold profile without a name")
		}
		if _, dup := profiles[p.Name]; dup {
			return nil, fmt.Errorf("duplicate threshold profile %q", p.Name)
		}
		for _, m := range p.Metrics {
			if !types.ValidMetric(m) {
				return nil, fmt.Errorf("threshold profile %q: unknown metric %q", p.Name, m)
			}
		}
		if len(p.Metrics) == 0 {
			p.Metrics = DefaultMetricSet
		}
		profiles[p.Name] = p
	}

	if _, ok := profiles[DefaultProfileName]; !ok {
		profiles[DefaultProfileName] = DefaultProfile()
	}

	return profiles, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	sweep "github.com/stance-sweep/stance-sweep/sweep"
)

// SpaceConfig is the structure of a space preset file: named candidate
// tables that override the built-in grid lists per parameter.
type SpaceConfig struct {
	Spaces map[string]map[string][]any `yaml:"spaces"`
}

// GetSpaceCandidates reads a YAML space preset file and returns the
// candidate overrides for the named space, or nil when the name is absent.
func GetSpaceCandidates(spaceFilePath string, spaceName string) (sweep.Candidates, error) {
	data, err := os.ReadFile(spaceFilePath)
	if err != nil {
		return nil, fmt.Errorf("read space file: %w", err)
	}

	var cfg SpaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse space file %s: %w", spaceFilePath, err)
	}

	space, ok := cfg.Spaces[spaceName]
	if !ok {
		return nil, nil
	}
	logrus.Infof("Using preset parameter space %q from %s", spaceName, spaceFilePath)

	candidates := make(sweep.Candidates, len(space))
	for name, values := range space {
		candidates[name] = values
	}
	return candidates, nil
}

package xconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadFromFiles decodes each named YAML file over config, in order, later
// files winning over earlier ones for any field they also set. A file that
// does not exist is skipped rather than treated as an error: --config is
// optional, and a driver run with only flags and environment variables
// should not have to keep an empty YAML file around to satisfy this step.
// The driver's config is YAML-only, so unlike the teacher's version this
// package never branches on file extension to pick a JSON decoder.
func loadFromFiles(config interface{}, filenames []string) error {
	for _, filename := range filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s: %w", filename, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("parsing %s: %w", filename, err)
		}
	}

	return nil
}

package cmd

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/gookit/goutil/fsutil"
	"github.com/pkg/errors"
)

// defaultConfigCandidates lookup order when -c is not given
var defaultConfigCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

// findConfig returns the first existing default config path, or "" when there is none
func findConfig() string {
	for _, p := range defaultConfigCandidates {
		if fsutil.FileExists(p) {
			return p
		}
	}
	return ""
}

// writeDefaultConfig writes the embedded config to path with a random token key
func writeDefaultConfig(path string) error {
	content := strings.Replace(configDefault, "fast-note-kb-Auth-Token", strings.ReplaceAll(uuid.NewString(), "-", ""), 1)
	if err := fsutil.MkParentDir(path); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

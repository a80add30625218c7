// Package paths computes and creates the program's file locations.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const progDirName = "batchtube"

// Filled in by InitProgFilesDirs.
var (
	CfgDir      string
	DBFilePath  string
	LogFilePath string
)

// InitProgFilesDirs resolves the program's config directory and ensures it exists.
func InitProgFilesDirs() error {
	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return fmt.Errorf("failed to locate a config directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}

	CfgDir = filepath.Join(base, progDirName)
	if err := os.MkdirAll(CfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %q: %w", CfgDir, err)
	}

	DBFilePath = filepath.Join(CfgDir, "batchtube.db")
	LogFilePath = filepath.Join(CfgDir, "batchtube.log")
	return nil
}

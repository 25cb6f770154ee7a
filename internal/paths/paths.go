// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ConfigDirEnv overrides the configuration directory on every platform
const ConfigDirEnv = "CIPHERSHIELD_CONFIG_DIR"

// GetConfigDir returns the ciphershield configuration directory.
// Order: $CIPHERSHIELD_CONFIG_DIR, the OS user config dir, then ~/.ciphershield.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return ExpandHome(dir)
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "ciphershield")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".ciphershield")
	}
	return ".ciphershield"
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetEnvFile returns the path of the optional dotenv file kept next to the config
func GetEnvFile() string {
	return filepath.Join(GetConfigDir(), ".env")
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// NormalizePath expands "~" and cleans the result
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(ExpandHome(path))
}

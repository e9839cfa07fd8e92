// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package xdg provides XDG Base Directory paths for amesco.
package xdg

import (
	"os"
	"path/filepath"
)

const (
	appName        = "amesco"
	configFileName = "config.yaml"
)

// ConfigDir returns the XDG config directory for amesco.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the default path of the YAML configuration file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names a config file directly
	EnvConfigPath = "NETCOMPILER_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "netcompiler.yaml"
	// ConfigDirName is the directory holding config.yaml under the user and
	// system config roots
	ConfigDirName = "netcompiler"
)

// candidatePaths lists where a config file may live, most specific first.
// Unset variables contribute nothing.
func candidatePaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first candidate that is a regular file, or ""
// when there is none. The search order is $NETCOMPILER_CONFIG, the working
// directory, $XDG_CONFIG_HOME, ~/.config and /etc.
func FindConfigPath() string {
	for _, p := range candidatePaths() {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

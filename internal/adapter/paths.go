package adapter

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ExpandPaths resolves capture arguments to files. A directory contributes
// its regular files without descending further; a regular file contributes
// itself. Anything else is skipped with a warning.
func ExpandPaths(paths []string, log zerolog.Logger) []string {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("skipping capture path")
			continue
		}

		if info.Mode().IsRegular() {
			files = append(files, p)
			continue
		}
		if !info.IsDir() {
			log.Warn().Str("path", p).Msg("not a regular file or directory, skipping")
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("cannot list directory")
			continue
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files
}

package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// JDK 8 rotation (-XX:+UseGCLogFileRotation) names files gc.log.0, gc.log.1, ...
// and marks the one being written with ".current".
var rotatedSuffix = regexp.MustCompile(`\.\d+(\.current)?$`)

// CompleteFilesByExtension completes directories and files ending in one of
// extensions, optionally including rotated copies.
func CompleteFilesByExtension(extensions []string, includeRotated bool) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		dir, prefix := ".", toComplete
		if strings.Contains(toComplete, "/") {
			dir, prefix = filepath.Dir(toComplete), filepath.Base(toComplete)
			if strings.HasSuffix(toComplete, "/") {
				dir, prefix = toComplete, ""
			}
		}

		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var suggestions []string
		for _, file := range files {
			name := file.Name()

			// Skip hidden files and non-matching prefixes
			if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
				continue
			}

			suggestion := name
			if dir != "." {
				suggestion = filepath.Join(dir, name)
			}

			if file.IsDir() {
				suggestions = append(suggestions, suggestion+"/")
			} else if HasLogExtension(name, extensions, includeRotated) {
				suggestions = append(suggestions, suggestion)
			}
		}

		slices.Sort(suggestions)
		return suggestions, cobra.ShellCompDirectiveNoFileComp
	}
}

// HasLogExtension reports whether filename ends in one of extensions, or,
// with includeRotated, in one of them followed by a rotation suffix.
func HasLogExtension(filename string, extensions []string, includeRotated bool) bool {
	if includeRotated {
		filename = rotatedSuffix.ReplaceAllString(filename, "")
	}
	for _, ext := range extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

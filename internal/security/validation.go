package security

import (
	"fmt"
	"regexp"
	"strings"
)

const maxLibraryNameLength = 255

var (
	// ValidLibraryNameRegex follows the distribution name rule: ASCII letters,
	// digits, '.', '_' and '-', starting and ending with a letter or digit
	ValidLibraryNameRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

	// ValidVersionRegex allows release, pre-release and local version segments
	ValidVersionRegex = regexp.MustCompile(`^[A-Za-z0-9._+!-]+$`)
)

// ValidateLibraryName validates a library name received from the user
// before it reaches the package manager command line.
func ValidateLibraryName(name string) error {
	if name == "" {
		return fmt.Errorf("library name cannot be empty")
	}

	if len(name) > maxLibraryNameLength {
		return fmt.Errorf("library name too long (max %d characters)", maxLibraryNameLength)
	}

	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("library name contains null byte")
	}

	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("library name %q looks like a flag", name)
	}

	if !ValidLibraryNameRegex.MatchString(name) {
		return fmt.Errorf("invalid library name %q: use letters, digits, '.', '_' or '-', starting and ending with a letter or digit", name)
	}

	return nil
}

// ValidateLibraryNames validates every name and reports the first failure
func ValidateLibraryNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one library name is required")
	}
	for _, name := range names {
		if err := ValidateLibraryName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVersion validates a version string reported by the package manager
// before it is written to a requirements file
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("invalid version: version cannot be empty")
	}

	if len(version) >= 100 {
		return fmt.Errorf("version string too long (max 100 characters)")
	}

	if strings.Contains(version, "..") {
		return fmt.Errorf("invalid version: contains dangerous pattern: ..")
	}

	if !ValidVersionRegex.MatchString(version) {
		return fmt.Errorf("invalid version format %q", version)
	}

	return nil
}

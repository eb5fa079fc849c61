package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/spf13/afero"
)

var (
	importRegex     = regexp.MustCompile(`^import\s+(.+)$`)
	fromImportRegex = regexp.MustCompile(`^from\s+(\S+)\s+import\b`)
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// DefaultAliases maps import names to the library that provides them when
// the two differ
var DefaultAliases = map[string]string{
	"Crypto":   "pycryptodome",
	"OpenSSL":  "pyopenssl",
	"PIL":      "pillow",
	"attr":     "attrs",
	"bs4":      "beautifulsoup4",
	"cv2":      "opencv-python",
	"dateutil": "python-dateutil",
	"dotenv":   "python-dotenv",
	"jwt":      "pyjwt",
	"magic":    "python-magic",
	"serial":   "pyserial",
	"sklearn":  "scikit-learn",
	"usb":      "pyusb",
	"yaml":     "pyyaml",
}

// Imports returns the sorted, unique top-level module names imported by a
// Python source file. Relative imports are ignored.
func Imports(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	return ParseImports(data), nil
}

// ParseImports extracts top-level imported module names from Python source
func ParseImports(src []byte) []string {
	modules := core.NameSet{}

	for _, stmt := range statements(src) {
		if m := fromImportRegex.FindStringSubmatch(stmt); m != nil {
			if name := topLevel(m[1]); name != "" {
				modules.Add(name)
			}
			continue
		}
		if m := importRegex.FindStringSubmatch(stmt); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				fields := strings.Fields(part)
				if len(fields) == 0 {
					continue
				}
				if name := topLevel(fields[0]); name != "" {
					modules.Add(name)
				}
			}
		}
	}

	return modules.Sorted()
}

// topLevel returns the first component of a dotted module path, or "" for
// relative or malformed paths
func topLevel(module string) string {
	module = strings.Trim(module, "()")
	if strings.HasPrefix(module, ".") {
		return ""
	}
	name, _, _ := strings.Cut(module, ".")
	if name == "__future__" || !identifierRegex.MatchString(name) {
		return ""
	}
	return name
}

// statements splits source into logical statements: comments and
// triple-quoted strings are dropped, backslash and parenthesis
// continuations are joined, and ';' separated statements are split.
func statements(src []byte) []string {
	var (
		stmts   []string
		pending strings.Builder
		depth   int
		inDoc   string
	)

	// lines are read without a length limit; generated modules can carry
	// multi-megabyte literals ahead of their imports
	reader := bufio.NewReader(bytes.NewReader(src))
	for {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")

		if inDoc != "" {
			idx := strings.Index(line, inDoc)
			if idx < 0 {
				continue
			}
			line = line[idx+3:]
			inDoc = ""
		}
		line, inDoc = stripDocstrings(line)
		line = stripComment(line)

		trimmed := strings.TrimSpace(line)
		continued := strings.HasSuffix(trimmed, "\\")
		trimmed = strings.TrimSuffix(trimmed, "\\")

		if pending.Len() > 0 {
			pending.WriteByte(' ')
		}
		pending.WriteString(trimmed)

		// only import statements are joined across open parentheses
		if isImport(pending.String()) {
			depth += strings.Count(trimmed, "(") - strings.Count(trimmed, ")")
		}

		if continued || depth > 0 {
			continue
		}
		depth = 0
		stmts = splitStatements(stmts, pending.String())
		pending.Reset()
	}
	// an unterminated continuation at end of file still counts
	return splitStatements(stmts, pending.String())
}

func splitStatements(stmts []string, logical string) []string {
	for _, s := range strings.Split(logical, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// stripDocstrings removes complete triple-quoted strings from line and
// reports the delimiter of one left open at the end of the line
func stripDocstrings(line string) (string, string) {
	for {
		start, delim := -1, ""
		for _, d := range []string{`"""`, `'''`} {
			if i := strings.Index(line, d); i >= 0 && (start < 0 || i < start) {
				start, delim = i, d
			}
		}
		if start < 0 {
			return line, ""
		}
		end := strings.Index(line[start+3:], delim)
		if end < 0 {
			return line[:start], delim
		}
		line = line[:start] + line[start+3+end+3:]
	}
}

func isImport(stmt string) bool {
	return strings.HasPrefix(stmt, "import ") || strings.HasPrefix(stmt, "from ")
}

// stripComment cuts line at the first '#' outside a quoted string
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
		case c == '\'' || c == '"':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

// MatchInstalled maps module names to installed library names. A module
// matches when its normalized name is installed, or when its alias is.
// The result is sorted and unique; unmatched modules are returned separately.
func MatchInstalled(modules []string, installed core.NameSet, aliases map[string]string) (matched, unmatched []string) {
	found := core.NameSet{}
	missing := core.NameSet{}

	for _, module := range modules {
		if alias, ok := aliases[module]; ok {
			if lib := helpers.NormalizeLibraryName(alias); installed.Has(lib) {
				found.Add(lib)
				continue
			}
		}
		if lib := helpers.NormalizeLibraryName(module); installed.Has(lib) {
			found.Add(lib)
			continue
		}
		missing.Add(module)
	}

	return found.Sorted(), missing.Sorted()
}

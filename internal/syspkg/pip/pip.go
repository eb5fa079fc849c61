package pip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/helpers"
	"github.com/quantmind-br/libmgr/internal/syspkg"
)

const (
	fieldName       = "Name"
	fieldVersion    = "Version"
	fieldRequires   = "Requires"
	fieldRequiredBy = "Required-by"
)

// versionRegex captures the dotted three-component core of a version string
var versionRegex = regexp.MustCompile(`\d+\.\d+\.\d+`)

// DefaultCommand is the pip invocation used when none is configured
var DefaultCommand = []string{"pip"}

// PipProvider implements the Provider interface on top of the pip CLI
type PipProvider struct {
	runner  helpers.CommandRunner
	command []string
	stdout  io.Writer
	stderr  io.Writer
}

// NewPipProvider creates a new pip provider.
// command is the pip invocation, e.g. ["pip"] or ["python3", "-m", "pip"].
func NewPipProvider(command []string) *PipProvider {
	return NewPipProviderWithRunner(helpers.NewOSCommandRunner(), command)
}

// NewPipProviderWithRunner creates a new pip provider with a custom command runner
func NewPipProviderWithRunner(runner helpers.CommandRunner, command []string) *PipProvider {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &PipProvider{
		runner:  runner,
		command: append([]string(nil), command...),
	}
}

// WithOutput streams install and uninstall output to the given writers
// instead of buffering it.
func (p *PipProvider) WithOutput(stdout, stderr io.Writer) *PipProvider {
	p.stdout = stdout
	p.stderr = stderr
	return p
}

func (p *PipProvider) Name() string {
	return "pip"
}

// Executable returns the program that is run for every pip invocation
func (p *PipProvider) Executable() string {
	return p.command[0]
}

func (p *PipProvider) args(sub ...string) []string {
	args := make([]string, 0, len(p.command)-1+len(sub))
	args = append(args, p.command[1:]...)
	return append(args, sub...)
}

// ListInstalled returns the normalized names of all installed libraries
func (p *PipProvider) ListInstalled(ctx context.Context) ([]string, error) {
	output, err := p.runner.RunCommand(ctx, p.Executable(), p.args("list")...)
	if err != nil {
		return nil, commandError("list", "", err)
	}
	return parseList(output)
}

// Show retrieves the dependency metadata of an installed library
func (p *PipProvider) Show(ctx context.Context, name string) (*core.LibraryRecord, error) {
	output, err := p.runner.RunCommand(ctx, p.Executable(), p.args("show", name)...)
	if err != nil {
		return nil, commandError("show", name, err)
	}
	return parseShow(name, output)
}

// Install installs all names with one pip invocation
func (p *PipProvider) Install(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return core.ErrNothingToInstall
	}
	if err := p.mutate(ctx, p.args(append([]string{"install"}, names...)...)); err != nil {
		return commandError("install", strings.Join(names, " "), err)
	}
	return nil
}

// Uninstall removes a single library. pip runs non-interactively, so its
// confirmation is always answered with -y.
func (p *PipProvider) Uninstall(ctx context.Context, name string) error {
	if err := p.mutate(ctx, p.args("uninstall", name, "-y")); err != nil {
		return commandError("uninstall", name, err)
	}
	return nil
}

func (p *PipProvider) mutate(ctx context.Context, args []string) error {
	if p.stdout != nil || p.stderr != nil {
		return p.runner.RunCommandStreaming(ctx, p.stdout, p.stderr, p.Executable(), args...)
	}
	_, err := p.runner.RunCommand(ctx, p.Executable(), args...)
	return err
}

// commandError wraps a failed invocation, marking a missing executable
// with core.ErrCommandNotFound
func commandError(op, library string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		err = fmt.Errorf("%w: %v", core.ErrCommandNotFound, err)
	}
	return &core.CommandError{Op: op, Library: library, Err: err}
}

// parseList extracts library names from the tabular "pip list" output.
// The first two lines are the header and its separator.
func parseList(output string) ([]string, error) {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) < 2 {
		return nil, &core.ParseError{Field: "header"}
	}

	var names []string
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, helpers.NormalizeLibraryName(fields[0]))
	}
	return names, nil
}

// parseShow builds a record from "pip show" output.
// Requires and Required-by must both be present; Version is kept only when
// it contains a D.D.D component.
func parseShow(name, output string) (*core.LibraryRecord, error) {
	fields := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		// a multi-line License body may repeat keys; the dependency fields
		// come last in pip's output, so their final occurrence wins
		if _, seen := fields[key]; seen && key != fieldRequires && key != fieldRequiredBy {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}

	for _, required := range []string{fieldRequires, fieldRequiredBy} {
		if _, ok := fields[required]; !ok {
			return nil, &core.ParseError{Library: name, Field: required}
		}
	}

	recName := helpers.NormalizeLibraryName(fields[fieldName])
	if recName == "" {
		recName = helpers.NormalizeLibraryName(name)
	}

	rec := core.EmptyRecord(recName)
	rec.Version = versionRegex.FindString(fields[fieldVersion])
	rec.Requires.Add(helpers.SplitNameList(fields[fieldRequires])...)
	rec.RequiredBy.Add(helpers.SplitNameList(fields[fieldRequiredBy])...)

	return &rec, nil
}

var _ syspkg.Provider = (*PipProvider)(nil)

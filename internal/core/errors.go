package core

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitInvalidArgs     = 2
	ExitInstallFailed   = 3
	ExitUninstallFailed = 4
	ExitDatabase        = 5
	ExitCommandNotFound = 8
	ExitMalformedOutput = 9
	ExitInterrupted     = 130
)

// Sentinel errors
var (
	// ErrUnknownLibrary is returned when a library is not in the installed set.
	ErrUnknownLibrary = errors.New("unknown library")

	// ErrProtected marks a library skipped by the protection policy.
	ErrProtected = errors.New("library is protected")

	// ErrCommandFailed is matched by every CommandError.
	ErrCommandFailed = errors.New("package manager command failed")

	// ErrMalformedOutput is matched by every ParseError.
	ErrMalformedOutput = errors.New("malformed package manager output")

	// ErrNothingToInstall is returned when an install request carries no names.
	ErrNothingToInstall = errors.New("nothing to install")

	// ErrInvalidArgument marks user input rejected before any query.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCommandNotFound is returned when the package manager executable is missing.
	ErrCommandNotFound = errors.New("package manager not found")
)

// CommandError reports a package manager invocation that did not succeed
type CommandError struct {
	Op      string // list, show, install, uninstall
	Library string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Library != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Library, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCommandFailed) true for any CommandError.
func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// ParseError reports package manager output that lacks an expected field
type ParseError struct {
	Library string
	Field   string
}

func (e *ParseError) Error() string {
	if e.Library != "" {
		return fmt.Sprintf("parse %s output: missing %q", e.Library, e.Field)
	}
	return fmt.Sprintf("parse output: missing %q", e.Field)
}

// Is makes errors.Is(err, ErrMalformedOutput) true for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrMalformedOutput }

// ExitCodeFor maps an error to the process exit code
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cmdErr *CommandError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrCommandNotFound):
		return ExitCommandNotFound
	case errors.Is(err, ErrMalformedOutput):
		return ExitMalformedOutput
	case errors.As(err, &cmdErr):
		switch cmdErr.Op {
		case "install":
			return ExitInstallFailed
		case "uninstall":
			return ExitUninstallFailed
		}
		return ExitGeneral
	case errors.Is(err, ErrUnknownLibrary), errors.Is(err, ErrInvalidArgument):
		return ExitInvalidArgs
	}

	return ExitGeneral
}

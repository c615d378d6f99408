package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Exit codes used by the landscape CLI.
const (
	ExitGeneral    = 1
	ExitValidation = 2
	ExitAuth       = 5
	ExitConfig     = 7
	ExitExternal   = 8
	ExitInternal   = 10
	ExitBuild      = 11
	ExitCanceled   = 130
)

// hintKeys are the context keys worth showing to a user, in display order.
var hintKeys = []string{"path", "item", "url", "source", "bucket", "status"}

// CLIErrorAdapter turns errors into user-facing messages and exit codes.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor determines the exit code for err. Interrupted runs exit with
// 130 whatever the error chain holds.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if stdErrors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	ce, ok := AsClassified(err)
	if !ok {
		return ExitGeneral
	}
	switch ce.Category() {
	case CategoryValidation:
		return ExitValidation
	case CategoryConfig:
		return ExitConfig
	case CategoryAuth:
		return ExitAuth
	case CategoryNetwork, CategoryExternal, CategoryNotFound:
		return ExitExternal
	case CategoryBuild, CategoryRender, CategoryFileSystem, CategoryCache:
		return ExitBuild
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitGeneral
	}
}

// FormatError formats err for display. Classified errors get their most
// useful context appended, e.g. "(path=data.yml)".
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if ce.Category() == CategoryInternal && !a.verbose {
		return "Internal error occurred (use -v for details)"
	}
	msg := "Error: " + err.Error()
	var hints []string
	for _, k := range hintKeys {
		if v, ok := ce.Context().Get(k); ok {
			hints = append(hints, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if len(hints) > 0 {
		msg += " (" + strings.Join(hints, ", ") + ")"
	}
	return msg
}

// HandleError reports err and exits with its exit code. A nil err returns.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	fmt.Fprintln(os.Stderr, a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

// shouldLog logs everything in verbose mode, otherwise only fatal or
// unclassified errors.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if ce, ok := AsClassified(err); ok {
		return ce.IsFatal()
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	ce, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.String("error", err.Error()))
		return
	}
	level := slog.LevelError
	if ce.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, ce.Message(), ce.LogAttrs()...)
}

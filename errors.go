package duployan

import "fmt"

// CompileSeverity is the severity level of a CompileError, mirroring the
// teacher's ot.ErrorSeverity.
type CompileSeverity int

const (
	// SeverityCritical means the build cannot produce a usable font.
	SeverityCritical CompileSeverity = iota
	// SeverityMajor means a glyph was replaced by a visible placeholder
	// (spec.md §7's InvalidDTLS/InvalidOverlap/InvalidStep recovery) but
	// the build otherwise completed.
	SeverityMajor
	// SeverityMinor is an issue safe to ignore in most cases.
	SeverityMinor
)

func (s CompileSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// CompileError is one problem found while compiling a schema set, tagged
// with the phase or package boundary at which it was found and the
// schema's code points when known.
type CompileError struct {
	Phase      string
	Issue      string
	Severity   CompileSeverity
	CodePoints []rune
}

func (e CompileError) Error() string {
	if len(e.CodePoints) > 0 {
		return fmt.Sprintf("[%s] %s: %s (code points %U)", e.Severity, e.Phase, e.Issue, e.CodePoints)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Phase, e.Issue)
}

// CompileWarning is a non-critical issue recorded during compilation.
type CompileWarning struct {
	Phase string
	Issue string
}

func (w CompileWarning) String() string {
	return fmt.Sprintf("[WARNING] %s: %s", w.Phase, w.Issue)
}

// errorCollector holds the errors and warnings recorded during a build.
// Build records a failing phase's error here as a critical error and then
// returns at once, without running later phases. Modeled on the teacher's
// ot.errorCollector.
type errorCollector struct {
	errors   []CompileError
	warnings []CompileWarning
}

func (ec *errorCollector) addError(phase, issue string, severity CompileSeverity, codePoints []rune) {
	ec.errors = append(ec.errors, CompileError{Phase: phase, Issue: issue, Severity: severity, CodePoints: codePoints})
}

func (ec *errorCollector) addWarning(phase, issue string) {
	ec.warnings = append(ec.warnings, CompileWarning{Phase: phase, Issue: issue})
}

func (ec *errorCollector) hasCriticalErrors() bool {
	for _, e := range ec.errors {
		if e.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func (ec *errorCollector) criticalErrors() []CompileError {
	critical := make([]CompileError, 0)
	for _, e := range ec.errors {
		if e.Severity == SeverityCritical {
			critical = append(critical, e)
		}
	}
	return critical
}

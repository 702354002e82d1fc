package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"

	"github.com/nfrund/livetone/internal/validation"
)

// ErrorReporter classifies and records every failure the gate sees. It never
// retries: one attempt, one report.
type ErrorReporter struct {
	mu          sync.Mutex
	errorCounts map[string]int
	lastErrors  map[string]*ErrorReport
}

// ErrorSeverity categorizes the impact of errors
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical" // code tried to reach a forbidden API
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
)

// ErrorReport contains everything known about one failure
type ErrorReport struct {
	Err             error
	Type            ErrorType
	Fragment        string
	Severity        ErrorSeverity
	SuggestedAction string
	Occurrences     int
	FirstOccurrence bool
	Timestamp       time.Time
}

// ErrorSummary provides aggregated error information
type ErrorSummary struct {
	TotalErrors      int
	ErrorsByType     map[ErrorType]int
	ErrorsByFragment map[string]int
	MostCommonError  *ErrorReport
	LastErrorTime    time.Time
}

// NewErrorReporter creates an empty reporter
func NewErrorReporter() *ErrorReporter {
	return &ErrorReporter{
		errorCounts: make(map[string]int),
		lastErrors:  make(map[string]*ErrorReport),
	}
}

// Classify maps an error returned by validation or execution to an ErrorType.
func Classify(err error) ErrorType {
	var (
		scriptErr   *ScriptError
		syntaxErr   parser.ErrorList
		interrupted *goja.InterruptedError
	)
	switch {
	case errors.As(err, &scriptErr):
		return scriptErr.Type
	case errors.Is(err, validation.ErrDisallowed):
		return ErrorTypeSecurityViolation
	case errors.As(err, &syntaxErr):
		return ErrorTypeInvalidSyntax
	case errors.As(err, &interrupted), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	default:
		return ErrorTypeExecution
	}
}

// ReportError records err against fragment and logs it
func (er *ErrorReporter) ReportError(ctx context.Context, fragment string, err error) *ErrorReport {
	errType := Classify(err)
	errorKey := fragment + "/" + string(errType)

	er.mu.Lock()
	er.errorCounts[errorKey]++
	count := er.errorCounts[errorKey]
	report := &ErrorReport{
		Err:             err,
		Type:            errType,
		Fragment:        fragment,
		Severity:        er.determineSeverity(errType, count),
		SuggestedAction: suggestAction(errType),
		Occurrences:     count,
		FirstOccurrence: count == 1,
		Timestamp:       time.Now(),
	}
	er.lastErrors[errorKey] = report
	er.mu.Unlock()

	er.logError(ctx, report)
	return report
}

func (er *ErrorReporter) determineSeverity(errType ErrorType, count int) ErrorSeverity {
	switch errType {
	case ErrorTypeSecurityViolation:
		return SeverityCritical
	case ErrorTypeTimeout:
		return SeverityHigh
	case ErrorTypeCompilation, ErrorTypeInvalidSyntax:
		return SeverityMedium
	case ErrorTypeExecution:
		// the same script failing over and over
		if count > 3 {
			return SeverityHigh
		}
		return SeverityMedium
	case ErrorTypeNotFound:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

func suggestAction(errType ErrorType) string {
	switch errType {
	case ErrorTypeSecurityViolation:
		return "Remove the disallowed calls, constructors and references. Use the helpers on LiveTone instead."
	case ErrorTypeInvalidSyntax:
		return "Fix the syntax error at the reported position."
	case ErrorTypeTimeout:
		return "Check for infinite loops. Long-running work belongs in scheduled callbacks."
	case ErrorTypeExecution:
		return "Review script logic. The code passed validation but threw while running."
	case ErrorTypeCompilation:
		return "The runtime could not prepare the script. Check the fragment for unsupported syntax."
	case ErrorTypeNotFound:
		return "Ensure the script file exists."
	default:
		return "Review error details and script implementation."
	}
}

func (er *ErrorReporter) logError(ctx context.Context, report *ErrorReport) {
	attrs := []slog.Attr{
		slog.String("component", "execution_gate"),
		slog.String("fragment", report.Fragment),
		slog.String("error_type", string(report.Type)),
		slog.String("severity", string(report.Severity)),
		slog.Int("occurrences", report.Occurrences),
		slog.String("error", report.Err.Error()),
		slog.String("suggestion", report.SuggestedAction),
	}

	level := slog.LevelWarn
	switch report.Severity {
	case SeverityCritical, SeverityHigh:
		level = slog.LevelError
	case SeverityLow:
		level = slog.LevelInfo
	}
	slog.LogAttrs(ctx, level, fmt.Sprintf("Script %s error", report.Type), attrs...)
}

// GetErrorSummary returns aggregated error statistics
func (er *ErrorReporter) GetErrorSummary() *ErrorSummary {
	er.mu.Lock()
	defer er.mu.Unlock()

	summary := &ErrorSummary{
		ErrorsByType:     make(map[ErrorType]int),
		ErrorsByFragment: make(map[string]int),
	}

	mostCommonCount := 0
	for errorKey, count := range er.errorCounts {
		last := er.lastErrors[errorKey]
		summary.TotalErrors += count
		summary.ErrorsByType[last.Type] += count
		summary.ErrorsByFragment[last.Fragment] += count

		if count > mostCommonCount {
			mostCommonCount = count
			summary.MostCommonError = last
		}
		if last.Timestamp.After(summary.LastErrorTime) {
			summary.LastErrorTime = last.Timestamp
		}
	}

	return summary
}

// ClearErrorHistory clears error tracking history
func (er *ErrorReporter) ClearErrorHistory() {
	er.mu.Lock()
	defer er.mu.Unlock()
	er.errorCounts = make(map[string]int)
	er.lastErrors = make(map[string]*ErrorReport)
	slog.Info("Error history cleared", "component", "execution_gate")
}

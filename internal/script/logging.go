package script

import (
	"context"
	"log/slog"
	"time"
)

// GateLogger provides centralized logging for the execution gate
type GateLogger struct {
	baseFields []slog.Attr
}

// NewGateLogger creates a new gate logger with base fields
func NewGateLogger() *GateLogger {
	return &GateLogger{
		baseFields: []slog.Attr{
			slog.String("component", "execution_gate"),
		},
	}
}

func (gl *GateLogger) log(level slog.Level, message, fragment, eventType string, additionalFields ...slog.Attr) {
	fields := make([]slog.Attr, 0, len(gl.baseFields)+2+len(additionalFields))
	fields = append(fields, gl.baseFields...)
	if fragment != "" {
		fields = append(fields, slog.String("fragment", fragment))
	}
	fields = append(fields, slog.String("event_type", eventType))
	fields = append(fields, additionalFields...)

	slog.LogAttrs(context.TODO(), level, message, fields...)
}

// LogValidation logs the outcome of validating one fragment
func (gl *GateLogger) LogValidation(fragment string, violations int, duration time.Duration) {
	level := slog.LevelDebug
	if violations > 0 {
		level = slog.LevelInfo
	}
	gl.log(level, "Fragment validated", fragment, "validation",
		slog.Int("violations", violations),
		slog.Duration("duration", duration),
	)
}

// LogRejection logs a fragment refused before execution
func (gl *GateLogger) LogRejection(fragment string, err error) {
	gl.log(slog.LevelWarn, "Fragment rejected", fragment, "rejection",
		slog.String("error", err.Error()),
	)
}

// LogExecution logs execution events with consistent structure
func (gl *GateLogger) LogExecution(level slog.Level, message string, fragments int, additionalFields ...slog.Attr) {
	fields := append([]slog.Attr{slog.Int("fragments", fragments)}, additionalFields...)
	gl.log(level, message, "", "execution", fields...)
}

// LogLifecycle logs fragment lifecycle events (loading, reloading, etc.)
func (gl *GateLogger) LogLifecycle(level slog.Level, message, fragment string, additionalFields ...slog.Attr) {
	gl.log(level, message, fragment, "lifecycle", additionalFields...)
}

// LogPerformance logs how long one attempt took
func (gl *GateLogger) LogPerformance(fragments int, duration time.Duration, success bool) {
	level := slog.LevelDebug
	if !success {
		level = slog.LevelWarn
	}
	gl.log(level, "Execution metrics", "", "performance",
		slog.Int("fragments", fragments),
		slog.Duration("execution_time", duration),
		slog.Bool("success", success),
	)
}

// LogHotReload logs file watcher events
func (gl *GateLogger) LogHotReload(action, fragment, filePath string, err error) {
	fields := []slog.Attr{
		slog.String("file_path", filePath),
		slog.String("action", action),
		slog.Bool("success", err == nil),
	}
	level := slog.LevelInfo
	if err != nil {
		fields = append(fields, slog.String("error", err.Error()))
		level = slog.LevelError
	}
	gl.log(level, "Fragment hot-reload "+action, fragment, "hot_reload", fields...)
}

var gateLogger = NewGateLogger()

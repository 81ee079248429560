// Package logging writes leveled progress and diagnostic lines to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Level orders log verbosity from least to most verbose
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = map[Level]string{
	LevelError: "error",
	LevelWarn:  "warn",
	LevelInfo:  "info",
	LevelDebug: "debug",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts error|warn|info|debug into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level %q (error|warn|info|debug)", s)
}

// DebugFromEnv reports whether FWBUILD_DEBUG forces debug output
func DebugFromEnv() bool {
	switch os.Getenv("FWBUILD_DEBUG") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Color palette
var (
	colorGreen  = lipgloss.Color("42")
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("196")
	colorBlue   = lipgloss.Color("39")
	colorGray   = lipgloss.Color("245")
)

type styles struct {
	tags    map[Level]lipgloss.Style
	success lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		tags: map[Level]lipgloss.Style{
			LevelError: r.NewStyle().Foreground(colorRed).Bold(true),
			LevelWarn:  r.NewStyle().Foreground(colorYellow).Bold(true),
			LevelInfo:  r.NewStyle().Foreground(colorBlue),
			LevelDebug: r.NewStyle().Foreground(colorGray),
		},
		success: r.NewStyle().Foreground(colorGreen).Bold(true),
	}
}

// Logger writes leveled lines like "[INFO] message" to a single writer
type Logger struct {
	out    io.Writer
	level  Level
	styles styles
}

// New creates a logger writing lines at or below level to out
func New(out io.Writer, level Level) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{
		out:    out,
		level:  level,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, LevelError)
}

// Enabled reports whether lines at level are written
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level <= l.level
}

// Writer returns the underlying writer, for streaming subprocess output
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return l.out
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

// Successf writes an info-level line with the success tag
func (l *Logger) Successf(format string, args ...any) {
	if !l.Enabled(LevelInfo) {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(l.out, "%s %s\n", l.styles.success.Render("[OK]"), msg)
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	tag := "[" + strings.ToUpper(level.String()) + "]"
	fmt.Fprintf(l.out, "%s %s\n", l.styles.tags[level].Render(tag), msg)
}

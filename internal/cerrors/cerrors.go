// Package cerrors formats Ward's four error taxonomies (lex, parse,
// compilation, and evaluation) with source context and a caret pointing
// at the offending column.
package cerrors

import (
	"fmt"
	"strings"

	"github.com/wardlang/ward/internal/token"
)

// Diagnostic is a single formatted problem report: a message, the source
// position it concerns, and which phase raised it.
type Diagnostic struct {
	Phase   string // "lex", "parse", "compile", "eval"
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// New builds a Diagnostic for phase at pos against source/file.
func New(phase, message, source, file string, pos token.Position) *Diagnostic {
	return &Diagnostic{Phase: phase, Message: message, Source: source, File: file, Pos: pos}
}

func (d *Diagnostic) Error() string { return d.Format(false) }

// Format renders the diagnostic with a source-line excerpt and caret. If
// color is true, ANSI codes highlight the caret and message.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "%s error in %s:%d:%d\n", d.Phase, d.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s error at %d:%d\n", d.Phase, d.Pos.Line, d.Pos.Column)
	}

	if line := d.sourceLine(d.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max0(d.Pos.Column-1)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (d *Diagnostic) sourceLine(lineNum int) string {
	if d.Source == "" {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of diagnostics from the same phase, numbering
// them when there is more than one.
func FormatAll(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(diags))
	for i, d := range diags {
		fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(diags))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

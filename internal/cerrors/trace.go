package cerrors

import (
	"fmt"
	"strings"

	"github.com/wardlang/ward/internal/token"
)

// RuleFrame is one entry in the chain of rules being evaluated when an
// EvaluationError occurred — e.g. allow -> check_roles -> has_role.
type RuleFrame struct {
	RuleName string
	Pos      token.Position
}

func (f RuleFrame) String() string {
	return fmt.Sprintf("%s [%d:%d]", f.RuleName, f.Pos.Line, f.Pos.Column)
}

// RuleTrace is an evaluation call chain, oldest entry first.
type RuleTrace []RuleFrame

// String prints the trace innermost-frame-first, the order a user debugging
// a failure wants to read it in.
func (t RuleTrace) String() string {
	if len(t) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(t) - 1; i >= 0; i-- {
		sb.WriteString(t[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Push returns a new trace with frame appended.
func (t RuleTrace) Push(frame RuleFrame) RuleTrace {
	next := make(RuleTrace, len(t)+1)
	copy(next, t)
	next[len(t)] = frame
	return next
}

// Top returns the innermost frame, or nil if the trace is empty.
func (t RuleTrace) Top() *RuleFrame {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

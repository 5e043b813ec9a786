package eval

import (
	"fmt"

	"github.com/wardlang/ward/internal/token"
)

// Error is an EvaluationError: a runtime failure distinct from a
// plain "no result" — a builtin raised an error, an object comprehension
// produced conflicting keys, or a partial-object rule's branches disagreed on
// a shared key.
type Error struct {
	Message string
	Rule    string
	Pos     token.Position
}

func (e *Error) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("rule %q: %s at %s", e.Rule, e.Message, e.Pos)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

func errf(pos token.Position, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Pos: pos}
}

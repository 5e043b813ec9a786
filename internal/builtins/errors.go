package builtins

import "fmt"

func errArgType(name string, got fmt.Stringer) error {
	return fmt.Errorf("%s: unexpected argument type %s", name, got)
}

package embed

import "fmt"

// ErrFunctionNotRegistered reports that Run was asked to invoke a host
// function name that was never passed to RegisterFunction.
func ErrFunctionNotRegistered(name string) error {
	return fmt.Errorf("embed: no function registered under name %q", name)
}

// ErrUnstableResult is returned by Value when an action produces an
// unstable antiform (pack, error, ghost) instead of a plain result; use
// Lift instead when an unstable result is expected.
var ErrUnstableResult = fmt.Errorf("embed: result is an unstable antiform, use Lift instead")

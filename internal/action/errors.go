package action

import "errors"

// ErrTooFewArguments is thrown when the feed driving Apply runs out of
// elements while paramlist slots are still open.
var ErrTooFewArguments = errors.New("action: too few arguments")

// ErrTypeMismatch is thrown when an argument fails its parameter's
// TypeConstraint.
var ErrTypeMismatch = errors.New("action: argument does not satisfy parameter type constraint")

// ErrNotAnAction is returned by callers that expected to recover an *Action
// from a cell and found something else.
var ErrNotAnAction = errors.New("action: cell does not reference an action")

// ErrNotInfix is returned by NewInfixCallLevel when called against an
// action that is not infix, or whose first parameter is no longer open
// (see Specialize's infix-demotion rule).
var ErrNotInfix = errors.New("action: action is not callable as infix")

// ErrUnknownLabel is thrown by Apply when a label: cell in the argument
// feed names a parameter the action does not have.
var ErrUnknownLabel = errors.New("action: apply label does not name a parameter")

// ErrTooManyArguments is thrown by Apply in strict mode when feed elements
// remain after every evars slot has been visited.
var ErrTooManyArguments = errors.New("action: too many arguments for apply")

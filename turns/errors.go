package turns

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrClosed is returned by operations on a closed Tree.
var ErrClosed = errors.New("turn tree is closed")

// InvariantError is the value a Tree panics with when it observes a state it
// can never be in. Dump holds the state of the tree at that moment.
type InvariantError struct {
	Msg  string
	Dump string

	stack error
}

func (err *InvariantError) Error() string { return "invariant violation: " + err.Msg }

func (err *InvariantError) Format(s fmt.State, c rune) {
	switch c {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s\n%s%+v", err.Error(), err.Dump, err.stack)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, err.Error())
	}
}

// violation logs the state of the tree and panics with an *InvariantError.
// It must be called with the tree lock held.
func (t *Tree) violation(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	err := &InvariantError{
		Msg:   msg,
		Dump:  t.dump(),
		stack: errors.New(msg),
	}
	t.log.Error().Str("dump", err.Dump).Msg(err.Error())
	panic(err)
}

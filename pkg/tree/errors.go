package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDecorator is returned when a decorator is nil or implements no hook.
	ErrMalformedDecorator = errors.New("tree: malformed decorator")
	// ErrReservedProperty is returned when initial properties use a reserved key.
	ErrReservedProperty = errors.New("tree: reserved property")
	// ErrIndexOutOfRange is returned for insert, remove and move positions outside the list bounds.
	ErrIndexOutOfRange = errors.New("tree: index out of range")
	// ErrCycle is returned when a move would place a node beneath itself.
	ErrCycle = errors.New("tree: move would create a cycle")
	// ErrDestroyed is returned when operating on a destroyed entity.
	ErrDestroyed = errors.New("tree: entity destroyed")
	// ErrDetached is returned when moving a node that is not attached to a list.
	ErrDetached = errors.New("tree: node is not attached")
	// ErrForeignEntity is returned when an operation mixes entities of different trees.
	ErrForeignEntity = errors.New("tree: entity belongs to another tree")
)

// IndexError describes a position rejected by a list operation.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d]", e.Op, e.Index, e.Len)
}

// Unwrap allows errors.Is(err, ErrIndexOutOfRange).
func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// HookError reports a decorator callback failure. The structural mutation that
// triggered the hook has already been applied when a HookError is returned, and
// callbacks registered after the failing one did not run.
type HookError struct {
	Kind      Kind
	Hook      Hook
	Decorator string
	Err       error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s.%s decorator %s: %v", e.Kind, e.Hook, e.Decorator, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

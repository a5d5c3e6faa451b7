package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrIllegalMove  = errors.New("illegal move")
	ErrIncompatible = errors.New("incompatible block type")
	ErrNoDecision   = errors.New("no drop decision")
)

// NestError reports a capability mismatch between a parent and a child type.
type NestError struct {
	Parent BlockType
	Child  BlockType
}

func (e *NestError) Error() string {
	return fmt.Sprintf("%s cannot be placed inside %s", e.Child, e.Parent)
}

func (e *NestError) Is(target error) bool {
	return target == ErrIncompatible
}

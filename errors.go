package main

import (
	"errors"
	"fmt"
)

var (
	ErrNoConnections    = errors.New("no usable connections")
	ErrInvalidPartition = errors.New("invalid partition")
	ErrProtocol         = errors.New("protocol error")
	ErrConfig           = errors.New("invalid configuration")
	ErrRunInProgress    = errors.New("run already in progress")
)

// ConnectError is a failed connection attempt. The pool drops the attempt and
// carries on with the rest.
type ConnectError struct {
	Index int
	Err   error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connection %d: could not connect: %v", e.Index, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// IOError is a send or receive failure on an established connection.
type IOError struct {
	Op     string
	ConnId int
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("connection %d: %s: %v", e.ConnId, e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func protocolError(line string, reason string) error {
	return fmt.Errorf("%w: %s: %q", ErrProtocol, reason, line)
}

func configError(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, a...))
}

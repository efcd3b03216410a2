/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


package checktime

import (
	"errors"
	"fmt"
)

// ExitCode is a process exit code
type ExitCode int

// exit codes, config and IO ones are only used with detailed exit codes
const (
	ExitOK      ExitCode = 0
	ExitFailure ExitCode = 1
	// EX_IOERR from sysexits.h
	ExitIOErr ExitCode = 74
	// EX_CONFIG from sysexits.h
	ExitConfig ExitCode = 78
)

// ConfigError means the environment contract is violated
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// QueryError means kernel clock state could not be read
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to query kernel clock state: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Cause is why the clock is considered bad
type Cause int

// clock failure causes, in the order they are checked
const (
	CauseBadState Cause = iota
	CauseMarginExceeded
	CauseUnsynchronized
)

func (c Cause) String() string {
	switch c {
	case CauseBadState:
		return "bad_state"
	case CauseMarginExceeded:
		return "margin_exceeded"
	case CauseUnsynchronized:
		return "unsynchronized"
	}
	return fmt.Sprintf("unknown(%d)", int(c))
}

// ClockError means the clock itself is not good enough
type ClockError struct {
	Cause Cause
	// MarginUS is how much estimated error exceeds the limit, set for CauseMarginExceeded
	MarginUS int64
}

func (e *ClockError) Error() string {
	switch e.Cause {
	case CauseBadState:
		return "clock marked bad/unsynchronized by kernel"
	case CauseMarginExceeded:
		return fmt.Sprintf("max estimated error exceeded by %d(usec)", e.MarginUS)
	case CauseUnsynchronized:
		return "clock not in sync"
	}
	return fmt.Sprintf("clock error: %v", e.Cause)
}

// ExitCodeFor maps check error to exit code. nil is success.
func ExitCodeFor(err error, detailed bool) ExitCode {
	if err == nil {
		return ExitOK
	}
	if !detailed {
		return ExitFailure
	}
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		return ExitConfig
	}
	var qerr *QueryError
	if errors.As(err, &qerr) {
		return ExitIOErr
	}
	return ExitFailure
}

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
	"time"

	"github.com/dcos/check-time/clock"
	log "github.com/sirupsen/logrus"
)

// Outcome is a terminal state of a single check
type Outcome string

// possible outcomes
const (
	OutcomeOK             Outcome = "ok"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeConfigError    Outcome = "config_error"
	OutcomeIOError        Outcome = "io_error"
	OutcomeBadState       Outcome = "bad_state"
	OutcomeMarginExceeded Outcome = "margin_exceeded"
	OutcomeUnsync         Outcome = "unsynchronized"
)

// Outcomes lists all outcomes, useful for exporting them
var Outcomes = []Outcome{
	OutcomeOK,
	OutcomeSkipped,
	OutcomeConfigError,
	OutcomeIOError,
	OutcomeBadState,
	OutcomeMarginExceeded,
	OutcomeUnsync,
}

// Result is what a single check ended with
type Result struct {
	Outcome Outcome
	// Status is nil unless kernel was queried successfully
	Status *clock.SyncStatus
	Err    error
}

// outcomeFor maps error returned by a check stage to Outcome
func outcomeFor(err error) Outcome {
	switch e := err.(type) {
	case nil:
		return OutcomeOK
	case *ConfigError:
		return OutcomeConfigError
	case *QueryError:
		return OutcomeIOError
	case *ClockError:
		switch e.Cause {
		case CauseBadState:
			return OutcomeBadState
		case CauseMarginExceeded:
			return OutcomeMarginExceeded
		}
		return OutcomeUnsync
	}
	return OutcomeIOError
}

// Evaluate checks kernel clock state against maxEstError.
// Checks run in fixed order and the first failing one wins.
func Evaluate(st *clock.SyncStatus, maxEstError time.Duration) error {
	if st.State == clock.TimeError {
		return &ClockError{Cause: CauseBadState}
	}
	if margin := st.EstErrorUS - maxEstError.Microseconds(); margin > 0 {
		return &ClockError{Cause: CauseMarginExceeded, MarginUS: margin}
	}
	// If NTP is down for a few hours the kernel marks the clock unsynchronized
	if st.Unsynchronized {
		return &ClockError{Cause: CauseUnsynchronized}
	}
	return nil
}

// Checker checks kernel clock synchronization once
type Checker struct {
	cfg     Config
	querier clock.Querier
	logger  *log.Logger
}

// NewChecker returns Checker. If logger is nil the logrus standard logger is used.
func NewChecker(cfg Config, querier clock.Querier, logger *log.Logger) *Checker {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if cfg.MaxEstError == 0 {
		cfg.MaxEstError = DefaultMaxEstError
	}
	return &Checker{cfg: cfg, querier: querier, logger: logger}
}

// Check applies the gate and, if enabled, evaluates kernel clock state.
// Kernel is queried at most once.
func (c *Checker) Check() *Result {
	decision, err := c.cfg.Gate()
	if err != nil {
		return &Result{Outcome: OutcomeConfigError, Err: err}
	}
	if decision == GateSkip {
		return &Result{Outcome: OutcomeSkipped}
	}
	st, err := c.querier.Query()
	if err != nil {
		qerr := &QueryError{Err: err}
		return &Result{Outcome: outcomeFor(qerr), Err: qerr}
	}
	c.logger.Debugf("kernel clock state: %s, estimated error %dus, maximum error %dus, status 0x%x (%s)",
		st.State, st.EstErrorUS, st.MaxErrorUS, st.Status, clock.StatusString(st.Status))
	err = Evaluate(st, c.cfg.MaxEstError)
	return &Result{Outcome: outcomeFor(err), Status: st, Err: err}
}

// Report writes the verdict line for the result
func (c *Checker) Report(res *Result) {
	switch res.Outcome {
	case OutcomeOK:
		c.logger.Info("clock is in sync")
	case OutcomeSkipped:
		c.logger.Warnf("%s is %q, not checking the clock, passing no matter what", EnableEnv, "false")
	default:
		c.logger.Error(res.Err)
	}
}

// Run performs the check, reports it and returns exit code for the process
func (c *Checker) Run() ExitCode {
	res := c.Check()
	// metrics problems must not change the verdict, and verdict is the last line
	if c.cfg.Textfile != "" {
		if err := WriteTextfile(c.cfg.Textfile, res, time.Now()); err != nil {
			c.logger.Warningf("failed to write metrics to %s: %v", c.cfg.Textfile, err)
		}
	}
	c.Report(res)
	return ExitCodeFor(res.Err, c.cfg.DetailedExitCodes)
}

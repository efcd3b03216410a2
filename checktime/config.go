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
	"fmt"
	"time"
)

// EnableEnv is the environment variable which turns the clock check on or off
const EnableEnv = "ENABLE_CHECK_TIME"

// DefaultMaxEstError is the largest kernel estimated error we accept
const DefaultMaxEstError = 100 * time.Millisecond

// GateDecision is what to do after looking at EnableEnv
type GateDecision int

// possible gate decisions
const (
	GateCheck GateDecision = iota
	GateSkip
)

func (g GateDecision) String() string {
	switch g {
	case GateCheck:
		return "check"
	case GateSkip:
		return "skip"
	}
	return fmt.Sprintf("unknown(%d)", int(g))
}

// Config is a check-time configuration
type Config struct {
	// EnableValue is the value of EnableEnv, only meaningful when EnableSet is true
	EnableValue string
	EnableSet   bool
	// MaxEstError is compared against kernel estimated error, microsecond precision
	MaxEstError time.Duration
	// DetailedExitCodes makes config and query failures exit with sysexits codes instead of 1
	DetailedExitCodes bool
	// Textfile is a path to write node_exporter textfile metrics to, disabled if empty
	Textfile string
}

// DefaultConfig returns Config with default values. Check is not enabled.
func DefaultConfig() Config {
	return Config{
		MaxEstError: DefaultMaxEstError,
	}
}

// ConfigFromEnv returns DefaultConfig with the gate filled from environment.
// lookup is normally os.LookupEnv.
func ConfigFromEnv(lookup func(string) (string, bool)) Config {
	cfg := DefaultConfig()
	cfg.EnableValue, cfg.EnableSet = lookup(EnableEnv)
	return cfg
}

// ParseGate decides whether the clock needs to be checked.
// Absent variable is an error, not a skip: the deployment must say what it wants.
func ParseGate(value string, present bool) (GateDecision, error) {
	if !present {
		return GateCheck, &ConfigError{Msg: fmt.Sprintf("%s is not set, must be %q or %q", EnableEnv, "true", "false")}
	}
	switch value {
	case "true":
		return GateCheck, nil
	case "false":
		return GateSkip, nil
	}
	return GateCheck, &ConfigError{Msg: fmt.Sprintf("%s has invalid value %q, must be %q or %q", EnableEnv, value, "true", "false")}
}

// Gate runs ParseGate on the config
func (c Config) Gate() (GateDecision, error) {
	return ParseGate(c.EnableValue, c.EnableSet)
}

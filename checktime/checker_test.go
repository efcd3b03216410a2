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
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/dcos/check-time/clock"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func enabledConfig(value string) Config {
	cfg := DefaultConfig()
	cfg.EnableValue = value
	cfg.EnableSet = true
	return cfg
}

func setupChecker(t *testing.T, cfg Config) (*Checker, *clock.MockQuerier, *test.Hook) {
	ctrl := gomock.NewController(t)
	q := clock.NewMockQuerier(ctrl)
	logger, hook := test.NewNullLogger()
	return NewChecker(cfg, q, logger), q, hook
}

func TestRunUnsetDoesNotQuery(t *testing.T) {
	c, _, hook := setupChecker(t, DefaultConfig())
	require.Equal(t, ExitFailure, c.Run())
	require.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	require.Contains(t, hook.LastEntry().Message, "is not set")
}

func TestRunUnsetDetailed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetailedExitCodes = true
	c, _, _ := setupChecker(t, cfg)
	require.Equal(t, ExitConfig, c.Run())
}

func TestRunDisabledDoesNotQuery(t *testing.T) {
	c, _, hook := setupChecker(t, enabledConfig("false"))
	require.Equal(t, ExitOK, c.Run())
	require.Len(t, hook.Entries, 1)
	require.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	require.Contains(t, hook.LastEntry().Message, "not checking the clock")
}

func TestRunInvalidValue(t *testing.T) {
	for _, v := range []string{"1", "TRUE", ""} {
		c, _, hook := setupChecker(t, enabledConfig(v))
		require.Equal(t, ExitFailure, c.Run(), "value %q", v)
		require.Contains(t, hook.LastEntry().Message, "invalid value")
	}
}

func TestRunBadState(t *testing.T) {
	c, q, hook := setupChecker(t, enabledConfig("true"))
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeError, EstErrorUS: 500000, Unsynchronized: true}, nil).Times(1)
	require.Equal(t, ExitFailure, c.Run())
	require.Equal(t, "clock marked bad/unsynchronized by kernel", hook.LastEntry().Message)
}

func TestRunMarginExceeded(t *testing.T) {
	c, q, hook := setupChecker(t, enabledConfig("true"))
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 150000}, nil).Times(1)
	require.Equal(t, ExitFailure, c.Run())
	require.Equal(t, "max estimated error exceeded by 50000(usec)", hook.LastEntry().Message)
}

func TestRunUnsynchronized(t *testing.T) {
	c, q, hook := setupChecker(t, enabledConfig("true"))
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 0, Unsynchronized: true}, nil).Times(1)
	require.Equal(t, ExitFailure, c.Run())
	require.Equal(t, "clock not in sync", hook.LastEntry().Message)
}

func TestRunOK(t *testing.T) {
	c, q, hook := setupChecker(t, enabledConfig("true"))
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 50000}, nil).Times(1)
	require.Equal(t, ExitOK, c.Run())
	require.Equal(t, log.InfoLevel, hook.LastEntry().Level)
	require.Equal(t, "clock is in sync", hook.LastEntry().Message)
}

func TestRunQueryFailure(t *testing.T) {
	c, q, hook := setupChecker(t, enabledConfig("true"))
	q.EXPECT().Query().Return(nil, fmt.Errorf("adjtimex: %w", syscall.EPERM)).Times(1)
	require.Equal(t, ExitFailure, c.Run())
	require.Contains(t, hook.LastEntry().Message, "operation not permitted")

	cfg := enabledConfig("true")
	cfg.DetailedExitCodes = true
	c, q, _ = setupChecker(t, cfg)
	q.EXPECT().Query().Return(nil, fmt.Errorf("adjtimex: %w", syscall.EPERM)).Times(1)
	require.Equal(t, ExitIOErr, c.Run())
}

func TestCheckResult(t *testing.T) {
	c, q, _ := setupChecker(t, enabledConfig("true"))
	st := &clock.SyncStatus{State: clock.TimeIns, EstErrorUS: 100000}
	q.EXPECT().Query().Return(st, nil).Times(1)
	res := c.Check()
	require.NoError(t, res.Err)
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Same(t, st, res.Status)
}

func TestCheckMaxEstErrorOverride(t *testing.T) {
	cfg := enabledConfig("true")
	cfg.MaxEstError = 10 * time.Millisecond
	c, q, _ := setupChecker(t, cfg)
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 10001}, nil).Times(1)
	res := c.Check()
	require.Equal(t, OutcomeMarginExceeded, res.Outcome)
	require.Equal(t, &ClockError{Cause: CauseMarginExceeded, MarginUS: 1}, res.Err)
}

func TestRunWritesTextfile(t *testing.T) {
	cfg := enabledConfig("true")
	cfg.Textfile = filepath.Join(t.TempDir(), "check_time.prom")
	c, q, hook := setupChecker(t, cfg)
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 50000}, nil).Times(1)
	require.Equal(t, ExitOK, c.Run())
	require.Len(t, hook.Entries, 1)
	data, err := os.ReadFile(cfg.Textfile)
	require.NoError(t, err)
	require.Contains(t, string(data), "check_time_success 1")
}

func TestRunTextfileFailureKeepsVerdict(t *testing.T) {
	cfg := enabledConfig("true")
	cfg.Textfile = filepath.Join(t.TempDir(), "does", "not", "exist", "check_time.prom")
	c, q, hook := setupChecker(t, cfg)
	q.EXPECT().Query().Return(&clock.SyncStatus{State: clock.TimeOK}, nil).Times(1)
	require.Equal(t, ExitOK, c.Run())
	require.Len(t, hook.Entries, 2)
	require.Equal(t, log.WarnLevel, hook.Entries[0].Level)
	require.Equal(t, "clock is in sync", hook.LastEntry().Message)
}

func TestEvaluateOrder(t *testing.T) {
	cases := []struct {
		name string
		st   clock.SyncStatus
		want error
	}{
		{"ok", clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 50000}, nil},
		{"boundary", clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 100000}, nil},
		{"leap pending", clock.SyncStatus{State: clock.TimeDel}, nil},
		{"unknown state", clock.SyncStatus{State: clock.State(17)}, nil},
		{"bad state wins", clock.SyncStatus{State: clock.TimeError, EstErrorUS: 150000, Unsynchronized: true}, &ClockError{Cause: CauseBadState}},
		{"margin before unsync", clock.SyncStatus{State: clock.TimeOK, EstErrorUS: 100001, Unsynchronized: true}, &ClockError{Cause: CauseMarginExceeded, MarginUS: 1}},
		{"unsync", clock.SyncStatus{State: clock.TimeOK, Unsynchronized: true}, &ClockError{Cause: CauseUnsynchronized}},
		{"negative error", clock.SyncStatus{State: clock.TimeOK, EstErrorUS: -5}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := tc.st
			err := Evaluate(&st, DefaultMaxEstError)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.Equal(t, tc.want, err)
		})
	}
}

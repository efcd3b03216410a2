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

package clock

import (
	"fmt"
	"strings"
	"time"
)

//go:generate mockgen -source=clock.go -destination=mock_querier.go -package=clock

// PPBToTimexPPM is what we use to conver PPB to PPM.
// man clock_adjtime(2):
// In struct timex, freq, ppsfreq, and stabil are ppm (parts per million) with a 16-bit fractional part.
// To covert value where 2^16=65536 is 1 ppm to ppb or back, we need this multiplier
const PPBToTimexPPM = 65.536

// State is the clock state returned by adjtimex(2)
type State int

// clock states from usr/include/linux/timex.h
const (
	TimeOK State = iota
	TimeIns
	TimeDel
	TimeOOP
	TimeWait
	TimeError
)

var stateToName = map[State]string{
	TimeOK:    "TIME_OK",
	TimeIns:   "TIME_INS",
	TimeDel:   "TIME_DEL",
	TimeOOP:   "TIME_OOP",
	TimeWait:  "TIME_WAIT",
	TimeError: "TIME_ERROR",
}

// man 2 adjtimex
var stateToDesc = map[State]string{
	TimeOK:    "Clock synchronized, no leap second adjustment pending.",
	TimeIns:   "Indicates that a leap second will be added at the end of the UTC day.",
	TimeDel:   "Indicates that a leap second will be deleted at the end of the UTC day.",
	TimeOOP:   "Insertion of a leap second is in progress.",
	TimeWait:  "A leap-second insertion or deletion has been completed.",
	TimeError: "The system clock is not synchronized to a reliable server.",
}

func (s State) String() string {
	if name, ok := stateToName[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Description returns man page explanation of the state
func (s State) Description() string {
	if desc, ok := stateToDesc[s]; ok {
		return desc
	}
	return "State is not recognized."
}

// Known reports whether kernel returned one of the documented states
func (s State) Known() bool {
	_, ok := stateToName[s]
	return ok
}

// clock status bits from usr/include/linux/timex.h
const (
	// enable PLL updates
	StaPLL int32 = 0x0001
	// enable PPS freq discipline
	StaPPSFreq int32 = 0x0002
	// enable PPS time discipline
	StaPPSTime int32 = 0x0004
	// select frequency-lock mode
	StaFLL int32 = 0x0008
	// insert leap
	StaIns int32 = 0x0010
	// delete leap
	StaDel int32 = 0x0020
	// clock unsynchronized
	StaUnsync int32 = 0x0040
	// hold frequency
	StaFreqHold int32 = 0x0080
	// PPS signal present
	StaPPSSignal int32 = 0x0100
	// PPS signal jitter exceeded
	StaPPSJitter int32 = 0x0200
	// PPS signal wander exceeded
	StaPPSWander int32 = 0x0400
	// PPS signal calibration error
	StaPPSError int32 = 0x0800
	// clock hardware fault
	StaClockErr int32 = 0x1000
	// resolution (0 = us, 1 = ns)
	StaNano int32 = 0x2000
	// mode (0 = PLL, 1 = FLL)
	StaMode int32 = 0x4000
	// clock source (0 = A, 1 = B)
	StaClk int32 = 0x8000
)

var statusBits = []struct {
	bit  int32
	name string
}{
	{StaPLL, "PLL"},
	{StaPPSFreq, "PPSFREQ"},
	{StaPPSTime, "PPSTIME"},
	{StaFLL, "FLL"},
	{StaIns, "INS"},
	{StaDel, "DEL"},
	{StaUnsync, "UNSYNC"},
	{StaFreqHold, "FREQHOLD"},
	{StaPPSSignal, "PPSSIGNAL"},
	{StaPPSJitter, "PPSJITTER"},
	{StaPPSWander, "PPSWANDER"},
	{StaPPSError, "PPSERROR"},
	{StaClockErr, "CLOCKERR"},
	{StaNano, "NANO"},
	{StaMode, "MODE"},
	{StaClk, "CLK"},
}

// StatusString decodes kernel status word into a list of flag names, like ntptime does
func StatusString(status int32) string {
	names := []string{}
	for _, b := range statusBits {
		if status&b.bit != 0 {
			names = append(names, b.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// SyncStatus is a snapshot of kernel time synchronization state.
// It is obtained with a single adjtimex(2) call and never modified afterwards.
type SyncStatus struct {
	State State
	// EstErrorUS is kernel estimated error in microseconds
	EstErrorUS int64
	// Unsynchronized is true when STA_UNSYNC is set
	Unsynchronized bool

	MaxErrorUS  int64
	Offset      time.Duration
	FreqPPB     float64
	Status      int32
	Constant    int64
	PrecisionUS int64
	// Tolerance is maximum frequency error in PPB
	Tolerance float64
}

// EstError returns estimated error as time.Duration
func (s *SyncStatus) EstError() time.Duration {
	return time.Duration(s.EstErrorUS) * time.Microsecond
}

// MaxError returns maximum error as time.Duration
func (s *SyncStatus) MaxError() time.Duration {
	return time.Duration(s.MaxErrorUS) * time.Microsecond
}

// Querier reads kernel time synchronization state
type Querier interface {
	Query() (*SyncStatus, error)
}

// fromRaw builds SyncStatus out of adjtimex(2) return code and timex fields
func fromRaw(state int, status int32, offset, freq, maxerror, esterror, constant, precision, tolerance int64) *SyncStatus {
	st := &SyncStatus{
		State:          State(state),
		EstErrorUS:     esterror,
		Unsynchronized: status&StaUnsync != 0,
		MaxErrorUS:     maxerror,
		FreqPPB:        float64(freq) / PPBToTimexPPM,
		Status:         status,
		Constant:       constant,
		PrecisionUS:    precision,
		Tolerance:      float64(tolerance) / PPBToTimexPPM,
	}
	if status&StaNano != 0 {
		st.Offset = time.Duration(offset)
	} else {
		st.Offset = time.Duration(offset) * time.Microsecond
	}
	return st
}

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

	"golang.org/x/sys/unix"
)

// Kernel queries system realtime clock state via adjtimex(2)
type Kernel struct{}

// Query reads the kernel clock state. Modes is zero so nothing is changed.
func (Kernel) Query() (*SyncStatus, error) {
	tx := &unix.Timex{}
	state, err := unix.Adjtimex(tx)
	if err != nil {
		return nil, fmt.Errorf("adjtimex: %w", err)
	}
	return fromTimex(state, tx), nil
}

func fromTimex(state int, tx *unix.Timex) *SyncStatus {
	// int64 conversions keep this working on 32-bit platforms where timex fields are int32
	return fromRaw(
		state,
		int32(tx.Status),
		int64(tx.Offset),
		int64(tx.Freq),
		int64(tx.Maxerror),
		int64(tx.Esterror),
		int64(tx.Constant),
		int64(tx.Precision),
		int64(tx.Tolerance),
	)
}

//go:build !linux

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
	"errors"
)

// ErrUnsupported is returned on platforms without adjtimex(2)
var ErrUnsupported = errors.New("adjtimex: not supported on this platform")

// Kernel queries system realtime clock state via adjtimex(2)
type Kernel struct{}

// Query always fails outside of Linux
func (Kernel) Query() (*SyncStatus, error) {
	return nil, ErrUnsupported
}

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

/*
Package clock contains a read-only wrapper around ADJTIMEX syscall.

It reads the kernel view of system realtime clock synchronization:
 - the clock state returned by adjtimex(2) (TIME_OK, TIME_ERROR, leap states)
 - estimated and maximum error in microseconds
 - the status word, including STA_UNSYNC which the kernel sets when no
   time daemon has disciplined the clock recently

Everything is exposed as a SyncStatus snapshot behind the Querier interface,
so callers can be tested without depending on host clock state.
*/
package clock

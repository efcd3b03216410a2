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


package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dcos/check-time/checktime"
	"github.com/dcos/check-time/clock"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/host"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

func init() {
	RootCmd.AddCommand(statusCmd)
}

func stateString(s clock.State) string {
	name := s.String()
	switch {
	case s == clock.TimeError:
		name = color.RedString(name)
	case !s.Known():
		name = color.YellowString(name)
	default:
		name = color.GreenString(name)
	}
	return fmt.Sprintf("%s %s", name, s.Description())
}

func verdictString(st *clock.SyncStatus, maxEstError time.Duration) string {
	if err := checktime.Evaluate(st, maxEstError); err != nil {
		return fmt.Sprintf("%s %v", failString, err)
	}
	return fmt.Sprintf("%s estimated error is within %v", okString, maxEstError)
}

func statusRun(w io.Writer, querier clock.Querier, maxEstError time.Duration, uptime func() (uint64, error)) error {
	st, err := querier.Query()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("field", "value")
	rows := [][]string{
		{"state", stateString(st.State)},
		{"estimated error", fmt.Sprintf("%d us", st.EstErrorUS)},
		{"maximum error", fmt.Sprintf("%d us", st.MaxErrorUS)},
		{"offset", st.Offset.String()},
		{"frequency", fmt.Sprintf("%.3f PPB", st.FreqPPB)},
		{"status", fmt.Sprintf("0x%x (%s)", st.Status, clock.StatusString(st.Status))},
		{"time constant", fmt.Sprintf("%d", st.Constant)},
		{"precision", fmt.Sprintf("%d us", st.PrecisionUS)},
		{"tolerance", fmt.Sprintf("%.0f PPB", st.Tolerance)},
	}
	if up, err := uptime(); err != nil {
		log.Warningf("failed to get host uptime: %v", err)
	} else {
		rows = append(rows, []string{"uptime", (time.Duration(up) * time.Second).String()})
	}
	rows = append(rows, []string{"verdict", verdictString(st, maxEstError)})
	for _, r := range rows {
		if err := table.Append(r); err != nil {
			return err
		}
	}
	return table.Render()
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print kernel clock synchronization state.",
	Long: `Print kernel clock synchronization state, similar to 'ntptime' output.
Does not look at ENABLE_CHECK_TIME and always exits 0 if adjtimex(2) works.`,
	Args: cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := statusRun(c.OutOrStdout(), clock.Kernel{}, rootMaxEstErrorFlag, host.Uptime); err != nil {
			log.Fatal(err)
		}
	},
}

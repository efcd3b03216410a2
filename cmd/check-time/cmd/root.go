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
	"os"
	"time"

	"github.com/dcos/check-time/checktime"
	"github.com/dcos/check-time/clock"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootCmd is a main entry point. It runs the check and exits with its exit code.
var RootCmd = &cobra.Command{
	Use:   "check-time",
	Short: "Check that kernel considers system clock synchronized",
	Long: `Check that kernel considers system clock synchronized.
Uses adjtimex(2) and fails if clock state is TIME_ERROR, estimated error is too big or STA_UNSYNC is set.
Set ENABLE_CHECK_TIME=true to check, or ENABLE_CHECK_TIME=false to skip the check and pass.`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		os.Exit(int(rootRun(os.LookupEnv, clock.Kernel{})))
	},
}

// flags
var (
	rootVerboseFlag           bool
	rootMaxEstErrorFlag       time.Duration
	rootDetailedExitCodesFlag bool
	rootTextfileFlag          string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().DurationVar(&rootMaxEstErrorFlag, "max-est-error", checktime.DefaultMaxEstError, "maximum allowed kernel estimated error")
	RootCmd.Flags().BoolVar(&rootDetailedExitCodesFlag, "detailed-exit-codes", false, "exit with 78 on configuration errors and 74 on adjtimex errors instead of 1")
	RootCmd.Flags().StringVar(&rootTextfileFlag, "textfile", "", "write result as node_exporter textfile metrics to this path")
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

func rootRun(lookup func(string) (string, bool), querier clock.Querier) checktime.ExitCode {
	cfg := checktime.ConfigFromEnv(lookup)
	cfg.MaxEstError = rootMaxEstErrorFlag
	cfg.DetailedExitCodes = rootDetailedExitCodesFlag
	cfg.Textfile = rootTextfileFlag
	return checktime.NewChecker(cfg, querier, nil).Run()
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

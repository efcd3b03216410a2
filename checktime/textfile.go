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

	"github.com/prometheus/client_golang/prometheus"
)

// verdictMetrics is what we export for node_exporter textfile collector
type verdictMetrics struct {
	registry   *prometheus.Registry
	success    prometheus.Gauge
	outcome    *prometheus.GaugeVec
	lastRun    prometheus.Gauge
	estError   prometheus.Gauge
	maxError   prometheus.Gauge
	unsync     prometheus.Gauge
	state      prometheus.Gauge
	withStatus bool
}

func newVerdictMetrics(res *Result, now time.Time) *verdictMetrics {
	m := &verdictMetrics{
		registry: prometheus.NewRegistry(),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "check_time_success",
			Help: "1 if the last clock check passed or was skipped",
		}),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "check_time_outcome",
			Help: "Outcome of the last clock check, 1 for the outcome it ended with",
		}, []string{"outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "check_time_last_run_timestamp_seconds",
			Help: "Unix time of the last clock check",
		}),
		estError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "check_time_estimated_error_seconds",
			Help: "Kernel estimated clock error",
		}),
		maxError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "check_time_maximum_error_seconds",
			Help: "Kernel maximum clock error",
		}),
		unsync: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "check_time_unsynchronized",
			Help: "1 if kernel has STA_UNSYNC set",
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "check_time_kernel_state",
			Help: "Clock state returned by adjtimex(2), 5 is TIME_ERROR",
		}),
	}
	m.registry.MustRegister(m.success, m.outcome, m.lastRun)

	if res.Err == nil {
		m.success.Set(1)
	}
	for _, o := range Outcomes {
		v := 0.0
		if o == res.Outcome {
			v = 1
		}
		m.outcome.WithLabelValues(string(o)).Set(v)
	}
	m.lastRun.Set(float64(now.Unix()))

	if st := res.Status; st != nil {
		m.withStatus = true
		m.registry.MustRegister(m.estError, m.maxError, m.unsync, m.state)
		m.estError.Set(st.EstError().Seconds())
		m.maxError.Set(st.MaxError().Seconds())
		if st.Unsynchronized {
			m.unsync.Set(1)
		}
		m.state.Set(float64(st.State))
	}
	return m
}

// WriteTextfile writes check result in Prometheus text format.
// Kernel values are only written when kernel was queried.
func WriteTextfile(path string, res *Result, now time.Time) error {
	m := newVerdictMetrics(res, now)
	return prometheus.WriteToTextfile(path, m.registry)
}

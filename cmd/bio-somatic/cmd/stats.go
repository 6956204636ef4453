// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"github.com/grailbio/base/log"
	"github.com/prometheus/client_golang/prometheus"
)

// stats are the pipeline counters of one bio-somatic invocation. They are
// exported in the Prometheus text format for a node exporter textfile
// collector.
type stats struct {
	registry  *prometheus.Registry
	vcfs      prometheus.Counter
	records   prometheus.Counter
	skipped   prometheus.Counter
	malformed prometheus.Counter
	calls     *prometheus.CounterVec
	annotated *prometheus.CounterVec
	subjects  prometheus.Gauge
	variants  *prometheus.GaugeVec
}

func newStats() *stats {
	s := &stats{
		registry: prometheus.NewRegistry(),
		vcfs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "somatic", Name: "vcfs_total", Help: "VCF files read.",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "somatic", Name: "records_total", Help: "VCF records read.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "somatic", Name: "skipped_records_total", Help: "VCF records outside the requested regions.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "somatic", Name: "malformed_records_total", Help: "Sample records skipped as malformed.",
		}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "somatic", Name: "calls_total", Help: "Variant calls extracted, by sample role.",
		}, []string{"role"}),
		annotated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "somatic", Name: "annotated_calls_total", Help: "Calls matched by an annotation source.",
		}, []string{"source"}),
		subjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "somatic", Name: "subjects", Help: "Subjects in the reconciled cohort.",
		}),
		variants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "somatic", Name: "cohort_variants", Help: "Variants in each cohort set.",
		}, []string{"set"}),
	}
	s.registry.MustRegister(s.vcfs, s.records, s.skipped, s.malformed, s.calls, s.annotated, s.subjects, s.variants)
	return s
}

// write stores the counters at path, if path is nonempty.
func (s *stats) write(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return err
	}
	log.Debug.Printf("wrote metrics to %s", path)
	return nil
}

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
	"context"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/cohort"
	"github.com/grailbio/somatic/encoding/calls"
	"github.com/grailbio/somatic/report"
	"github.com/grailbio/somatic/variant"
	"v.io/x/lib/cmdline"
)

func newCmdReconcile(cfg *config) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "reconcile",
		Short: "Reconcile tumor and normal calls across a cohort",
		Long: `
Reconcile reads <subject>_tumor.tsv from tumordir and <subject>_normal.tsv from
normaldir, and reports the variants unique to tumors, unique to normals, and
shared by both, together with the number of subjects carrying each variant in
each sample combination.

The report format follows the -out name: .xlsx writes a workbook, .db or
.sqlite a sqlite database, anything else a <out>.{tumor,normal,common}.tsv
file set (gzipped if out ends in .gz, BGZF if it ends in .bgz). Nothing is
written on error.`,
		ArgsName: "tumordir normaldir",
	}
	opts := cohort.Opts{}
	out := cmd.Flags.String("out", "all_variants.xlsx", "Report path")
	metrics := cmd.Flags.String("metrics", "", "If set, write pipeline counters in Prometheus text format to this local file")
	cmd.Flags.StringVar(&opts.NoGene, "no-gene", cfg.NoGene, "Gene name of calls without a gene; such calls are excluded from the cohort sets")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", cfg.Parallelism, "Number of subjects reconciled concurrently; 0 = runtime.NumCPU()")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("reconcile takes tumordir normaldir, but got %v", argv)
		}
		st := newStats()
		if err := reconcile(vcontext.Background(), argv[0], argv[1], *out, &opts, st); err != nil {
			return err
		}
		return st.write(*metrics)
	})
	return cmd
}

func reconcile(ctx context.Context, tumorDir, normalDir, out string, opts *cohort.Opts, st *stats) error {
	tumors, err := calls.ReadDir(ctx, tumorDir, variant.Tumor)
	if err != nil {
		return err
	}
	normals, err := calls.ReadDir(ctx, normalDir, variant.Normal)
	if err != nil {
		return err
	}
	subjects, err := cohort.PairSubjects(tumors, normals)
	if err != nil {
		return err
	}
	r, err := cohort.Reconcile(subjects, opts)
	if err != nil {
		return err
	}
	st.subjects.Set(float64(r.Subjects))
	for _, sheet := range report.Sheets(r) {
		st.variants.WithLabelValues(sheet.Name).Set(float64(len(sheet.Rows)))
	}
	return report.Write(ctx, out, r)
}

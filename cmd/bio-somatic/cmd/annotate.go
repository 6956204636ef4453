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
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/annotate"
	"github.com/grailbio/somatic/encoding/calls"
	"v.io/x/lib/cmdline"
)

func newCmdAnnotate(cfg *config) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "annotate",
		Short: "Merge SNPnexus and FATHMM annotation into call tables",
		Long: `
Annotate fills the genename, where, band, change_type1, fathmm_coding and
fathmm_noncoding columns of each call table from the given annotation tables.
Calls without a gene get the -no-gene name. Tables are rewritten in place
unless -out is given.`,
		ArgsName: "calls.tsv...",
	}
	var paths annotate.Paths
	cmd.Flags.StringVar(&paths.NearGenes, "near", "", "SNPnexus near-gene table")
	cmd.Flags.StringVar(&paths.Coords, "coords", "", "SNPnexus genomic-coordinate table")
	cmd.Flags.StringVar(&paths.Fathmm, "fathmm", "", "FATHMM table")
	out := cmd.Flags.String("out", "", "Output directory; by default tables are annotated in place")
	noGene := cmd.Flags.String("no-gene", cfg.NoGene, "Gene name of calls without a gene")
	metrics := cmd.Flags.String("metrics", "", "If set, write pipeline counters in Prometheus text format to this local file")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("annotate takes one or more call tables, but got none")
		}
		if paths == (annotate.Paths{}) {
			return fmt.Errorf("annotate: at least one of -near, -coords and -fathmm is required")
		}
		ctx := vcontext.Background()
		tabs, err := annotate.Load(ctx, paths)
		if err != nil {
			return err
		}
		st := newStats()
		opts := annotate.Opts{NoGene: *noGene}
		for _, path := range argv {
			t, err := calls.ReadFile(ctx, path)
			if err != nil {
				return err
			}
			t, n := annotate.Merge(t, tabs, &opts)
			dst := path
			if *out != "" {
				dst = outputPath(*out, path, "", "")
			}
			if err := calls.WriteFile(ctx, dst, t); err != nil {
				return err
			}
			st.annotated.WithLabelValues("near_genes").Add(float64(n.NearGenes))
			st.annotated.WithLabelValues("coords").Add(float64(n.Coords))
			st.annotated.WithLabelValues("fathmm").Add(float64(n.Fathmm))
			log.Printf("annotate: %s: %d calls, %d near-gene, %d coordinate, %d fathmm matches",
				dst, n.Calls, n.NearGenes, n.Coords, n.Fathmm)
		}
		return st.write(*metrics)
	})
	return cmd
}

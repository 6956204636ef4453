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
	"runtime"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/encoding/calls"
	"github.com/grailbio/somatic/encoding/vcf"
	"github.com/grailbio/somatic/interval"
	"github.com/grailbio/somatic/variant"
	"github.com/samber/lo"
	"v.io/x/lib/cmdline"
)

type extractOpts struct {
	out         string
	bed         string
	region      string
	metrics     string
	parallelism int
	vcf         vcf.Opts
	extract     variant.ExtractOpts
}

func newCmdExtract(cfg *config) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "extract",
		Short: "Extract tumor and normal call tables from paired VCFs",
		Long: `
Extract reads VCFs holding one normal and one tumor sample each and writes the
qualifying calls of each sample to <out>/<subject>_tumor.tsv and
<out>/<subject>_normal.tsv. A call qualifies when two alleles each carry more
than -min-allele-fraction of the sample depth.`,
		ArgsName: "vcf...",
	}
	opts := extractOpts{}
	cmd.Flags.StringVar(&opts.out, "out", "", "Output directory for the call tables (required)")
	cmd.Flags.StringVar(&opts.bed, "bed", "", "If set, only records inside the intervals of this BED file are used")
	cmd.Flags.StringVar(&opts.region, "region", "", "If set, only records inside this region are used. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	cmd.Flags.StringVar(&opts.metrics, "metrics", "", "If set, write pipeline counters in Prometheus text format to this local file")
	cmd.Flags.IntVar(&opts.parallelism, "parallelism", cfg.Parallelism, "Number of VCFs read concurrently; 0 = runtime.NumCPU()")
	cmd.Flags.Float64Var(&opts.extract.MinAlleleFraction, "min-allele-fraction", cfg.MinAlleleFraction, "Minimum fraction of depth for each allele of a call")
	cmd.Flags.IntVar(&opts.extract.Score, "var-score", cfg.Score, "Value of the var_score column")
	cmd.Flags.StringVar(&opts.vcf.TumorSample, "tumor-sample", "", "Name of the tumor sample column; overrides -tumor-index")
	cmd.Flags.StringVar(&opts.vcf.NormalSample, "normal-sample", "", "Name of the normal sample column; overrides -normal-index")
	cmd.Flags.IntVar(&opts.vcf.TumorIndex, "tumor-index", cfg.TumorIndex, "0-based index of the tumor sample column")
	cmd.Flags.IntVar(&opts.vcf.NormalIndex, "normal-index", cfg.NormalIndex, "0-based index of the normal sample column")
	cmd.Flags.StringVar(&opts.vcf.SubjectID, "subject", "", "Subject id; by default taken from the INDIVIDUAL header or the file name. Only valid with one VCF")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("extract takes one or more VCF paths, but got none")
		}
		if opts.out == "" {
			return fmt.Errorf("extract: -out is required")
		}
		if opts.vcf.SubjectID != "" && len(argv) > 1 {
			return fmt.Errorf("extract: -subject given with %d VCFs", len(argv))
		}
		if opts.bed != "" && opts.region != "" {
			return fmt.Errorf("extract: -bed and -region are mutually exclusive")
		}
		st := newStats()
		if err := extract(vcontext.Background(), opts, argv, st); err != nil {
			return err
		}
		return st.write(opts.metrics)
	})
	return cmd
}

func extract(ctx context.Context, opts extractOpts, paths []string, st *stats) error {
	var err error
	if opts.vcf.Regions, err = loadRegions(ctx, opts.bed, opts.region); err != nil {
		return err
	}
	parallelism := opts.parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	results := make([]*vcf.Calls, len(paths))
	err = traverse.Limit(parallelism).Each(len(paths), func(i int) error {
		r, err := vcf.Open(paths[i], &opts.vcf)
		if err != nil {
			return err
		}
		results[i], err = vcf.Extract(r, &opts.extract)
		if e := r.Close(); e != nil && err == nil {
			err = e
		}
		if err != nil {
			return errors.E(err, paths[i])
		}
		return nil
	})
	if err != nil {
		return err
	}
	ids := lo.Map(results, func(c *vcf.Calls, _ int) string { return c.SubjectID })
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("subjects %v appear in more than one VCF", dups))
	}
	for i, c := range results {
		st.vcfs.Inc()
		st.records.Add(float64(c.Records))
		st.skipped.Add(float64(c.Skipped))
		st.malformed.Add(float64(len(c.Warnings)))
		st.calls.WithLabelValues(variant.Tumor.String()).Add(float64(len(c.Tumor)))
		st.calls.WithLabelValues(variant.Normal.String()).Add(float64(len(c.Normal)))
		for _, t := range []struct {
			role  variant.Role
			table variant.Table
		}{{variant.Tumor, c.Tumor}, {variant.Normal, c.Normal}} {
			if err := calls.WriteFile(ctx, calls.Path(opts.out, c.SubjectID, t.role), t.table); err != nil {
				return err
			}
		}
		log.Printf("extract: %s: subject %s, %d records, %d tumor and %d normal calls, %d malformed",
			paths[i], c.SubjectID, c.Records, len(c.Tumor), len(c.Normal), len(c.Warnings))
	}
	return nil
}

func loadRegions(ctx context.Context, bed, region string) (*interval.BEDUnion, error) {
	switch {
	case bed != "":
		return interval.NewBEDUnionFromPath(ctx, bed)
	case region != "":
		e, err := interval.ParseRegionString(region)
		if err != nil {
			return nil, err
		}
		return interval.NewBEDUnionFromEntries([]interval.Entry{e})
	}
	return nil, nil
}

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
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/annotate"
	"github.com/grailbio/somatic/encoding/calls"
	"v.io/x/lib/cmdline"
)

func newCmdSNPnexusInput() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "snpnexus-input",
		Short: "Write SNPnexus batch queries for call tables",
		Long: `
For each call table X.tsv, snpnexus-input writes X_snpnexus.txt, a batch query
for https://www.snp-nexus.org. The result tables of the query are the input of
"bio-somatic annotate".`,
		ArgsName: "calls.tsv...",
	}
	out := cmd.Flags.String("out", "", "Output directory; by default each query is written next to its call table")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("snpnexus-input takes one or more call tables, but got none")
		}
		ctx := vcontext.Background()
		for _, path := range argv {
			if err := snpnexusInput(ctx, path, outputPath(*out, path, ".tsv", "_snpnexus.txt")); err != nil {
				return err
			}
		}
		return nil
	})
	return cmd
}

func snpnexusInput(ctx context.Context, src, dst string) error {
	t, err := calls.ReadFile(ctx, src)
	if err != nil {
		return err
	}
	out, err := file.Create(ctx, dst)
	if err != nil {
		return err
	}
	if err := annotate.WriteSNPnexusInput(out.Writer(ctx), t); err != nil {
		out.Discard(ctx)
		return errors.E(err, "writing", dst)
	}
	if err := out.Close(ctx); err != nil {
		return err
	}
	log.Printf("snpnexus-input: %s: %d calls -> %s", src, len(t), dst)
	return nil
}

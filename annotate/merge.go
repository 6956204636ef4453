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
package annotate

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/variant"
)

// Tables holds the annotation sources for Merge. A nil slice means the
// source was not supplied; its columns are left untouched.
type Tables struct {
	NearGenes []NearGene
	Coords    []Coords
	Fathmm    []Fathmm
}

// Opts controls Merge.
type Opts struct {
	// NoGene is the gene name given to calls without a gene.
	NoGene string
}

// DefaultOpts are the default options for Merge.
var DefaultOpts = Opts{NoGene: variant.NoGene}

// Stats counts the calls matched by each source.
type Stats struct {
	Calls, NearGenes, Coords, Fathmm int
}

// Merge returns a copy of t with annotation from tabs filled in. SNPnexus
// rows join on (chromosome, left) ignoring any "chr" prefix; FATHMM rows join
// on (left, ref_seq) and prefer the row whose mutant base is var_seq1. Each
// call takes the first matching row, so the result has the same rows as t.
// Calls left without a gene name get opts.NoGene.
func Merge(t variant.Table, tabs *Tables, opts *Opts) (variant.Table, Stats) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if tabs == nil {
		tabs = &Tables{}
	}
	var (
		near   = map[site]*NearGene{}
		coords = map[site]*Coords{}
		fathmm = map[fathmmKey][]*Fathmm{}
	)
	for i := range tabs.NearGenes {
		r := &tabs.NearGenes[i]
		k := site{stripChr(r.Chrom), r.Position}
		if _, ok := near[k]; !ok {
			near[k] = r
		}
	}
	for i := range tabs.Coords {
		r := &tabs.Coords[i]
		k := site{stripChr(r.Chrom), r.Position}
		if _, ok := coords[k]; !ok {
			coords[k] = r
		}
	}
	for i := range tabs.Fathmm {
		r := &tabs.Fathmm[i]
		k := fathmmKey{r.Position, r.Ref}
		fathmm[k] = append(fathmm[k], r)
	}

	out := make(variant.Table, len(t))
	copy(out, t)
	stats := Stats{Calls: len(out)}
	for i := range out {
		c := &out[i]
		k := site{stripChr(c.Chrom), c.Left}
		if tabs.NearGenes != nil {
			if r, ok := near[k]; ok {
				stats.NearGenes++
				c.GeneName, c.Where = r.Gene, r.Type
			} else {
				c.GeneName, c.Where = "", ""
			}
		}
		if tabs.Coords != nil {
			if r, ok := coords[k]; ok {
				stats.Coords++
				c.Band, c.ChangeType = r.Band, r.PredictedFunction
			} else {
				c.Band, c.ChangeType = "", ""
			}
		}
		if tabs.Fathmm != nil {
			if r := pickFathmm(fathmm[fathmmKey{c.Left, c.RefSeq}], c.VarSeq1); r != nil {
				stats.Fathmm++
				c.FathmmCoding, c.FathmmNonCoding = r.Coding, r.NonCoding
			} else {
				c.FathmmCoding, c.FathmmNonCoding = "", ""
			}
		}
		if c.GeneName == "" || c.GeneName == "None" {
			c.GeneName = opts.NoGene
		}
	}
	return out, stats
}

type fathmmKey struct {
	pos int
	ref string
}

func pickFathmm(rows []*Fathmm, mutant string) *Fathmm {
	for _, r := range rows {
		if r.Mutant == mutant {
			return r
		}
	}
	if len(rows) > 0 {
		return rows[0]
	}
	return nil
}

// Paths names the annotation files to load. Empty paths are skipped.
type Paths struct {
	NearGenes, Coords, Fathmm string
}

// Load reads the annotation tables named by p.
func Load(ctx context.Context, p Paths) (*Tables, error) {
	tabs := &Tables{}
	if p.NearGenes != "" {
		if err := withFile(ctx, p.NearGenes, func(r io.Reader) (err error) {
			tabs.NearGenes, err = ReadNearGenes(r)
			return err
		}); err != nil {
			return nil, err
		}
	}
	if p.Coords != "" {
		if err := withFile(ctx, p.Coords, func(r io.Reader) (err error) {
			tabs.Coords, err = ReadCoords(r)
			return err
		}); err != nil {
			return nil, err
		}
	}
	if p.Fathmm != "" {
		if err := withFile(ctx, p.Fathmm, func(r io.Reader) (err error) {
			tabs.Fathmm, err = ReadFathmm(r)
			return err
		}); err != nil {
			return nil, err
		}
	}
	log.Printf("annotate: loaded %d near-gene, %d coordinate, %d fathmm rows",
		len(tabs.NearGenes), len(tabs.Coords), len(tabs.Fathmm))
	return tabs, nil
}

func withFile(ctx context.Context, path string, fn func(io.Reader) error) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if err = fn(in.Reader(ctx)); err != nil {
		return errors.E(err, path)
	}
	return nil
}

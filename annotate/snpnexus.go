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
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/somatic/variant"
)

// SNPnexusInputHeader is the header row of a SNPnexus batch query.
var SNPnexusInputHeader = []string{"chromosome", "num_chrom", "position", "ref", "alt", "strand"}

// Alt returns the non-reference allele of c submitted to SNPnexus.
func Alt(c *variant.Call) string {
	if c.VarSeq1 != c.RefSeq {
		return c.VarSeq1
	}
	return c.VarSeq2
}

// WriteSNPnexusInput writes a SNPnexus batch query with one line per call.
func WriteSNPnexusInput(w io.Writer, t variant.Table) error {
	tw := tsv.NewWriter(w)
	for _, col := range SNPnexusInputHeader {
		tw.WriteString(col)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for i := range t {
		c := &t[i]
		tw.WriteString("Chromosome")
		tw.WriteString(stripChr(c.Chrom))
		tw.WriteInt64(int64(c.Left))
		tw.WriteString(c.RefSeq)
		tw.WriteString(Alt(c))
		tw.WriteInt64(1)
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// NearGene is a row of the SNPnexus "near gens" result.
type NearGene struct {
	Chrom    string
	Position int
	Gene     string
	Type     string
}

// ReadNearGenes reads a SNPnexus near-gene table.
func ReadNearGenes(in io.Reader) ([]NearGene, error) {
	t, err := newTable(in, "near genes", "Chromosome", "Position", "Overlapped Gene", "Type")
	if err != nil {
		return nil, err
	}
	rows := []NearGene{}
	for {
		rec, err := t.next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.E(errors.Invalid, "near genes", err)
		}
		pos, ok := parsePosition(rec[1])
		if !ok {
			return nil, errors.E(errors.Invalid, "near genes", fmt.Sprintf("line %d: bad position %q", t.line, rec[1]))
		}
		rows = append(rows, NearGene{Chrom: rec[0], Position: pos, Gene: rec[2], Type: rec[3]})
	}
}

// Coords is a row of the SNPnexus "gen coords" result.
type Coords struct {
	Chrom             string
	Position          int
	Band              string
	PredictedFunction string
}

// ReadCoords reads a SNPnexus genomic-coordinate table.
func ReadCoords(in io.Reader) ([]Coords, error) {
	t, err := newTable(in, "gen coords", "Chromosome", "Position", "Band", "Predicted Function")
	if err != nil {
		return nil, err
	}
	rows := []Coords{}
	for {
		rec, err := t.next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.E(errors.Invalid, "gen coords", err)
		}
		pos, ok := parsePosition(rec[1])
		if !ok {
			return nil, errors.E(errors.Invalid, "gen coords", fmt.Sprintf("line %d: bad position %q", t.line, rec[1]))
		}
		rows = append(rows, Coords{Chrom: rec[0], Position: pos, Band: rec[2], PredictedFunction: rec[3]})
	}
}

// Fathmm is a row of a FATHMM result.
type Fathmm struct {
	Chrom     string
	Position  int
	Ref       string
	Mutant    string
	Coding    string
	NonCoding string
}

// ReadFathmm reads a FATHMM result table. Rows whose position is not an
// integer, such as a repeated header, are skipped.
func ReadFathmm(in io.Reader) ([]Fathmm, error) {
	t, err := newTable(in, "fathmm", "# Chromosome", "Position", "Ref. Base", "Mutant Base", "Coding Score", "Non-Coding Score")
	if err != nil {
		return nil, err
	}
	rows := []Fathmm{}
	for {
		rec, err := t.next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.E(errors.Invalid, "fathmm", err)
		}
		pos, ok := parsePosition(rec[1])
		if !ok {
			log.Debug.Printf("fathmm: skipping line %d, position %q", t.line, rec[1])
			continue
		}
		rows = append(rows, Fathmm{
			Chrom: rec[0], Position: pos, Ref: rec[2], Mutant: rec[3],
			Coding: rec[4], NonCoding: rec[5],
		})
	}
}

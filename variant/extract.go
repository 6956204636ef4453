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
package variant

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// ExtractOpts configures call extraction.
type ExtractOpts struct {
	// MinAlleleFraction is the fraction of total depth each allele of a pair
	// must exceed.
	MinAlleleFraction float64
	// Score is stored in every call's Score field.
	Score int
}

// DefaultExtractOpts are the options used by the bio-somatic tool.
var DefaultExtractOpts = ExtractOpts{
	MinAlleleFraction: DefaultMinAlleleFraction,
	Score:             DefaultScore,
}

// Extractor builds the call table of one sample. Records are added in source
// order; Finish orients the calls and assigns their indexes.
type Extractor struct {
	opts      ExtractOpts
	subjectID string
	role      Role
	calls     Table
	warnings  []*MalformedRecordError
}

// NewExtractor creates an extractor for the given subject and sample role.
// A nil opts means DefaultExtractOpts.
func NewExtractor(subjectID string, role Role, opts *ExtractOpts) *Extractor {
	if opts == nil {
		opts = &DefaultExtractOpts
	}
	return &Extractor{opts: *opts, subjectID: subjectID, role: role}
}

// Add processes one record. A malformed record is recorded as a warning and
// otherwise ignored.
func (e *Extractor) Add(r *Record) {
	depths := r.Depths(e.role)
	if len(depths) > 0 && len(depths) != 1+len(r.Alt) {
		e.warn(r, errors.E(errors.Invalid,
			fmt.Sprintf("%d allele depths for %d alternate alleles", len(depths), len(r.Alt))))
		return
	}
	pair, ok, err := SelectPair(depths, e.opts.MinAlleleFraction)
	if err != nil {
		e.warn(r, err)
		return
	}
	if !ok {
		return
	}
	varSeq := r.Allele(pair.Second)
	e.calls = append(e.calls, Call{
		Chrom:     r.Chrom,
		Left:      r.Pos,
		Right:     r.Pos + len(varSeq),
		RefSeq:    r.Allele(pair.First),
		VarSeq1:   varSeq,
		Count1:    pair.SecondDepth,
		Count2:    pair.FirstDepth,
		Score:     e.opts.Score,
		SubjectID: e.subjectID,
	})
}

func (e *Extractor) warn(r *Record, err error) {
	e.warnings = append(e.warnings, &MalformedRecordError{Chrom: r.Chrom, Pos: r.Pos, Role: e.role, Err: err})
}

// Finish returns the sample's call table. It must be called once, after the
// last Add.
func (e *Extractor) Finish() Table {
	t := e.calls
	e.calls = nil
	Orient(t)
	t.Reindex()
	return t
}

// Warnings returns the malformed records seen so far, in input order.
func (e *Extractor) Warnings() []*MalformedRecordError { return e.warnings }

// Extract builds the call table for one sample role from records.
func Extract(subjectID string, role Role, records []Record, opts *ExtractOpts) (Table, []*MalformedRecordError) {
	e := NewExtractor(subjectID, role, opts)
	for i := range records {
		e.Add(&records[i])
	}
	return e.Finish(), e.Warnings()
}

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

// Package report writes the result of a cohort reconciliation. A report has
// three sheets: "tumor" (tumor-unique variants), "normal" (normal-unique
// variants) and "common" (variants shared by tumor and normal). It can be
// stored as an xlsx workbook, a set of TSV files or a sqlite database; in
// every format either all three sheets are written or nothing is.
package report

import (
	"context"
	"strings"

	"github.com/grailbio/somatic/cohort"
)

// Sheet names.
const (
	TumorSheet  = "tumor"
	NormalSheet = "normal"
	CommonSheet = "common"
)

// Columns is the header of every sheet.
var Columns = []string{
	"chrom", "left", "right", "ref_seq", "var_seq1", "var_seq2", "count1", "count2",
	"patient_id", "genename", "where", "change_type1", "band", "fathmm_coding", "fathmm_noncoding",
	"subt1n1", "subt1n0", "subt0n1", "subt0n0",
}

// intColumn reports whether column i holds integers.
func intColumn(i int) bool {
	switch Columns[i] {
	case "left", "right", "count1", "count2", "subt1n1", "subt1n0", "subt0n1", "subt0n0":
		return true
	}
	return false
}

// Sheet is one named table of a report.
type Sheet struct {
	Name string
	Rows []cohort.Row
}

// Sheets returns the sheets of r in output order.
func Sheets(r *cohort.Report) []Sheet {
	return []Sheet{
		{TumorSheet, r.TumorUnique},
		{NormalSheet, r.NormalUnique},
		{CommonSheet, r.Shared},
	}
}

// values returns the cells of row, in Columns order.
func values(row *cohort.Row) []interface{} {
	return []interface{}{
		row.Chrom, row.Left, row.Right, row.RefSeq, row.VarSeq1, row.VarSeq2, row.Count1, row.Count2,
		row.SubjectID, row.GeneName, row.Where, row.ChangeType, row.Band, row.FathmmCoding, row.FathmmNonCoding,
		row.Both, row.TumorOnly, row.NormalOnly, row.Neither,
	}
}

// Format is a report storage format.
type Format int

const (
	// TSV writes <prefix>.<sheet>.tsv files, gzipped when the prefix ends in
	// ".gz" and BGZF-compressed when it ends in ".bgz".
	TSV Format = iota
	// XLSX writes one workbook with a worksheet per sheet.
	XLSX
	// SQLite writes one database with a table per sheet.
	SQLite
)

// FormatOf infers the format from an output path.
func FormatOf(path string) Format {
	switch {
	case strings.HasSuffix(path, ".xlsx"):
		return XLSX
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"):
		return SQLite
	}
	return TSV
}

// Write stores r at path in the format implied by its name.
func Write(ctx context.Context, path string, r *cohort.Report) error {
	switch FormatOf(path) {
	case XLSX:
		return WriteXLSX(ctx, path, r)
	case SQLite:
		return WriteSQLite(ctx, path, r)
	default:
		return WriteTSV(ctx, path, r)
	}
}

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

// Package calls reads and writes per-sample variant call tables as TSV.
//
// A table is stored with a header row naming the columns below; every column
// is always written so that the annotation columns survive a round trip.
//
//   var_index chrom left right ref_seq var_seq1 var_seq2 count1 count2
//   var_score patient_id genename where change_type1 band fathmm_coding
//   fathmm_noncoding
package calls

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/somatic/variant"
)

// Columns lists the header of a call table, in order.
var Columns = []string{
	"var_index", "chrom", "left", "right", "ref_seq", "var_seq1", "var_seq2",
	"count1", "count2", "var_score", "patient_id",
	"genename", "where", "change_type1", "band", "fathmm_coding", "fathmm_noncoding",
}

// row is the on-disk projection of variant.Call.
type row struct {
	Index           int64  `tsv:"var_index"`
	Chrom           string `tsv:"chrom"`
	Left            int64  `tsv:"left"`
	Right           int64  `tsv:"right"`
	RefSeq          string `tsv:"ref_seq"`
	VarSeq1         string `tsv:"var_seq1"`
	VarSeq2         string `tsv:"var_seq2"`
	Count1          int64  `tsv:"count1"`
	Count2          int64  `tsv:"count2"`
	Score           int64  `tsv:"var_score"`
	SubjectID       string `tsv:"patient_id"`
	GeneName        string `tsv:"genename"`
	Where           string `tsv:"where"`
	ChangeType      string `tsv:"change_type1"`
	Band            string `tsv:"band"`
	FathmmCoding    string `tsv:"fathmm_coding"`
	FathmmNonCoding string `tsv:"fathmm_noncoding"`
}

func (r *row) call() variant.Call {
	return variant.Call{
		Index:     int(r.Index),
		Chrom:     r.Chrom,
		Left:      int(r.Left),
		Right:     int(r.Right),
		RefSeq:    r.RefSeq,
		VarSeq1:   r.VarSeq1,
		VarSeq2:   r.VarSeq2,
		Count1:    int(r.Count1),
		Count2:    int(r.Count2),
		Score:     int(r.Score),
		SubjectID: r.SubjectID,
		Annotation: variant.Annotation{
			GeneName:        r.GeneName,
			Where:           r.Where,
			ChangeType:      r.ChangeType,
			Band:            r.Band,
			FathmmCoding:    r.FathmmCoding,
			FathmmNonCoding: r.FathmmNonCoding,
		},
	}
}

// Write writes t, header first, to w.
func Write(w io.Writer, t variant.Table) error {
	tw := tsv.NewWriter(w)
	for _, col := range Columns {
		tw.WriteString(col)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for i := range t {
		c := &t[i]
		tw.WriteInt64(int64(c.Index))
		tw.WriteString(c.Chrom)
		tw.WriteInt64(int64(c.Left))
		tw.WriteInt64(int64(c.Right))
		tw.WriteString(c.RefSeq)
		tw.WriteString(c.VarSeq1)
		tw.WriteString(c.VarSeq2)
		tw.WriteInt64(int64(c.Count1))
		tw.WriteInt64(int64(c.Count2))
		tw.WriteInt64(int64(c.Score))
		tw.WriteString(c.SubjectID)
		tw.WriteString(c.GeneName)
		tw.WriteString(c.Where)
		tw.WriteString(c.ChangeType)
		tw.WriteString(c.Band)
		tw.WriteString(c.FathmmCoding)
		tw.WriteString(c.FathmmNonCoding)
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Read reads a table written by Write.
func Read(r io.Reader) (variant.Table, error) {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true
	var t variant.Table
	for {
		var rw row
		if err := tr.Read(&rw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err)
		}
		t = append(t, rw.call())
	}
	return t, nil
}

// WriteFile writes t to path. The file is discarded if writing fails.
func WriteFile(ctx context.Context, path string, t variant.Table) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	if err := Write(out.Writer(ctx), t); err != nil {
		out.Discard(ctx)
		return errors.E(err, "writing", path)
	}
	return out.Close(ctx)
}

// ReadFile reads the table stored at path.
func ReadFile(ctx context.Context, path string) (t variant.Table, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if t, err = Read(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, path)
	}
	return t, nil
}

// Suffix returns the file-name suffix of a call table for role, e.g.
// "_tumor.tsv".
func Suffix(role variant.Role) string {
	return "_" + role.String() + ".tsv"
}

// Path returns the location of a subject's call table in dir.
func Path(dir, subjectID string, role variant.Role) string {
	return join(dir, subjectID+Suffix(role))
}

// join works for both local paths and URLs such as s3://bucket/dir.
func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// List returns the call tables for role found directly in dir, keyed by
// subject id.
func List(ctx context.Context, dir string, role variant.Role) (map[string]string, error) {
	suffix := Suffix(role)
	paths := map[string]string{}
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() {
			continue
		}
		name := lister.Path()
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		if !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
			continue
		}
		paths[strings.TrimSuffix(name, suffix)] = lister.Path()
	}
	if err := lister.Err(); err != nil {
		return nil, errors.E(err, "listing", dir)
	}
	return paths, nil
}

// ReadDir reads every call table for role in dir, keyed by subject id.
func ReadDir(ctx context.Context, dir string, role variant.Role) (map[string]variant.Table, error) {
	paths, err := List(ctx, dir, role)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.E(errors.NotExist, "no *"+Suffix(role)+" call tables in", dir)
	}
	tables := make(map[string]variant.Table, len(paths))
	for id, path := range paths {
		if tables[id], err = ReadFile(ctx, path); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

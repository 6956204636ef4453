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
package report

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/somatic/cohort"
	"github.com/grailbio/somatic/encoding/bgzf"
	"github.com/klauspost/compress/gzip"
)

// compression of a TSV report, selected by the prefix suffix.
type compression int

const (
	plain compression = iota
	gzipped
	bgzipped
)

func compressionOf(path string) compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return gzipped
	case strings.HasSuffix(path, ".bgz"):
		return bgzipped
	}
	return plain
}

// TSVPaths returns the files WriteTSV creates for prefix. A prefix ending in
// ".gz" yields gzipped files and one ending in ".bgz" BGZF files.
func TSVPaths(prefix string) []string {
	ext := ".tsv"
	switch compressionOf(prefix) {
	case gzipped:
		prefix = strings.TrimSuffix(prefix, ".gz")
		ext = ".tsv.gz"
	case bgzipped:
		prefix = strings.TrimSuffix(prefix, ".bgz")
		ext = ".tsv.bgz"
	}
	prefix = strings.TrimSuffix(prefix, ".tsv")
	return []string{
		prefix + "." + TumorSheet + ext,
		prefix + "." + NormalSheet + ext,
		prefix + "." + CommonSheet + ext,
	}
}

// WriteTSV writes one TSV file per sheet. If any file fails, none is left
// behind.
func WriteTSV(ctx context.Context, prefix string, r *cohort.Report) error {
	var (
		paths  = TSVPaths(prefix)
		sheets = Sheets(r)
		outs   []file.File
		err    error
	)
	for i, sheet := range sheets {
		var out file.File
		if out, err = file.Create(ctx, paths[i]); err != nil {
			break
		}
		outs = append(outs, out)
		if err = writeTSVSheet(out.Writer(ctx), sheet, compressionOf(paths[i])); err != nil {
			err = errors.E(err, "writing", paths[i])
			break
		}
	}
	if err != nil {
		for _, out := range outs {
			out.Discard(ctx)
		}
		return err
	}
	for i, out := range outs {
		if err = out.Close(ctx); err != nil {
			for _, rest := range outs[i+1:] {
				rest.Discard(ctx)
			}
			for _, done := range paths[:i] {
				if e := file.Remove(ctx, done); e != nil {
					log.Error.Printf("remove %s: %v", done, e)
				}
			}
			return err
		}
	}
	log.Printf("report: wrote %s", strings.Join(paths, ", "))
	return nil
}

func writeTSVSheet(w io.Writer, sheet Sheet, c compression) error {
	var zw io.WriteCloser
	switch c {
	case gzipped:
		zw = gzip.NewWriter(w)
	case bgzipped:
		bw, err := bgzf.NewWriter(w, gzip.DefaultCompression)
		if err != nil {
			return err
		}
		zw = bw
	}
	if zw != nil {
		w = zw
	}
	tw := tsv.NewWriter(w)
	for _, col := range Columns {
		tw.WriteString(col)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for i := range sheet.Rows {
		for j, v := range values(&sheet.Rows[i]) {
			if intColumn(j) {
				tw.WriteInt64(int64(v.(int)))
			} else {
				tw.WriteString(v.(string))
			}
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

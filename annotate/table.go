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
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// table reads a tab-separated file by header name. Columns other than the
// requested ones are ignored.
type table struct {
	r    *tsv.Reader
	cols []int
	line int
}

func newTable(in io.Reader, name string, cols ...string) (*table, error) {
	r := tsv.NewReader(in)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	header, err := r.Reader.Read()
	if err == io.EOF {
		return nil, errors.E(errors.Invalid, name, "table is empty")
	}
	if err != nil {
		return nil, errors.E(errors.Invalid, name, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}
	t := &table{r: r, cols: make([]int, len(cols)), line: 1}
	for i, col := range cols {
		j, ok := index[col]
		if !ok {
			return nil, errors.E(errors.Invalid, name, fmt.Sprintf("missing column %q", col))
		}
		t.cols[i] = j
	}
	return t, nil
}

// next returns the requested columns of the next row, or io.EOF. Short rows
// yield empty strings.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Reader.Read()
	if err != nil {
		return nil, err
	}
	t.line++
	out := make([]string, len(t.cols))
	for i, j := range t.cols {
		if j < len(rec) {
			out[i] = strings.TrimSpace(rec[j])
		}
	}
	return out, nil
}

// stripChr removes a leading "chr" so that "chr7" and "7" compare equal.
func stripChr(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

type site struct {
	chrom string
	pos   int
}

func parsePosition(s string) (int, bool) {
	pos, err := strconv.Atoi(s)
	return pos, err == nil
}

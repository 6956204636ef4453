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
package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

const posMax = math.MaxInt32

// Entry is a single interval with 0-based, half-open coordinates.
type Entry struct {
	ChrName string
	Start0  int
	End     int
}

// BEDUnion is the union of a set of intervals. For each chromosome it holds a
// sorted sequence of 2N endpoints, with the 0-based start of disjoint interval
// k in element 2k and its end in element 2k+1, so that a position is covered
// iff the number of endpoints <= it is odd.
type BEDUnion struct {
	nameMap map[string][]int
}

// NewBEDUnionFromEntries builds the union of entries, which may be unsorted
// and may overlap. Empty intervals are dropped.
func NewBEDUnionFromEntries(entries []Entry) (*BEDUnion, error) {
	byChr := map[string][]Entry{}
	for _, e := range entries {
		if e.Start0 < 0 || e.End < e.Start0 || e.End >= posMax {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval: invalid interval %s:[%d, %d)", e.ChrName, e.Start0, e.End))
		}
		if e.End > e.Start0 {
			byChr[e.ChrName] = append(byChr[e.ChrName], e)
		}
	}
	u := &BEDUnion{nameMap: make(map[string][]int, len(byChr))}
	for chr, es := range byChr {
		sort.Slice(es, func(i, j int) bool { return es[i].Start0 < es[j].Start0 })
		var endpoints []int
		for _, e := range es {
			n := len(endpoints)
			if n > 0 && e.Start0 <= endpoints[n-1] {
				// Touching or overlapping: extend the previous interval.
				if e.End > endpoints[n-1] {
					endpoints[n-1] = e.End
				}
				continue
			}
			endpoints = append(endpoints, e.Start0, e.End)
		}
		u.nameMap[chr] = endpoints
	}
	return u, nil
}

// NewBEDUnion reads the first three columns of each line of a BED file.
// Blank lines and "#", "track" and "browser" lines are skipped.
func NewBEDUnion(r io.Reader) (*BEDUnion, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 16<<20)
	var entries []Entry
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") || tokens[0] == "track" || tokens[0] == "browser" {
			continue
		}
		if len(tokens) < 3 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval: BED line %d has fewer than 3 columns", lineIdx))
		}
		start, err := strconv.Atoi(tokens[1])
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval: BED line %d", lineIdx), err)
		}
		end, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval: BED line %d", lineIdx), err)
		}
		entries = append(entries, Entry{ChrName: tokens[0], Start0: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	u, err := NewBEDUnionFromEntries(entries)
	if err != nil {
		return nil, err
	}
	log.Printf("BED loaded, %d base(s) covered", u.Bases())
	return u, nil
}

// NewBEDUnionFromPath reads a BED file, gunzipping it if its name says so.
func NewBEDUnionFromPath(ctx context.Context, path string) (u *BEDUnion, err error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, errors.E(err, path)
		}
	}
	if u, err = NewBEDUnion(reader); err != nil {
		return nil, errors.E(err, path)
	}
	return u, nil
}

// ContainsByName reports whether the 0-based position pos on chromosome
// chrName is covered.
func (u *BEDUnion) ContainsByName(chrName string, pos int) bool {
	endpoints := u.nameMap[chrName]
	return sort.SearchInts(endpoints, pos+1)&1 == 1
}

// Bases returns the number of positions covered.
func (u *BEDUnion) Bases() int {
	n := 0
	for _, endpoints := range u.nameMap {
		for i := 0; i < len(endpoints); i += 2 {
			n += endpoints[i+1] - endpoints[i]
		}
	}
	return n
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries. A bare contig ID
// covers the whole contig.
func ParseRegionString(region string) (Entry, error) {
	if region == "" {
		return Entry{}, errors.E(errors.Invalid, "interval: empty region string")
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		return Entry{ChrName: region, Start0: 0, End: posMax - 1}, nil
	}
	if colonPos == 0 {
		return Entry{}, errors.E(errors.Invalid, "interval: empty contig ID in", region)
	}
	result := Entry{ChrName: region[:colonPos]}
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		pos1, err := strconv.Atoi(rangeStr)
		if err != nil || pos1 <= 0 || pos1 >= posMax {
			return Entry{}, errors.E(errors.Invalid, "interval: bad position in region", region)
		}
		result.Start0, result.End = pos1-1, pos1
		return result, nil
	}
	start1, err := strconv.Atoi(rangeStr[:dashPos])
	if err != nil || start1 <= 0 {
		return Entry{}, errors.E(errors.Invalid, "interval: bad start in region", region)
	}
	end, err := strconv.Atoi(rangeStr[dashPos+1:])
	if err != nil || end < start1 || end >= posMax {
		return Entry{}, errors.E(errors.Invalid, "interval: bad range in region", region)
	}
	result.Start0, result.End = start1-1, end
	return result, nil
}

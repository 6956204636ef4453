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

import "fmt"

// NoGene is the genename value the annotation merge assigns to calls that
// have no overlapping gene.
const NoGene = "NoName"

// DefaultScore is the placeholder quality score stored on every call.
const DefaultScore = 28

// Role identifies which sample of a tumor/normal pair a call came from.
type Role int

const (
	// Tumor is the disease sample.
	Tumor Role = iota
	// Normal is the matched normal sample.
	Normal
)

func (r Role) String() string {
	switch r {
	case Tumor:
		return "tumor"
	case Normal:
		return "normal"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Annotation holds the columns appended by the annotation merge. All fields
// are kept as the strings found in the annotation sources.
type Annotation struct {
	GeneName        string // Overlapped gene, or NoGene.
	Where           string // Region type reported with the overlapped gene.
	ChangeType      string // Predicted functional consequence.
	Band            string // Cytogenetic band.
	FathmmCoding    string // FATHMM coding pathogenicity score.
	FathmmNonCoding string // FATHMM non-coding pathogenicity score.
}

// Call is one normalized variant call.
type Call struct {
	// Index is dense within the table the call was extracted into.
	Index     int
	Chrom     string
	Left      int
	Right     int
	RefSeq    string
	VarSeq1   string
	VarSeq2   string
	Count1    int
	Count2    int
	Score     int
	SubjectID string
	Annotation
}

// Key is the variant identity used for joins and presence counting.
type Key struct {
	Chrom   string
	Left    int
	Right   int
	RefSeq  string
	VarSeq1 string
	VarSeq2 string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d-%d:%s/%s/%s", k.Chrom, k.Left, k.Right, k.RefSeq, k.VarSeq1, k.VarSeq2)
}

// KeyFunc extracts the identity a table operation matches on.
type KeyFunc func(c *Call) Key

var (
	// ByVariant matches on the full variant identity.
	ByVariant KeyFunc = (*Call).Key
	// BySite matches on the identity with Right ignored. Within-sample
	// deduplication uses this key.
	BySite KeyFunc = (*Call).SiteKey
)

// Key returns the full variant identity of c.
func (c *Call) Key() Key {
	return Key{
		Chrom:   c.Chrom,
		Left:    c.Left,
		Right:   c.Right,
		RefSeq:  c.RefSeq,
		VarSeq1: c.VarSeq1,
		VarSeq2: c.VarSeq2,
	}
}

// SiteKey returns the variant identity of c with Right zeroed.
func (c *Call) SiteKey() Key {
	k := c.Key()
	k.Right = 0
	return k
}

// Table is an ordered sequence of calls from one sample, or a pool of calls
// from many.
type Table []Call

// Reindex assigns dense indexes 0..n-1 in row order.
func (t Table) Reindex() {
	for i := range t {
		t[i].Index = i
	}
}

// Filter returns the rows for which keep returns true. The receiver is not
// modified.
func (t Table) Filter(keep func(c *Call) bool) Table {
	out := make(Table, 0, len(t))
	for i := range t {
		if keep(&t[i]) {
			out = append(out, t[i])
		}
	}
	return out
}

// Concat returns the rows of all tables, in order.
func Concat(tables ...Table) Table {
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	out := make(Table, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}

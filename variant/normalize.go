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

// DefaultMinAlleleFraction is the depth fraction each allele of a pair must
// exceed for the pair to qualify.
const DefaultMinAlleleFraction = 0.05

// Pair is the allele pair chosen from one depth vector. First and Second are
// allele numbers (0 is the reference allele, i > 0 is the i-th alternate);
// the depths are the raw values from the depth vector.
type Pair struct {
	First, Second           int
	FirstDepth, SecondDepth int
}

// pairOrder is the evaluation order for three-allele records. The first
// qualifying pair wins, even if a later one has more support.
var pairOrder = [...][2]int{{0, 1}, {0, 2}, {1, 2}}

// SelectPair chooses the allele pair a depth vector supports. It returns
// ok=false when no pair qualifies. The fraction denominator is the total depth
// over every allele in the vector.
//
// A vector whose length is not 2 or 3, that holds a negative depth, or whose
// total depth is zero yields an errors.Invalid error.
func SelectPair(depths []int, minFraction float64) (pair Pair, ok bool, err error) {
	if n := len(depths); n != 2 && n != 3 {
		if n == 0 {
			return Pair{}, false, errors.E(errors.Invalid, "missing allele depths")
		}
		return Pair{}, false, errors.E(errors.Invalid, fmt.Sprintf("allele depth vector of length %d (want 2 or 3)", n))
	}
	total := 0
	for _, d := range depths {
		if d < 0 {
			return Pair{}, false, errors.E(errors.Invalid, fmt.Sprintf("negative allele depth %d", d))
		}
		total += d
	}
	if total == 0 {
		return Pair{}, false, errors.E(errors.Invalid, "zero total allele depth")
	}
	qualifies := func(d int) bool {
		return float64(d)/float64(total) > minFraction
	}
	for _, p := range pairOrder {
		if p[1] >= len(depths) {
			break
		}
		a, b := depths[p[0]], depths[p[1]]
		if qualifies(a) && qualifies(b) {
			return Pair{First: p[0], Second: p[1], FirstDepth: a, SecondDepth: b}, true, nil
		}
	}
	return Pair{}, false, nil
}

// Orient canonicalizes the allele orientation of every call in t. VarSeq2 is
// set to the larger of RefSeq and VarSeq1; then, wherever RefSeq < VarSeq1,
// the two alleles are swapped together with Count1 and Count2.
func Orient(t Table) {
	for i := range t {
		c := &t[i]
		c.VarSeq2 = c.RefSeq
		if c.VarSeq1 > c.VarSeq2 {
			c.VarSeq2 = c.VarSeq1
		}
	}
	for i := range t {
		c := &t[i]
		if c.RefSeq < c.VarSeq1 {
			c.RefSeq, c.VarSeq1 = c.VarSeq1, c.RefSeq
			c.Count1, c.Count2 = c.Count2, c.Count1
		}
	}
}

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
package cohort

import "github.com/grailbio/somatic/variant"

// Join is the inner equi-join of left and right on full variant identity. One
// row is produced per matching (left, right) pair, in left-row order. The
// output row is the left row unchanged: its index, score, subject and
// annotation columns win, and nothing from the right row survives.
func Join(left, right variant.Table) variant.Table {
	matches := make(map[variant.Key]int, len(right))
	for i := range right {
		matches[right[i].Key()]++
	}
	var out variant.Table
	for i := range left {
		for n := matches[left[i].Key()]; n > 0; n-- {
			out = append(out, left[i])
		}
	}
	return out
}

// Semijoin returns the rows of left whose full variant identity occurs in
// right, in left-row order. Each left row appears at most once, however many
// right rows share its key.
func Semijoin(left, right variant.Table) variant.Table {
	keys := variant.KeySet(right, variant.ByVariant)
	return left.Filter(func(c *variant.Call) bool {
		_, ok := keys[c.Key()]
		return ok
	})
}

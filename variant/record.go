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

// Record is one raw observation from the call source. Both samples' allele
// depths come from the same underlying line; each depth vector is the
// reference depth followed by one depth per alternate allele, or nil when
// the source had no usable allele-depth field.
type Record struct {
	Chrom        string
	Pos          int
	Ref          string
	Alt          []string
	TumorDepths  []int
	NormalDepths []int
}

// Depths returns the allele-depth vector for the given role.
func (r *Record) Depths(role Role) []int {
	if role == Tumor {
		return r.TumorDepths
	}
	return r.NormalDepths
}

// Allele returns allele i of the record, where 0 is the reference allele and
// i > 0 is Alt[i-1].
func (r *Record) Allele(i int) string {
	if i == 0 {
		return r.Ref
	}
	return r.Alt[i-1]
}

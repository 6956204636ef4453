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

// Presence counts, for one variant, the subjects carrying it in each sample
// combination. The four counts sum to the cohort size.
type Presence struct {
	// Both counts subjects with the variant in tumor and normal.
	Both int
	// TumorOnly counts subjects with the variant in tumor alone.
	TumorOnly int
	// NormalOnly counts subjects with the variant in normal alone.
	NormalOnly int
	// Neither counts subjects with the variant in no sample.
	Neither int
}

// Row is a cohort-set call annotated with its presence counts.
type Row struct {
	variant.Call
	Presence
}

// Counter answers presence queries against indexed pools.
type Counter struct {
	subjects int
	both     map[variant.Key]int
	tumor    map[variant.Key]int
	normal   map[variant.Key]int
}

func countKeys(t variant.Table) map[variant.Key]int {
	m := make(map[variant.Key]int, len(t))
	for i := range t {
		m[t[i].Key()]++
	}
	return m
}

// NewCounter indexes the per-subject pools of a cohort of the given size.
func NewCounter(p Pools, subjects int) *Counter {
	return &Counter{
		subjects: subjects,
		both:     countKeys(p.Common),
		tumor:    countKeys(p.Disease),
		normal:   countKeys(p.Normal),
	}
}

// Count returns the presence counts of the variant with key k.
func (c *Counter) Count(k variant.Key) Presence {
	p := Presence{
		Both:       c.both[k],
		TumorOnly:  c.tumor[k],
		NormalOnly: c.normal[k],
	}
	p.Neither = c.subjects - p.Both - p.TumorOnly - p.NormalOnly
	return p
}

// Rows annotates every call of set with its presence counts.
func (c *Counter) Rows(set variant.Table) []Row {
	rows := make([]Row, len(set))
	for i := range set {
		rows[i] = Row{Call: set[i], Presence: c.Count(set[i].Key())}
	}
	return rows
}

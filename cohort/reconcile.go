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

import (
	"runtime"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/somatic/variant"
)

// Opts configures Reconcile.
type Opts struct {
	// NoGene is the genename value excluded from the cohort-level sets.
	NoGene string
	// Parallelism bounds the number of subjects reconciled at once;
	// 0 means runtime.NumCPU().
	Parallelism int
}

// DefaultOpts are the options used by the bio-somatic tool.
var DefaultOpts = Opts{
	NoGene: variant.NoGene,
}

// SubjectCalls is the reconciliation of one subject. Tumor and Normal are the
// deduplicated input tables; TumorOnly, NormalOnly and Common partition them.
type SubjectCalls struct {
	SubjectID  string
	Tumor      variant.Table
	Normal     variant.Table
	TumorOnly  variant.Table
	NormalOnly variant.Table
	Common     variant.Table
}

// ReconcileSubject splits one subject's calls into tumor-only, normal-only
// and common calls.
func ReconcileSubject(s Subject) SubjectCalls {
	tumor := variant.Dedup(s.Tumor, variant.BySite)
	normal := variant.Dedup(s.Normal, variant.BySite)
	common := Join(tumor, normal)
	return SubjectCalls{
		SubjectID:  s.ID,
		Tumor:      tumor,
		Normal:     normal,
		TumorOnly:  variant.Subtract(tumor, common, variant.BySite),
		NormalOnly: variant.Subtract(normal, common, variant.BySite),
		Common:     common,
	}
}

// Pools are the per-subject results concatenated across the cohort.
type Pools struct {
	// Disease, Normal and Common hold every subject's tumor-only,
	// normal-only and common calls.
	Disease variant.Table
	Normal  variant.Table
	Common  variant.Table
	// Tumor and AllNormal hold every subject's deduplicated tumor and normal
	// tables, before the per-subject split.
	Tumor     variant.Table
	AllNormal variant.Table
}

// Fold concatenates per-subject results in subject-id order. The input slice
// is not reordered.
func Fold(results []SubjectCalls) Pools {
	sorted := append([]SubjectCalls(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SubjectID < sorted[j].SubjectID })
	pool := func(table func(r *SubjectCalls) variant.Table) variant.Table {
		tables := make([]variant.Table, len(sorted))
		for i := range sorted {
			tables[i] = table(&sorted[i])
		}
		return variant.Concat(tables...)
	}
	return Pools{
		Disease:   pool(func(r *SubjectCalls) variant.Table { return r.TumorOnly }),
		Normal:    pool(func(r *SubjectCalls) variant.Table { return r.NormalOnly }),
		Common:    pool(func(r *SubjectCalls) variant.Table { return r.Common }),
		Tumor:     pool(func(r *SubjectCalls) variant.Table { return r.Tumor }),
		AllNormal: pool(func(r *SubjectCalls) variant.Table { return r.Normal }),
	}
}

// Sets are the reported cohort-level variant sets. Each is deduplicated on
// full variant identity, keeping the first row in subject-id order.
type Sets struct {
	TumorUnique  variant.Table
	NormalUnique variant.Table
	Shared       variant.Table
}

// CohortSets computes the cohort-level sets from the pooled deduplicated
// tables. Calls whose genename equals noGene are dropped first; the
// per-subject pools are not filtered this way.
func CohortSets(p Pools, noGene string) Sets {
	hasGene := func(c *variant.Call) bool { return c.GeneName != noGene }
	tumor := p.Tumor.Filter(hasGene)
	normal := p.AllNormal.Filter(hasGene)
	shared := variant.Dedup(Semijoin(tumor, normal), variant.ByVariant)
	return Sets{
		TumorUnique:  variant.Dedup(variant.Subtract(tumor, shared, variant.ByVariant), variant.ByVariant),
		NormalUnique: variant.Dedup(variant.Subtract(normal, shared, variant.ByVariant), variant.ByVariant),
		Shared:       shared,
	}
}

// Report is the result of reconciling a cohort.
type Report struct {
	// Subjects is the number of subjects in the cohort.
	Subjects     int
	TumorUnique  []Row
	NormalUnique []Row
	Shared       []Row
}

// Reconcile runs the full cohort reconciliation. Subjects are reconciled
// concurrently; the result does not depend on the input order.
func Reconcile(subjects []Subject, opts *Opts) (*Report, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := checkSubjects(subjects); err != nil {
		return nil, err
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	results := make([]SubjectCalls, len(subjects))
	err := traverse.Limit(parallelism).Each(len(subjects), func(i int) error {
		results[i] = ReconcileSubject(subjects[i])
		log.Debug.Printf("reconcile: subject %s: %d tumor-only, %d normal-only, %d common",
			results[i].SubjectID, len(results[i].TumorOnly), len(results[i].NormalOnly), len(results[i].Common))
		return nil
	})
	if err != nil {
		return nil, err
	}
	pools := Fold(results)
	sets := CohortSets(pools, opts.NoGene)
	counter := NewCounter(pools, len(subjects))
	r := &Report{
		Subjects:     len(subjects),
		TumorUnique:  counter.Rows(sets.TumorUnique),
		NormalUnique: counter.Rows(sets.NormalUnique),
		Shared:       counter.Rows(sets.Shared),
	}
	log.Printf("reconcile: %d subjects, %d tumor-unique, %d normal-unique, %d shared variants",
		r.Subjects, len(r.TumorUnique), len(r.NormalUnique), len(r.Shared))
	return r, nil
}

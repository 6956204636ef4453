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
package cohort_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/somatic/cohort"
	"github.com/grailbio/somatic/variant"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func snv(subject string, pos int, ref, alt string) variant.Call {
	t := variant.Table{{Chrom: "chr1", Left: pos, Right: pos + len(alt), RefSeq: ref, VarSeq1: alt, Count1: 10, Count2: 10, SubjectID: subject}}
	variant.Orient(t)
	return t[0]
}

func TestReconcileTumorOnlyScenario(t *testing.T) {
	records := []variant.Record{{
		Chrom: "chr1", Pos: 100, Ref: "A", Alt: []string{"G"},
		TumorDepths: []int{40, 60}, NormalDepths: []int{95, 5},
	}}
	tumor, _ := variant.Extract("S1", variant.Tumor, records, nil)
	normal, _ := variant.Extract("S1", variant.Normal, records, nil)
	report, err := cohort.Reconcile([]cohort.Subject{{ID: "S1", Tumor: tumor, Normal: normal}}, nil)
	assert.NoError(t, err)
	expect.EQ(t, report.Subjects, 1)
	expect.EQ(t, len(report.NormalUnique), 0)
	expect.EQ(t, len(report.Shared), 0)
	assert.EQ(t, len(report.TumorUnique), 1)
	row := report.TumorUnique[0]
	expect.EQ(t, row.Left, 100)
	expect.EQ(t, row.Presence, cohort.Presence{Both: 0, TumorOnly: 1, NormalOnly: 0, Neither: 0})
}

func TestReconcileTumorOnlyInTwoSubjects(t *testing.T) {
	subjects := []cohort.Subject{
		{ID: "S1", Tumor: variant.Table{snv("S1", 10, "A", "G")}},
		{ID: "S2", Tumor: variant.Table{snv("S2", 10, "A", "G")}},
	}
	report, err := cohort.Reconcile(subjects, nil)
	assert.NoError(t, err)
	assert.EQ(t, len(report.TumorUnique), 1)
	expect.EQ(t, report.TumorUnique[0].SubjectID, "S1")
	expect.EQ(t, report.TumorUnique[0].Presence, cohort.Presence{TumorOnly: 2})
}

func TestReconcileShared(t *testing.T) {
	v := snv("", 10, "A", "G")
	w := snv("", 20, "C", "T")
	with := func(c variant.Call, subject string) variant.Call {
		c.SubjectID = subject
		return c
	}
	subjects := []cohort.Subject{
		{ID: "S1", Tumor: variant.Table{with(v, "S1")}, Normal: variant.Table{with(v, "S1"), with(w, "S1")}},
		{ID: "S2", Tumor: variant.Table{with(v, "S2")}},
		{ID: "S3"},
	}
	report, err := cohort.Reconcile(subjects, &cohort.Opts{NoGene: variant.NoGene, Parallelism: 2})
	assert.NoError(t, err)
	expect.EQ(t, len(report.TumorUnique), 0)
	assert.EQ(t, len(report.Shared), 1)
	expect.EQ(t, report.Shared[0].Key(), v.Key())
	expect.EQ(t, report.Shared[0].Presence, cohort.Presence{Both: 1, TumorOnly: 1, NormalOnly: 0, Neither: 1})
	assert.EQ(t, len(report.NormalUnique), 1)
	expect.EQ(t, report.NormalUnique[0].Key(), w.Key())
	expect.EQ(t, report.NormalUnique[0].Presence, cohort.Presence{NormalOnly: 1, Neither: 2})
}

func TestReconcileGeneFilter(t *testing.T) {
	noGene := snv("S1", 10, "A", "G")
	noGene.GeneName = variant.NoGene
	kept := snv("S1", 20, "A", "G")
	kept.GeneName = "TP53"
	report, err := cohort.Reconcile([]cohort.Subject{{ID: "S1", Tumor: variant.Table{noGene, kept}}}, nil)
	assert.NoError(t, err)
	assert.EQ(t, len(report.TumorUnique), 1)
	expect.EQ(t, report.TumorUnique[0].GeneName, "TP53")
}

func TestReconcileSubject(t *testing.T) {
	v := snv("S1", 10, "A", "G")
	w := snv("S1", 20, "C", "T")
	x := snv("S1", 30, "G", "T")
	tumorV := v
	tumorV.Index, tumorV.Count1 = 3, 99
	s := cohort.Subject{
		ID:     "S1",
		Tumor:  variant.Table{tumorV, w, w},
		Normal: variant.Table{v, x},
	}
	r := cohort.ReconcileSubject(s)
	expect.EQ(t, r.SubjectID, "S1")
	expect.EQ(t, len(r.Tumor), 2)
	assert.EQ(t, len(r.Common), 1)
	// The tumor row wins the join.
	expect.EQ(t, r.Common[0], tumorV)
	expect.EQ(t, r.TumorOnly, variant.Table{w})
	expect.EQ(t, r.NormalOnly, variant.Table{x})
}

func TestJoin(t *testing.T) {
	v := snv("S1", 10, "A", "G")
	w := snv("S2", 20, "C", "T")
	right := variant.Table{snv("S9", 10, "A", "G"), snv("S8", 10, "A", "G")}
	out := cohort.Join(variant.Table{v, w}, right)
	expect.EQ(t, out, variant.Table{v, v})
	expect.EQ(t, len(cohort.Join(variant.Table{w}, right)), 0)
}

func TestSemijoin(t *testing.T) {
	v := snv("S1", 10, "A", "G")
	w := snv("S2", 20, "C", "T")
	right := variant.Table{snv("S9", 10, "A", "G"), snv("S8", 10, "A", "G")}
	expect.EQ(t, cohort.Semijoin(variant.Table{v, w, v}, right), variant.Table{v, v})
	expect.EQ(t, len(cohort.Semijoin(variant.Table{w}, right)), 0)

	r := rand.New(rand.NewSource(2))
	for iter := 0; iter < 10; iter++ {
		var results []cohort.SubjectCalls
		for _, s := range randomCohort(r, 1+r.Intn(8), 30) {
			results = append(results, cohort.ReconcileSubject(s))
		}
		p := cohort.Fold(results)
		expect.EQ(t,
			variant.Dedup(cohort.Semijoin(p.Tumor, p.AllNormal), variant.ByVariant),
			variant.Dedup(cohort.Join(p.Tumor, p.AllNormal), variant.ByVariant))
	}
}

func TestCohortSetsSharedAcrossManySubjects(t *testing.T) {
	const (
		nSubjects = 1000
		nVariants = 10
	)
	results := make([]cohort.SubjectCalls, nSubjects)
	for i := range results {
		id := fmt.Sprintf("S%04d", i)
		var tab variant.Table
		for j := 0; j < nVariants; j++ {
			tab = append(tab, snv(id, 100*(j+1), "A", "G"))
		}
		results[i] = cohort.SubjectCalls{SubjectID: id, Tumor: tab, Normal: tab, Common: tab}
	}
	p := cohort.Fold(results)
	expect.EQ(t, len(cohort.Semijoin(p.Tumor, p.AllNormal)), nSubjects*nVariants)

	sets := cohort.CohortSets(p, variant.NoGene)
	expect.EQ(t, len(sets.TumorUnique), 0)
	expect.EQ(t, len(sets.NormalUnique), 0)
	assert.EQ(t, len(sets.Shared), nVariants)
	for _, c := range sets.Shared {
		expect.EQ(t, c.SubjectID, "S0000")
	}
	counter := cohort.NewCounter(p, nSubjects)
	expect.EQ(t, counter.Count(sets.Shared[0].Key()), cohort.Presence{Both: nSubjects})
}

func TestPairSubjects(t *testing.T) {
	tumors := map[string]variant.Table{"B": nil, "A": {snv("A", 1, "A", "C")}}
	normals := map[string]variant.Table{"A": nil, "B": nil}
	subjects, err := cohort.PairSubjects(tumors, normals)
	assert.NoError(t, err)
	assert.EQ(t, len(subjects), 2)
	expect.EQ(t, subjects[0].ID, "A")
	expect.EQ(t, len(subjects[0].Tumor), 1)
	expect.EQ(t, subjects[1].ID, "B")

	normals = map[string]variant.Table{"A": nil, "C": nil}
	_, err = cohort.PairSubjects(tumors, normals)
	expect.True(t, errors.Is(errors.Precondition, err), "%v", err)
	expect.HasSubstr(t, err.Error(), "tumor only [B]")
	expect.HasSubstr(t, err.Error(), "normal only [C]")
}

func TestReconcileInvalidCohort(t *testing.T) {
	_, err := cohort.Reconcile(nil, nil)
	expect.True(t, errors.Is(errors.Invalid, err), "%v", err)
	_, err = cohort.Reconcile([]cohort.Subject{{ID: "A"}, {ID: "A"}}, nil)
	expect.True(t, errors.Is(errors.Invalid, err), "%v", err)
}

// randomCohort draws each subject's calls from a small shared universe so
// that variants recur across subjects and samples.
func randomCohort(r *rand.Rand, nSubjects, nVariants int) []cohort.Subject {
	universe := make([]variant.Call, nVariants)
	bases := []string{"A", "C", "G", "T"}
	for i := range universe {
		ref := bases[r.Intn(4)]
		alt := bases[(r.Intn(3)+1+indexOf(bases, ref))%4]
		universe[i] = snv("", 1000+i/2, ref, alt)
		if r.Intn(5) == 0 {
			universe[i].GeneName = variant.NoGene
		} else {
			universe[i].GeneName = fmt.Sprintf("G%d", i%7)
		}
	}
	pick := func(id string) variant.Table {
		var t variant.Table
		for _, v := range universe {
			if r.Intn(3) == 0 {
				v.SubjectID = id
				t = append(t, v)
				if r.Intn(4) == 0 {
					t = append(t, v)
				}
			}
		}
		t.Reindex()
		return t
	}
	subjects := make([]cohort.Subject, nSubjects)
	for i := range subjects {
		id := fmt.Sprintf("S%02d", i)
		subjects[i] = cohort.Subject{ID: id, Tumor: pick(id), Normal: pick(id)}
	}
	return subjects
}

func indexOf(s []string, x string) int {
	for i, v := range s {
		if v == x {
			return i
		}
	}
	return -1
}

func TestReconcileProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 20; iter++ {
		subjects := randomCohort(r, 1+r.Intn(12), 40)
		report, err := cohort.Reconcile(subjects, nil)
		assert.NoError(t, err)

		want := map[variant.Key]bool{}
		for _, s := range subjects {
			for _, tab := range []variant.Table{s.Tumor, s.Normal} {
				for _, c := range variant.Dedup(tab, variant.BySite) {
					if c.GeneName != variant.NoGene {
						want[c.Key()] = true
					}
				}
			}
		}
		got := map[variant.Key]int{}
		for _, rows := range [][]cohort.Row{report.TumorUnique, report.NormalUnique, report.Shared} {
			for _, row := range rows {
				got[row.Key()]++
				p := row.Presence
				expect.EQ(t, p.Both+p.TumorOnly+p.NormalOnly+p.Neither, len(subjects), "%v", row.Key())
				expect.GE(t, p.Neither, 0)
			}
		}
		expect.EQ(t, len(got), len(want))
		for k, n := range got {
			expect.EQ(t, n, 1, "key %v in more than one set", k)
			expect.True(t, want[k], "unexpected key %v", k)
		}

		// Input order does not matter.
		shuffled := append([]cohort.Subject(nil), subjects...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again, err := cohort.Reconcile(shuffled, &cohort.Opts{NoGene: variant.NoGene, Parallelism: 3})
		assert.NoError(t, err)
		expect.EQ(t, again, report)
	}
}

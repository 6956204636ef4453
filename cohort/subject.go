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
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/somatic/variant"
	"github.com/samber/lo"
)

// Subject is one member of the cohort with its two call tables.
type Subject struct {
	ID     string
	Tumor  variant.Table
	Normal variant.Table
}

// PairSubjects assembles the cohort from per-role call tables keyed by subject
// id. The tumor and normal id sets must be identical; otherwise the cohort is
// rejected with an errors.Precondition error, since every presence count
// depends on the subject total. Subjects are returned sorted by id.
func PairSubjects(tumors, normals map[string]variant.Table) ([]Subject, error) {
	tumorOnly, normalOnly := lo.Difference(lo.Keys(tumors), lo.Keys(normals))
	if len(tumorOnly) > 0 || len(normalOnly) > 0 {
		sort.Strings(tumorOnly)
		sort.Strings(normalOnly)
		return nil, errors.E(errors.Precondition, fmt.Sprintf(
			"tumor and normal subject sets differ: tumor only %v, normal only %v", tumorOnly, normalOnly))
	}
	ids := lo.Keys(tumors)
	sort.Strings(ids)
	subjects := make([]Subject, len(ids))
	for i, id := range ids {
		subjects[i] = Subject{ID: id, Tumor: tumors[id], Normal: normals[id]}
	}
	return subjects, nil
}

func checkSubjects(subjects []Subject) error {
	if len(subjects) == 0 {
		return errors.E(errors.Invalid, "empty cohort")
	}
	dups := lo.FindDuplicates(lo.Map(subjects, func(s Subject, _ int) string { return s.ID }))
	if len(dups) > 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("duplicate subject ids %v", dups))
	}
	return nil
}

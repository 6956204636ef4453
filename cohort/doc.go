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

/*
Package cohort reconciles the tumor and normal call tables of a cohort of
subjects.

Each subject is reconciled on its own first: its deduplicated tumor and normal
tables are joined on variant identity, the matches become the subject's common
calls and are subtracted from both sides. The per-subject results are folded,
in subject-id order, into three cohort-wide pools (tumor-only, normal-only and
common) that feed presence counting.

Separately, the cohort's tumor and normal calls, minus those annotated with
the no-gene sentinel, are joined once more to give the reported tumor-unique,
normal-unique and shared variant sets. Every row of those sets is annotated
with the number of subjects carrying the variant in tumor only, normal only,
both, or neither.
*/
package cohort

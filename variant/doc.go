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
Package variant turns per-record allele-depth observations from a paired
tumor/normal call set into normalized variant calls.

A Record carries the reference allele depth followed by the per-alternate
depths for both samples. Extract picks, for one sample role, the first allele
pair whose members each exceed the minimum allele fraction, and emits one Call
per qualifying record. Calls are then canonicalized so that RefSeq is never
lexicographically smaller than VarSeq1; Count1 and Count2 move with their
alleles. VarSeq2 holds the larger of the two original alleles and does not
change under the swap.

Dedup and Subtract implement the two within-sample deduplication policies
used by package cohort: keep-first, and full set-difference against a
reference table.
*/
package variant

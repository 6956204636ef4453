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

// Package annotate attaches external functional annotation to variant call
// tables.
//
// Two sources are supported. SNPnexus (https://www.snp-nexus.org) is queried
// in batch with a file produced by WriteSNPnexusInput; its "near gens" and
// "gen coords" result tables supply the gene name, genomic region, cytoband
// and predicted function of each call. FATHMM supplies coding and noncoding
// pathogenicity scores.
//
// Merge joins the result tables onto a call table without ever adding or
// dropping call rows.
package annotate

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
package main

/*
bio-somatic separates somatic from germline variants in a cohort of
tumor/normal sample pairs.

	bio-somatic extract -out calls/ sample1.vcf.gz sample2.vcf.gz ...
	bio-somatic snpnexus-input -out snpnexus/ calls/*_tumor.tsv
	bio-somatic annotate -near near_gens.txt -coords gen_coords.txt -fathmm fathmm.txt calls/*.tsv
	bio-somatic reconcile -out all_variants.xlsx calls/ calls/

Run "bio-somatic help" for the flags of each subcommand.
*/

import (
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/somatic/cmd/bio-somatic/cmd"
)

func main() {
	shutdown := grail.Init()
	code := cmd.Run()
	shutdown()
	os.Exit(code)
}

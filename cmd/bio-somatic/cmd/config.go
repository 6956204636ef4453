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
package cmd

import (
	"github.com/grailbio/somatic/cohort"
	"github.com/grailbio/somatic/encoding/vcf"
	"github.com/grailbio/somatic/variant"
	"github.com/kelseyhightower/envconfig"
)

// config holds the defaults of the tunable flags. Values come from the
// library defaults, then the environment; flags override both.
type config struct {
	MinAlleleFraction float64 `envconfig:"SOMATIC_MIN_ALLELE_FRACTION"`
	Score             int     `envconfig:"SOMATIC_VAR_SCORE"`
	TumorIndex        int     `envconfig:"SOMATIC_TUMOR_INDEX"`
	NormalIndex       int     `envconfig:"SOMATIC_NORMAL_INDEX"`
	NoGene            string  `envconfig:"SOMATIC_NO_GENE"`
	Parallelism       int     `envconfig:"SOMATIC_PARALLELISM"`
}

func defaultConfig() config {
	return config{
		MinAlleleFraction: variant.DefaultExtractOpts.MinAlleleFraction,
		Score:             variant.DefaultExtractOpts.Score,
		TumorIndex:        vcf.DefaultOpts.TumorIndex,
		NormalIndex:       vcf.DefaultOpts.NormalIndex,
		NoGene:            cohort.DefaultOpts.NoGene,
		Parallelism:       cohort.DefaultOpts.Parallelism,
	}
}

// loadConfig returns the defaults overridden by SOMATIC_* environment
// variables.
func loadConfig() (config, error) {
	cfg := defaultConfig()
	err := envconfig.Process("", &cfg)
	return cfg, err
}

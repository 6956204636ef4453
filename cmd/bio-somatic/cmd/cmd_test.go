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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/somatic/encoding/calls"
	"github.com/grailbio/somatic/variant"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"v.io/x/lib/cmdline"
)

const vcfHeader = `##fileformat=VCFv4.2
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=AD,Number=R,Type=Integer,Description="Allelic depths">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NORMAL	TUMOR
`

// Subject 1234 has a tumor-only variant at chr1:100 and a germline variant at
// chr1:200. Subject 5678 shares the germline variant and has a normal-only
// variant at chr3:400.
var (
	vcf1234 = strings.Replace(vcfHeader, "##FORMAT=<ID=GT", "##INDIVIDUAL=<NAME=TCGA-AB-1234>\n##FORMAT=<ID=GT", 1) +
		"chr1\t100\t.\tA\tG\t.\tPASS\t.\tGT:AD\t0/0:95,5\t0/1:40,60\n" +
		"chr1\t200\t.\tC\tT\t.\tPASS\t.\tGT:AD\t0/1:50,50\t0/1:50,50\n"
	vcf5678 = vcfHeader +
		"chr1\t200\t.\tC\tT\t.\tPASS\t.\tGT:AD\t0/1:50,50\t0/1:50,50\n" +
		"chr3\t400\t.\tG\tA\t.\tPASS\t.\tGT:AD\t0/1:50,50\t0/0:100,0\n"
	nearGenes = "Chromosome\tPosition\tOverlapped Gene\tType\n" +
		"1\t100\tGENE1\tcoding\n" +
		"1\t200\tGENE2\tcoding\n" +
		"3\t400\tGENE3\tintronic\n"
)

func run(t *testing.T, args ...string) error {
	cfg := defaultConfig()
	var out bytes.Buffer
	env := &cmdline.Env{Stdout: &out, Stderr: &out, Vars: map[string]string{}}
	err := cmdline.ParseAndRun(newRoot(&cfg), env, args)
	if err != nil {
		t.Logf("bio-somatic %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return err
}

func writeFile(t *testing.T, path, data string) {
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
}

func TestPipeline(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	vcf1 := filepath.Join(tmpdir, "a.vcf")
	vcf2 := filepath.Join(tmpdir, "5678_run1.vcf")
	writeFile(t, vcf1, vcf1234)
	writeFile(t, vcf2, vcf5678)
	near := filepath.Join(tmpdir, "near_gens.txt")
	writeFile(t, near, nearGenes)
	callDir := filepath.Join(tmpdir, "calls")
	metrics := filepath.Join(tmpdir, "extract.prom")

	assert.NoError(t, run(t, "extract", "-out", callDir, "-metrics", metrics, vcf1, vcf2))
	tumor, err := calls.ReadFile(ctx, calls.Path(callDir, "1234", variant.Tumor))
	assert.NoError(t, err)
	expect.EQ(t, len(tumor), 2)
	normal, err := calls.ReadFile(ctx, calls.Path(callDir, "1234", variant.Normal))
	assert.NoError(t, err)
	expect.EQ(t, len(normal), 1)
	prom, err := ioutil.ReadFile(metrics)
	assert.NoError(t, err)
	expect.HasSubstr(t, string(prom), "somatic_records_total 4")
	expect.HasSubstr(t, string(prom), `somatic_calls_total{role="tumor"} 3`)

	assert.NoError(t, run(t, "snpnexus-input", calls.Path(callDir, "1234", variant.Tumor)))
	query, err := ioutil.ReadFile(filepath.Join(callDir, "1234_tumor_snpnexus.txt"))
	assert.NoError(t, err)
	expect.EQ(t, strings.Count(string(query), "\n"), 3)

	tables, err := filepath.Glob(filepath.Join(callDir, "*.tsv"))
	assert.NoError(t, err)
	assert.EQ(t, len(tables), 4)
	assert.NoError(t, run(t, append([]string{"annotate", "-near", near}, tables...)...))
	tumor, err = calls.ReadFile(ctx, calls.Path(callDir, "1234", variant.Tumor))
	assert.NoError(t, err)
	for _, c := range tumor {
		expect.True(t, strings.HasPrefix(c.GeneName, "GENE"), "%+v", c)
	}

	prefix := filepath.Join(tmpdir, "report", "all")
	assert.NoError(t, run(t, "reconcile", "-out", prefix, callDir, callDir))
	for _, want := range []struct {
		sheet, gene, presence string
	}{
		{"tumor", "GENE1", "\t0\t1\t0\t1\n"},
		{"normal", "GENE3", "\t0\t0\t1\t1\n"},
		{"common", "GENE2", "\t2\t0\t0\t0\n"},
	} {
		data, err := ioutil.ReadFile(prefix + "." + want.sheet + ".tsv")
		assert.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		assert.EQ(t, len(lines), 2, want.sheet)
		expect.HasSubstr(t, lines[1], want.gene)
		expect.True(t, strings.HasSuffix(lines[1]+"\n", want.presence), "%s: %q", want.sheet, lines[1])
	}
}

func TestExtractRegion(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "a.vcf")
	writeFile(t, path, vcf1234)
	bed := filepath.Join(tmpdir, "panel.bed")
	writeFile(t, bed, "chr1\t150\t250\n")

	out := filepath.Join(tmpdir, "region")
	assert.NoError(t, run(t, "extract", "-out", out, "-region", "chr1:1-150", path))
	tumor, err := calls.ReadFile(ctx, calls.Path(out, "1234", variant.Tumor))
	assert.NoError(t, err)
	assert.EQ(t, len(tumor), 1)
	expect.EQ(t, tumor[0].Left, 100)

	out = filepath.Join(tmpdir, "bed")
	assert.NoError(t, run(t, "extract", "-out", out, "-bed", bed, path))
	tumor, err = calls.ReadFile(ctx, calls.Path(out, "1234", variant.Tumor))
	assert.NoError(t, err)
	assert.EQ(t, len(tumor), 1)
	expect.EQ(t, tumor[0].Left, 200)
}

func TestReconcileMismatch(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	c := variant.Call{Chrom: "chr1", Left: 1, Right: 2, RefSeq: "G", VarSeq1: "A", VarSeq2: "G", SubjectID: "1"}
	assert.NoError(t, calls.WriteFile(ctx, calls.Path(tmpdir, "1", variant.Tumor), variant.Table{c}))
	assert.NoError(t, calls.WriteFile(ctx, calls.Path(tmpdir, "1", variant.Normal), variant.Table{c}))
	assert.NoError(t, calls.WriteFile(ctx, calls.Path(tmpdir, "2", variant.Tumor), variant.Table{c}))

	prefix := filepath.Join(tmpdir, "all")
	err := run(t, "reconcile", "-out", prefix, tmpdir, tmpdir)
	expect.HasSubstr(t, err.Error(), "tumor only [2]")
	_, err = os.Stat(prefix + ".tumor.tsv")
	expect.True(t, os.IsNotExist(err))
}

func TestUsageErrors(t *testing.T) {
	expect.True(t, run(t, "extract", "a.vcf") != nil)
	expect.True(t, run(t, "extract", "-out", "x", "-subject", "1", "a.vcf", "b.vcf") != nil)
	expect.True(t, run(t, "extract", "-out", "x", "-bed", "a.bed", "-region", "chr1", "a.vcf") != nil)
	expect.True(t, run(t, "annotate", "x.tsv") != nil)
	expect.True(t, run(t, "reconcile", "x") != nil)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig()
	assert.NoError(t, err)
	expect.EQ(t, cfg, defaultConfig())

	os.Setenv("SOMATIC_MIN_ALLELE_FRACTION", "0.1")
	os.Setenv("SOMATIC_NO_GENE", "-")
	defer os.Unsetenv("SOMATIC_MIN_ALLELE_FRACTION")
	defer os.Unsetenv("SOMATIC_NO_GENE")
	cfg, err = loadConfig()
	assert.NoError(t, err)
	expect.EQ(t, cfg.MinAlleleFraction, 0.1)
	expect.EQ(t, cfg.NoGene, "-")
	expect.EQ(t, cfg.Score, variant.DefaultScore)

	os.Setenv("SOMATIC_PARALLELISM", "many")
	defer os.Unsetenv("SOMATIC_PARALLELISM")
	_, err = loadConfig()
	expect.True(t, err != nil)
}

func TestOutputPath(t *testing.T) {
	expect.EQ(t, outputPath("", "d/x.tsv", ".tsv", ".txt"), "d/x.txt")
	expect.EQ(t, outputPath("out", "d/x.tsv", ".tsv", ".txt"), "out/x.txt")
	expect.EQ(t, outputPath("s3://b/out/", "x.tsv", "", ""), "s3://b/out/x.tsv")
	expect.EQ(t, outputPath("", "x.tsv", ".tsv", "_q.txt"), "x_q.txt")
}

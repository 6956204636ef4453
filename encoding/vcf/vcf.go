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

// Package vcf reads paired tumor/normal VCF files into variant.Records.
package vcf

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brentp/vcfgo"
	"github.com/brentp/xopen"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/interval"
	"github.com/grailbio/somatic/variant"
)

// Opts selects the sample columns and the subject id.
type Opts struct {
	// TumorSample and NormalSample, when set, select sample columns by name
	// and take precedence over TumorIndex and NormalIndex.
	TumorSample  string
	NormalSample string
	TumorIndex   int
	NormalIndex  int
	// SubjectID overrides the id read from the header.
	SubjectID string
	// Regions, if set, drops records whose position it does not cover.
	Regions *interval.BEDUnion
}

// DefaultOpts matches the column layout of paired somatic callers, which
// write the normal sample first.
var DefaultOpts = Opts{
	TumorIndex:  1,
	NormalIndex: 0,
}

// Reader produces one variant.Record per VCF data line.
type Reader struct {
	name      string
	rd        *vcfgo.Reader
	closer    io.Closer
	tumor     int
	normal    int
	subjectID string
	regions   *interval.BEDUnion
	skipped   int
}

// Open opens a VCF (optionally gzipped; "-" is stdin) for reading.
func Open(path string, opts *Opts) (*Reader, error) {
	in, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	r, err := NewReader(in, path, opts)
	if err != nil {
		in.Close() // nolint: errcheck
		return nil, err
	}
	r.closer = in
	return r, nil
}

// NewReader reads a VCF from in. The name is used in messages and as the
// last resort for the subject id.
func NewReader(in io.Reader, name string, opts *Opts) (*Reader, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	rd, err := vcfgo.NewReader(in, false)
	if err != nil {
		return nil, errors.E(errors.Invalid, err, "reading VCF header of", name)
	}
	r := &Reader{name: name, rd: rd, regions: opts.Regions}
	samples := rd.Header.SampleNames
	if r.tumor, err = sampleIndex(samples, opts.TumorSample, opts.TumorIndex); err != nil {
		return nil, errors.E(err, name)
	}
	if r.normal, err = sampleIndex(samples, opts.NormalSample, opts.NormalIndex); err != nil {
		return nil, errors.E(err, name)
	}
	switch {
	case opts.SubjectID != "":
		r.subjectID = opts.SubjectID
	default:
		if id, ok := HeaderSubjectID(rd.Header); ok {
			r.subjectID = id
		} else {
			r.subjectID = FileSubjectID(name)
			log.Printf("vcf: %s: no INDIVIDUAL header, using subject id %q", name, r.subjectID)
		}
	}
	return r, nil
}

func sampleIndex(samples []string, name string, index int) (int, error) {
	if name == "" {
		if index < 0 || index >= len(samples) {
			return 0, errors.E(errors.Invalid,
				fmt.Sprintf("sample column %d out of range (%d samples)", index, len(samples)))
		}
		return index, nil
	}
	for i, s := range samples {
		if s == name {
			return i, nil
		}
	}
	return 0, errors.E(errors.NotExist, fmt.Sprintf("sample %q not in %v", name, samples))
}

// SubjectID returns the subject the file belongs to.
func (r *Reader) SubjectID() string { return r.subjectID }

// Read returns the next record, or io.EOF after the last one. Lines vcfgo
// flags as unparsable are logged and still returned when it produced a
// variant for them.
func (r *Reader) Read() (variant.Record, error) {
	var v *vcfgo.Variant
	for {
		v = r.rd.Read()
		if err := r.rd.Error(); err != nil {
			log.Error.Printf("vcf: %s: %v", r.name, err)
			r.rd.Clear()
		}
		if v == nil {
			return variant.Record{}, io.EOF
		}
		if r.regions == nil || r.regions.ContainsByName(v.Chromosome, int(v.Pos)-1) {
			break
		}
		r.skipped++
	}
	rec := variant.Record{
		Chrom: v.Chromosome,
		Pos:   int(v.Pos),
		Ref:   v.Reference,
		Alt:   v.Alternate,
	}
	rec.TumorDepths = sampleDepths(v, r.tumor)
	rec.NormalDepths = sampleDepths(v, r.normal)
	return rec, nil
}

func sampleDepths(v *vcfgo.Variant, i int) []int {
	if i >= len(v.Samples) || v.Samples[i] == nil {
		return nil
	}
	return ParseDepths(v.Samples[i].Fields["AD"])
}

// Skipped returns the number of records dropped so far for lying outside
// Opts.Regions.
func (r *Reader) Skipped() int { return r.skipped }

// Close releases the underlying file, if the reader opened one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ParseDepths parses an AD sample field. It returns nil when the field is
// empty, missing (".") or holds anything other than non-negative integers.
func ParseDepths(ad string) []int {
	if ad == "" || ad == "." {
		return nil
	}
	parts := strings.Split(ad, ",")
	depths := make([]int, len(parts))
	for i, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil || d < 0 {
			return nil
		}
		depths[i] = d
	}
	return depths
}

const individualPrefix = "INDIVIDUAL="

// HeaderSubjectID extracts the subject id from a "##INDIVIDUAL=<NAME=...>"
// header line: the third dash-separated token of NAME, so
// "TCGA-AB-1234" yields "1234".
func HeaderSubjectID(h *vcfgo.Header) (string, bool) {
	for _, line := range h.Extras {
		line = strings.TrimPrefix(line, "##")
		if !strings.HasPrefix(line, individualPrefix) {
			continue
		}
		if id, ok := ParseIndividual(strings.TrimPrefix(line, individualPrefix)); ok {
			return id, true
		}
	}
	return "", false
}

// ParseIndividual parses the value of an INDIVIDUAL header line, e.g.
// "<NAME=TCGA-AB-1234,DESCRIPTION=...>".
func ParseIndividual(value string) (string, bool) {
	value = strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
	for _, field := range strings.Split(value, ",") {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 || kv[0] != "NAME" {
			continue
		}
		name := strings.Trim(kv[1], "\"")
		tokens := strings.Split(name, "-")
		if len(tokens) < 3 || tokens[2] == "" {
			return "", false
		}
		return tokens[2], true
	}
	return "", false
}

// FileSubjectID derives a subject id from a file name: the base name up to
// the first '_' or '.'.
func FileSubjectID(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexAny(base, "_."); i > 0 {
		return base[:i]
	}
	return base
}

// Calls is the extraction result for one VCF.
type Calls struct {
	SubjectID string
	Records   int
	// Skipped counts records outside Opts.Regions.
	Skipped   int
	Tumor     variant.Table
	Normal    variant.Table
	Warnings  []*variant.MalformedRecordError
}

// Extract reads every record from r and builds the tumor and normal call
// tables. Malformed records are logged, counted in Warnings and skipped.
func Extract(r *Reader, opts *variant.ExtractOpts) (*Calls, error) {
	tumor := variant.NewExtractor(r.SubjectID(), variant.Tumor, opts)
	normal := variant.NewExtractor(r.SubjectID(), variant.Normal, opts)
	c := &Calls{SubjectID: r.SubjectID()}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		c.Records++
		tumor.Add(&rec)
		normal.Add(&rec)
	}
	c.Skipped = r.Skipped()
	c.Tumor = tumor.Finish()
	c.Normal = normal.Finish()
	c.Warnings = append(append(c.Warnings, tumor.Warnings()...), normal.Warnings()...)
	for _, w := range c.Warnings {
		log.Error.Printf("vcf: %s: %v", r.name, w)
	}
	return c, nil
}

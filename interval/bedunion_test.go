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
package interval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

const testBED = `track name=panel
chr1	2489165	2489273	exon2
chr1	2488104	2488172	exon1
# overlapping and touching intervals are merged
chr1	2489200	2489300
chr1	2489300	2489310
chr2	100	100
chr2	200	210
`

func TestNewBEDUnion(t *testing.T) {
	u, err := NewBEDUnion(strings.NewReader(testBED))
	assert.NoError(t, err)
	expect.EQ(t, u.nameMap, map[string][]int{
		"chr1": {2488104, 2488172, 2489165, 2489310},
		"chr2": {200, 210},
	})
	expect.EQ(t, u.Bases(), 68+145+10)

	expect.True(t, u.ContainsByName("chr1", 2488104))
	expect.False(t, u.ContainsByName("chr1", 2488103))
	expect.True(t, u.ContainsByName("chr1", 2488171))
	expect.False(t, u.ContainsByName("chr1", 2488172))
	expect.True(t, u.ContainsByName("chr1", 2489305))
	expect.False(t, u.ContainsByName("chr2", 100))
	expect.True(t, u.ContainsByName("chr2", 209))
	expect.False(t, u.ContainsByName("chr3", 0))

	_, err = NewBEDUnion(strings.NewReader("chr1\t10\n"))
	expect.True(t, err != nil)
	_, err = NewBEDUnion(strings.NewReader("chr1\t10\t5\n"))
	expect.True(t, err != nil)
}

func TestNewBEDUnionFromPath(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	path := filepath.Join(tmpdir, "panel.bed.gz")
	f, err := os.Create(path)
	assert.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write([]byte(testBED))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, f.Close())

	u, err := NewBEDUnionFromPath(vcontext.Background(), path)
	assert.NoError(t, err)
	expect.True(t, u.ContainsByName("chr2", 205))
}

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region string
		want   Entry
		ok     bool
	}{
		{"chr1:123-456", Entry{"chr1", 122, 456}, true},
		{"chr1:1,000-2,000", Entry{"chr1", 999, 2000}, true},
		{"chr1:123", Entry{"chr1", 122, 123}, true},
		{"chrM", Entry{"chrM", 0, posMax - 1}, true},
		{"HLA-A*01:01:01:01:100", Entry{"HLA-A*01:01:01:01", 99, 100}, true},
		{"", Entry{}, false},
		{":1-2", Entry{}, false},
		{"chr1:0", Entry{}, false},
		{"chr1:5-4", Entry{}, false},
		{"chr1:x-4", Entry{}, false},
	}
	for _, tt := range tests {
		got, err := ParseRegionString(tt.region)
		if !tt.ok {
			expect.True(t, err != nil, "%q", tt.region)
			continue
		}
		assert.NoError(t, err, tt.region)
		expect.EQ(t, got, tt.want)
	}
}

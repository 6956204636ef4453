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

// Package bgzf writes the BGZF (blocked gzip) format used by bgzip and
// tabix. A BGZF file is a series of complete gzip members, each holding at
// most 64KiB of payload and recording its own compressed size in a "BC"
// extra subfield, followed by an empty terminator member. Any gzip reader
// can decompress it; BGZF-aware tools can also seek to block boundaries.
//
// See the SAM/BAM spec, https://samtools.github.io/hts-specs/SAMv1.pdf.
//
//   w, err := bgzf.NewWriter(out, flate.DefaultCompression)
//   n, err := w.Write([]byte("chr1\t100\t..."))
//   err = w.Close()
package bgzf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/klauspost/compress/gzip"
)

const (
	// DefaultUncompressedBlockSize is the payload size of a block as chosen
	// by bgzip, sambamba and biogo.
	DefaultUncompressedBlockSize = 0x0ff00

	// MaxUncompressedBlockSize is the largest legal payload size.
	MaxUncompressedBlockSize = 0x10000

	// compressedBlockSize bounds the size of one compressed block.
	compressedBlockSize = 0x10000
)

var (
	// bgzfExtra is the gzip Extra field: subfield "BC", length 2, followed
	// by the block size, filled in once the block is compressed.
	bgzfExtra       = [...]byte{66, 67, 2, 0, 0, 0}
	bgzfExtraPrefix = [...]byte{66, 67, 2, 0}

	terminator = []byte{
		0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
		0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// Writer compresses its input into BGZF blocks written to an underlying
// io.Writer.
type Writer struct {
	level            int
	uncompressedSize int
	xfl              int
	w                io.Writer
	original         bytes.Buffer
	compressed       bytes.Buffer
	gz               *gzip.Writer
	coffset          uint64 // file offset of the current block
}

// NewWriter returns a writer with the given gzip compression level and the
// default block size.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	return NewWriterParams(w, level, DefaultUncompressedBlockSize, -1)
}

// NewWriterParams returns a writer with the given compression level, block
// payload size, and gzip XFL header byte (-1 leaves the value gzip writes).
func NewWriterParams(w io.Writer, level, uncompressedBlockSize, xfl int) (*Writer, error) {
	if uncompressedBlockSize <= 0 || uncompressedBlockSize > MaxUncompressedBlockSize {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bgzf: block size %d not in (0, %d]",
			uncompressedBlockSize, MaxUncompressedBlockSize))
	}
	if xfl < -1 || xfl > 255 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bgzf: XFL must be -1 or in [0, 255], not %d", xfl))
	}
	gz, err := gzip.NewWriterLevel(nil, level)
	if err != nil {
		return nil, errors.E(errors.Invalid, err)
	}
	return &Writer{
		level:            level,
		uncompressedSize: uncompressedBlockSize,
		xfl:              xfl,
		w:                w,
		gz:               gz,
	}, nil
}

// Write appends buf to the payload.
func (w *Writer) Write(buf []byte) (int, error) {
	for i := 0; i < len(buf); {
		end := len(buf)
		if limit := i + w.uncompressedSize - w.original.Len(); limit < end {
			end = limit
		}
		n, _ := w.original.Write(buf[i:end])
		i += n
		if err := w.compress(false); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// Close flushes the last block and writes the terminator.
func (w *Writer) Close() error {
	if err := w.compress(true); err != nil {
		return err
	}
	_, err := w.w.Write(terminator)
	return err
}

// compress writes every full block of w.original, and the partial one too if
// all is set.
func (w *Writer) compress(all bool) error {
	for w.original.Len() >= w.uncompressedSize || (all && w.original.Len() > 0) {
		w.gz.Reset(&w.compressed)
		w.gz.Header.Extra = append([]byte(nil), bgzfExtra[:]...)
		w.gz.Header.OS = 0xff
		if _, err := w.gz.Write(w.original.Next(w.uncompressedSize)); err != nil {
			return err
		}
		if err := w.gz.Close(); err != nil {
			return err
		}

		b := w.compressed.Bytes()
		if w.xfl >= 0 {
			b[8] = byte(w.xfl)
		}
		const extraOffset = 12
		bsize := len(b) - 1
		if bsize >= compressedBlockSize {
			return errors.E(fmt.Sprintf("bgzf: compressed block is too big: %d >= %d", bsize, compressedBlockSize))
		}
		if len(b) < extraOffset+len(bgzfExtra) || !bytes.Equal(b[extraOffset:extraOffset+len(bgzfExtraPrefix)], bgzfExtraPrefix[:]) {
			return errors.E("bgzf: gzip header lacks the BC subfield")
		}
		b[extraOffset+4] = byte(bsize)
		b[extraOffset+5] = byte(bsize >> 8)

		sz := w.compressed.Len()
		if _, err := w.compressed.WriteTo(w.w); err != nil {
			return err
		}
		w.coffset += uint64(sz)
	}
	return nil
}

// VOffset returns the virtual offset of the next byte to be written: the
// file offset of its block shifted left by 16, plus its offset in the block.
func (w *Writer) VOffset() uint64 {
	return w.coffset<<16 | uint64(w.original.Len())
}

/*
 * files.go, part of gorate.
 *
 *
 * Copyright 2026 The gorate authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package ratejson

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	rate "github.com/rmera/gorate"
)

//*zstd.Decoder's Close doesn't return an error, so it is not an io.ReadCloser.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

//compressor returns the functions to wrap readers and writers for the file name,
//based on its extension.
func compressor(name string) (func(io.Writer) (io.WriteCloser, error), func(io.Reader) (io.ReadCloser, error)) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".zst"):
		w := func(a io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		}
		r := func(a io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return zstdCloser{d}, nil
		}
		return w, r
	case strings.HasSuffix(strings.ToLower(name), ".gz"):
		w := func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(a), nil }
		r := func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
		return w, r
	}
	w := func(a io.Writer) (io.WriteCloser, error) { return nopWriteCloser{a}, nil }
	r := func(a io.Reader) (io.ReadCloser, error) { return io.NopCloser(a), nil }
	return w, r
}

// WriteFile creates the file name and calls write with a writer to it. The data is
// compressed if the name ends in .zst or .gz.
func WriteFile(name string, write func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("ratejson/WriteFile: %w", err)
	}
	defer func() {
		if err2 := f.Close(); err == nil && err2 != nil {
			err = fmt.Errorf("ratejson/WriteFile: %w", err2)
		}
	}()
	anyWriter, _ := compressor(name)
	buf := bufio.NewWriter(f)
	w, err := anyWriter(buf)
	if err != nil {
		return fmt.Errorf("ratejson/WriteFile: %w", err)
	}
	if err = write(w); err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ratejson/WriteFile: %w", err)
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("ratejson/WriteFile: %w", err)
	}
	return nil
}

// ReadFile opens the file name and calls read with a reader to its
// contents, decompressed if needed.
func ReadFile(name string, read func(io.Reader) error) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("ratejson/ReadFile: %w", err)
	}
	defer f.Close()
	_, anyReader := compressor(name)
	r, err := anyReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("ratejson/ReadFile: %w", err)
	}
	defer r.Close()
	return read(r)
}

// ReadTableFile reads a table written with EncodeTable from the file name.
func ReadTableFile(name string) (rate.Table, error) {
	var T rate.Table
	err := ReadFile(name, func(r io.Reader) error {
		var err error
		T, err = DecodeTable(r)
		return err
	})
	return T, err
}

// WriteTableFile writes T to the file name.
func WriteTableFile(name string, T rate.Table) error {
	return WriteFile(name, func(w io.Writer) error { return EncodeTable(w, T) })
}

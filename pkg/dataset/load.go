package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/flowatlas/flowatlas/pkg/errors"
)

// Fetcher retrieves a remote dataset. [httputil.Client] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Load reads CSV from r. The first row is the header. Every field mapped by
// s except Asylum must be present in the header.
func Load(ctx context.Context, r io.Reader, s Schema) (*Dataset, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	h := sha256.New()
	cr := csv.NewReader(io.TeeReader(r, h))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty CSV: header row required")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	l := newLayout(header, s)
	for _, f := range []Field{FieldYear, FieldOrigin, FieldValue} {
		if l.fields[f] < 0 {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s column %q not found in header", f, s.Column(f))
		}
	}
	if s.Asylum != "" && l.fields[FieldAsylum] < 0 {
		// An unmapped asylum column is allowed, a misspelled one is not.
		return nil, errors.New(errors.ErrCodeInvalidSchema, "asylum column %q not found in header", s.Asylum)
	}

	ds := &Dataset{Schema: s, Header: header}
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		ds.Records = append(ds.Records, Record{layout: l, values: row})
	}

	// The column mapping changes every record's meaning, so it is part of
	// the digest alongside the bytes.
	for _, f := range []Field{FieldYear, FieldOrigin, FieldAsylum, FieldValue} {
		h.Write([]byte{0})
		io.WriteString(h, s.Column(f))
	}
	ds.Digest = hex.EncodeToString(h.Sum(nil))
	return ds, nil
}

// Open loads a dataset from a local path or an http(s) URL. Remote sources
// go through fetch, which must be non-nil for URLs.
func Open(ctx context.Context, src string, s Schema, fetch Fetcher) (*Dataset, error) {
	if isURL(src) {
		if err := errors.ValidateURL(src); err != nil {
			return nil, err
		}
		if fetch == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "no fetcher configured for remote dataset %s", src)
		}
		data, err := fetch.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		return Load(ctx, bytes.NewReader(data), s)
	}

	f, err := os.Open(src)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", src)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(ctx, f, s)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

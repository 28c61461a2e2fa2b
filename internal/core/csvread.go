package core

// csvread.go turns uploaded bytes into CSV records.
//
// Uploads are decoded as UTF-8 when valid and as Latin-1 otherwise; a
// leading UTF-8 byte order mark is dropped in both cases. Records may have
// differing lengths and stray quotes are tolerated.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 byte order mark, as written by
// Excel and other Windows programs.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call checks for and skips the BOM.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if head, err := b.r.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// ErrFileTooLarge is returned by ReadUpload when the limit is exceeded.
var ErrFileTooLarge = errors.New("file too large")

// ReadUpload reads at most limit bytes from r with any BOM removed. A
// larger body is rejected rather than truncated.
func ReadUpload(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(NewBOMSkippingReader(r), limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// DecodeText returns data as UTF-8 text, falling back to Latin-1 when data
// is not valid UTF-8.
func DecodeText(data []byte) (string, error) {
	var r io.Reader = NewBOMSkippingReader(bytes.NewReader(data))
	if !utf8.Valid(data) {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(decoded), nil
}

// ParseCSV decodes and parses an upload. An upload with no records is a
// ValidationError.
func ParseCSV(data []byte) ([][]string, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid csv: %v", err)}
	}
	if len(records) == 0 {
		return nil, &ValidationError{Message: "CSV file is empty"}
	}
	return records, nil
}

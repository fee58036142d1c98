// Package codec converts tile layer grids to and from the text payloads
// stored in TMX data elements: CSV, or base64 with optional compression.
package codec

import (
	"errors"
	"fmt"
)

type Encoding uint8

const (
	EncodingCSV Encoding = iota
	EncodingBase64
	// EncodingXML marks grids written as one <tile gid="..."/> element per
	// cell. The codec does not handle it; the markup layer does.
	EncodingXML
)

type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZlib
	CompressionGzip
	CompressionZstd
)

var (
	ErrFormat      = errors.New("libtmx: invalid data format")
	ErrCorruptData = errors.New("libtmx: corrupt data")
	ErrConfig      = errors.New("libtmx: invalid encoding configuration")
)

// Format is the pair of encoding attributes of a data element.
type Format struct {
	Encoding    Encoding
	Compression Compression
}

var (
	FormatCSV        = Format{Encoding: EncodingCSV}
	FormatBase64     = Format{Encoding: EncodingBase64}
	FormatBase64Zlib = Format{Encoding: EncodingBase64, Compression: CompressionZlib}
	FormatBase64Gzip = Format{Encoding: EncodingBase64, Compression: CompressionGzip}
	FormatBase64Zstd = Format{Encoding: EncodingBase64, Compression: CompressionZstd}
)

func (f Format) Validate() error {
	if f.Compression != CompressionNone && f.Encoding != EncodingBase64 {
		return fmt.Errorf("%w: compression %v requires base64 encoding, got %v", ErrConfig, f.Compression, f.Encoding)
	}
	if f.Compression > CompressionZstd {
		return fmt.Errorf("%w: unknown compression (%d)", ErrConfig, f.Compression)
	}
	if f.Encoding > EncodingXML {
		return fmt.Errorf("%w: unknown encoding (%d)", ErrConfig, f.Encoding)
	}
	return nil
}

func (f Format) String() string {
	if f.Compression == CompressionNone {
		return f.Encoding.String()
	}
	return f.Encoding.String() + "+" + f.Compression.String()
}

// ParseFormat reads the encoding and compression attribute values.
// An absent encoding (empty string) means CSV.
func ParseFormat(encoding, compression string) (Format, error) {
	var f Format
	switch encoding {
	case "", "csv":
		f.Encoding = EncodingCSV
	case "base64":
		f.Encoding = EncodingBase64
	default:
		return Format{}, fmt.Errorf("%w: encoding %q not supported", ErrConfig, encoding)
	}
	switch compression {
	case "":
		f.Compression = CompressionNone
	case "zlib":
		f.Compression = CompressionZlib
	case "gzip":
		f.Compression = CompressionGzip
	case "zstd":
		f.Compression = CompressionZstd
	default:
		return Format{}, fmt.Errorf("%w: compression %q not supported", ErrConfig, compression)
	}
	return f, f.Validate()
}

// Attrs returns the attribute values for f; empty values are omitted on write.
func (f Format) Attrs() (encoding, compression string) {
	switch f.Encoding {
	case EncodingCSV:
		encoding = "csv"
	case EncodingBase64:
		encoding = "base64"
	}
	if f.Compression != CompressionNone {
		compression = f.Compression.String()
	}
	return encoding, compression
}

func (e Encoding) String() string {
	switch e {
	case EncodingCSV:
		return "csv"
	case EncodingBase64:
		return "base64"
	case EncodingXML:
		return "xml"
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

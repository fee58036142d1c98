package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// MaxExpansion bounds the decompressed size relative to the compressed size.
const MaxExpansion = 4

func Compress(data []byte, compression Compression) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}

	var buffer bytes.Buffer
	var writer io.WriteCloser
	var err error
	switch compression {
	case CompressionZlib:
		writer, err = zlib.NewWriterLevel(&buffer, zlib.BestCompression)
	case CompressionGzip:
		writer, err = gzip.NewWriterLevel(&buffer, gzip.BestCompression)
	case CompressionZstd:
		writer, err = zstd.NewWriter(&buffer, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	default:
		return nil, fmt.Errorf("%w: compression not supported (%v)", ErrConfig, compression)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	_, err = writer.Write(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}

	return buffer.Bytes(), nil
}

// Decompress inflates data and fails with ErrCorruptData if the stream is
// malformed or if the output would exceed limit bytes. A limit <= 0 means
// MaxExpansion times the input size.
func Decompress(data []byte, compression Compression, limit int) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}
	if limit <= 0 {
		limit = MaxExpansion * len(data)
	}

	var reader io.Reader
	switch compression {
	case CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %w", ErrCorruptData, err)
		}
		defer r.Close()
		reader = r
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", ErrCorruptData, err)
		}
		defer r.Close()
		reader = r
	case CompressionZstd:
		r, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptData, err)
		}
		defer r.Close()
		reader = r
	default:
		return nil, fmt.Errorf("%w: compression not supported (%v)", ErrConfig, compression)
	}

	result, err := io.ReadAll(io.LimitReader(reader, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %w", ErrCorruptData, compression, err)
	}
	if len(result) > limit {
		return nil, fmt.Errorf("%w: %v: decompressed size exceeds %d bytes", ErrCorruptData, compression, limit)
	}

	return result, nil
}

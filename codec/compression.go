package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the payload raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// CompressionByName returns the compression with the given stable name.
func CompressionByName(name string) (Compression, bool) {
	switch name {
	case "", "none":
		return CompressionNone, true
	case "lz4":
		return CompressionLZ4, true
	case "zstd":
		return CompressionZSTD, true
	default:
		return CompressionNone, false
	}
}

func (c Compression) valid() bool { return c <= CompressionZSTD }

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) { zstdEncoderPool.Put(enc) }

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) { zstdDecoderPool.Put(dec) }

// Compressed payloads carry a block header:
// [UncompressedSize uint64][CompressedSize uint64][Data...]
// CompressedSize == 0 means the data is stored uncompressed.
const blockHeaderSize = 16

var errBlockCorrupt = errors.New("codec: corrupt compressed block")

// lz4MaxRatio bounds how far an LZ4 block can expand.
const lz4MaxRatio = 255

// compressBlock compresses data and prepends the block header.
// Data that does not shrink by at least 10% is stored uncompressed.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return data, nil
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		compressed = nil
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+max(len(compressed), len(data)))
	binary.LittleEndian.PutUint64(out[0:], uint64(len(data)))
	binary.LittleEndian.PutUint64(out[8:], uint64(len(compressed)))
	if compressed == nil {
		return append(out, data...), nil
	}
	return append(out, compressed...), nil
}

// decompressBlock reverses compressBlock. A block whose raw size is not
// rawSize is rejected before anything is allocated.
func decompressBlock(block []byte, c Compression, rawSize int) ([]byte, error) {
	if c == CompressionNone {
		return block, nil
	}
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", errBlockCorrupt)
	}
	blockRaw := binary.LittleEndian.Uint64(block[0:])
	compressedSize := binary.LittleEndian.Uint64(block[8:])
	data := block[blockHeaderSize:]

	if blockRaw != uint64(rawSize) {
		return nil, fmt.Errorf("%w: raw size %d, expected %d", errBlockCorrupt, blockRaw, rawSize)
	}
	if compressedSize == 0 {
		if len(data) != rawSize {
			return nil, fmt.Errorf("%w: stored size %d, header says %d", errBlockCorrupt, len(data), rawSize)
		}
		return data, nil
	}
	if uint64(len(data)) != compressedSize {
		return nil, fmt.Errorf("%w: compressed size %d, header says %d", errBlockCorrupt, len(data), compressedSize)
	}

	switch c {
	case CompressionLZ4:
		if rawSize/lz4MaxRatio > len(data) {
			return nil, fmt.Errorf("%w: raw size %d exceeds lz4 bound for %d bytes", errBlockCorrupt, rawSize, len(data))
		}
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, err
		}
		if n != rawSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", errBlockCorrupt)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		// Grow from a bounded hint; the output is checked against rawSize below.
		out, err := dec.DecodeAll(data, make([]byte, 0, min(rawSize, 64*len(data))))
		if err != nil {
			return nil, err
		}
		if len(out) != rawSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", errBlockCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %s", errBlockCorrupt, c)
	}
}

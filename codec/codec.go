// Package codec defines the binary format for cell arrays.
//
// A file is a fixed little-endian header followed by the payload: the
// offsets values, then the connectivity values, each at the array's storage
// width. The payload may be compressed as a single LZ4 or ZSTD block and is
// covered by a CRC32-C checksum stored in the header.
//
// The format is a compatibility boundary: bump Version when the layout changes.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/cellgo"
	"github.com/hupe1980/cellgo/dataarray"
	"github.com/hupe1980/cellgo/internal/conv"
	crc "github.com/hupe1980/cellgo/internal/hash"
)

const (
	// Magic identifies cell array files (ASCII: "CELA").
	Magic uint32 = 0x43454c41
	// Version is the current format version.
	Version uint16 = 1
)

var (
	ErrInvalidMagic       = errors.New("codec: invalid magic number")
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
	ErrInvalidHeader      = errors.New("codec: invalid header")
	ErrTruncated          = errors.New("codec: truncated payload")
	ErrInvalidTopology    = errors.New("codec: decoded offsets and connectivity are inconsistent")
)

// Header is the fixed-size header at the start of every encoded cell array.
type Header struct {
	Magic           uint32
	Version         uint16
	Width           uint8 // 32 or 64
	Compression     Compression
	NumOffsets      uint64
	NumConnectivity uint64
	PayloadSize     uint64 // stored payload bytes, after compression
	Checksum        uint32 // CRC32-C of the stored payload
}

// HeaderSize is the encoded size of Header in bytes.
const HeaderSize = 36

// maxValues bounds header counts so size arithmetic cannot overflow.
const maxValues = 1 << 56

// RawSize is the uncompressed payload size the header describes.
func (h Header) RawSize() uint64 {
	return (h.NumOffsets + h.NumConnectivity) * uint64(h.Width/8)
}

func (h Header) validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !cellgo.Width(h.Width).Valid() {
		return fmt.Errorf("%w: width %d", ErrInvalidHeader, h.Width)
	}
	if !h.Compression.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidHeader, h.Compression)
	}
	if h.NumOffsets == 0 {
		return fmt.Errorf("%w: no offsets", ErrInvalidHeader)
	}
	if h.NumOffsets > maxValues || h.NumConnectivity > maxValues || h.PayloadSize > maxValues*8 {
		return fmt.Errorf("%w: sizes out of range", ErrInvalidHeader)
	}
	if h.Compression == CompressionNone && h.PayloadSize != h.RawSize() {
		return fmt.Errorf("%w: payload size %d, expected %d", ErrInvalidHeader, h.PayloadSize, h.RawSize())
	}
	return nil
}

// ReadHeader reads and validates a header without reading the payload.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, fmt.Errorf("%w: header", ErrTruncated)
		}
		return h, err
	}
	return h, h.validate()
}

type encodeOptions struct {
	compression Compression
}

// EncodeOption configures Encode and Marshal.
type EncodeOption func(*encodeOptions)

// WithCompression selects the payload compression. The default is CompressionNone.
func WithCompression(c Compression) EncodeOption {
	return func(o *encodeOptions) {
		o.compression = c
	}
}

// Encode writes ca to w.
func Encode(w io.Writer, ca *cellgo.CellArray, optFns ...EncodeOption) error {
	if ca == nil {
		return cellgo.ErrNilSource
	}
	var opts encodeOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.compression.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidHeader, opts.compression)
	}

	var raw []byte
	switch ca.Width() {
	case cellgo.Width32:
		raw = appendValues(raw, ca.OffsetsArray32().Values())
		raw = appendValues(raw, ca.ConnectivityArray32().Values())
	default:
		raw = appendValues(raw, ca.OffsetsArray64().Values())
		raw = appendValues(raw, ca.ConnectivityArray64().Values())
	}

	payload, err := compressBlock(raw, opts.compression)
	if err != nil {
		return fmt.Errorf("codec: compress: %w", err)
	}

	h := Header{
		Magic:           Magic,
		Version:         Version,
		Width:           uint8(ca.Width()),
		Compression:     opts.compression,
		NumOffsets:      uint64(ca.NumberOfOffsets()),
		NumConnectivity: uint64(ca.NumberOfConnectivityIDs()),
		PayloadSize:     uint64(len(payload)),
		Checksum:        crc.CRC32C(payload),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Decode reads a cell array written by Encode. opts configure the returned
// cell array; its storage width is the encoded width.
func Decode(r io.Reader, opts ...cellgo.Option) (*cellgo.CellArray, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	rawSize, err := conv.Uint64ToInt(h.RawSize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	// Copy incrementally so a corrupt size cannot force one huge allocation.
	cr := newSummingReader(r)
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, cr, int64(h.PayloadSize)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrTruncated, h.PayloadSize, buf.Len())
		}
		return nil, err
	}
	if err := cr.verify(h.Checksum); err != nil {
		return nil, err
	}

	raw, err := decompressBlock(buf.Bytes(), h.Compression, rawSize)
	if err != nil {
		return nil, err
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: payload %d bytes, expected %d", ErrInvalidHeader, len(raw), rawSize)
	}

	var offsets, conn dataarray.DataArray
	if cellgo.Width(h.Width) == cellgo.Width32 {
		o, c := decodeValues[int32](raw, h.NumOffsets)
		offsets, conn = o, c
	} else {
		o, c := decodeValues[int64](raw, h.NumOffsets)
		offsets, conn = o, c
	}

	ca := cellgo.New(opts...)
	if err := ca.SetData(offsets, conn); err != nil {
		return nil, err
	}
	if !ca.IsValid() {
		return nil, ErrInvalidTopology
	}
	return ca, nil
}

// Marshal encodes ca into a byte slice.
func Marshal(ca *cellgo.CellArray, optFns ...EncodeOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, ca, optFns...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a cell array from data.
func Unmarshal(data []byte, opts ...cellgo.Option) (*cellgo.CellArray, error) {
	return Decode(bytes.NewReader(data), opts...)
}

type value interface {
	int32 | int64
}

func appendValues[T value](dst []byte, values []T) []byte {
	var zero T
	if binary.Size(zero) == 4 {
		for _, v := range values {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
		return dst
	}
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
	}
	return dst
}

func decodeValues[T value](raw []byte, numOffsets uint64) (*dataarray.Array[T], *dataarray.Array[T]) {
	var zero T
	size := binary.Size(zero)
	values := make([]T, len(raw)/size)
	if size == 4 {
		for i := range values {
			values[i] = T(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	} else {
		for i := range values {
			values[i] = T(int64(binary.LittleEndian.Uint64(raw[i*8:])))
		}
	}
	return dataarray.FromSlice(values[:numOffsets:numOffsets]), dataarray.FromSlice(values[numOffsets:])
}

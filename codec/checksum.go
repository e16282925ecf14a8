package codec

import (
	"errors"
	"fmt"
	"hash"
	"io"

	crc "github.com/hupe1980/cellgo/internal/hash"
)

// Payloads carry a CRC32-Castagnoli sum, the checksum S3 verifies on upload.
// It detects accidental corruption only.

// ChecksumMismatchError is returned by Decode when the payload does not
// match the checksum stored in the header.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("codec: payload checksum 0x%08x, header records 0x%08x", e.Actual, e.Expected)
}

// IsChecksumMismatch reports whether err wraps a *ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}

// summingReader hashes every byte read through it.
type summingReader struct {
	r   io.Reader
	sum hash.Hash32
}

func newSummingReader(r io.Reader) *summingReader {
	return &summingReader{r: r, sum: crc.NewCRC32C()}
}

func (s *summingReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	_, _ = s.sum.Write(p[:n])
	return n, err
}

func (s *summingReader) verify(expected uint32) error {
	if actual := s.sum.Sum32(); actual != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

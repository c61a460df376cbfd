package file

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// bytesPerChar is the encoding width assumed by MaxLength: the page
// stores strings as US-ASCII, one byte per character.
const bytesPerChar = 1

// Page is a fixed-size in-memory buffer, the unit of data the engine
// moves between disk and the buffer pool. It offers typed accessors at
// arbitrary byte offsets: big-endian int32, length-prefixed byte
// arrays, and length-prefixed ASCII strings built on top of them.
//
// A Page is owned by a single Buffer or LogManager at a time and is not
// safe for concurrent use.
type Page struct {
	contents []byte
}

// NewPage allocates a zeroed page of exactly blockSize bytes.
func NewPage(blockSize int) *Page {
	return &Page{contents: make([]byte, blockSize)}
}

// NewPageFromBytes wraps an existing byte slice as a page without
// copying. It is used to decode a page-shaped byte array (e.g. a log
// record) that was produced independently of a FileManager.
func NewPageFromBytes(b []byte) *Page {
	return &Page{contents: b}
}

// GetInt reads a big-endian int32 at offset.
func (p *Page) GetInt(offset int) int32 {
	return int32(binary.BigEndian.Uint32(p.contents[offset : offset+4]))
}

// SetInt writes a big-endian int32 at offset.
func (p *Page) SetInt(offset int, n int32) {
	binary.BigEndian.PutUint32(p.contents[offset:offset+4], uint32(n))
}

// OutOfBoundsError reports that a length-prefixed read would run past
// the end of the page's backing buffer: a corrupt or truncated length
// prefix. Callers must stop and report rather than read past it.
type OutOfBoundsError struct {
	Offset, Length, Size int
}

func (e OutOfBoundsError) Error() string {
	return fmt.Sprintf("page read at offset %d length %d exceeds page size %d", e.Offset, e.Length, e.Size)
}

// GetBytes reads a length-prefixed byte array: a 4-byte big-endian
// length followed by that many raw bytes. It reports OutOfBoundsError
// rather than panicking if the length prefix would read past the page.
func (p *Page) GetBytes(offset int) ([]byte, error) {
	if offset < 0 || offset+4 > len(p.contents) {
		return nil, OutOfBoundsError{Offset: offset, Length: 4, Size: len(p.contents)}
	}
	length := int(binary.BigEndian.Uint32(p.contents[offset : offset+4]))
	if length < 0 || offset+4+length > len(p.contents) {
		return nil, OutOfBoundsError{Offset: offset + 4, Length: length, Size: len(p.contents)}
	}
	b := make([]byte, length)
	copy(b, p.contents[offset+4:offset+4+length])
	return b, nil
}

// SetBytes writes b as a length-prefixed byte array at offset.
func (p *Page) SetBytes(offset int, b []byte) {
	binary.BigEndian.PutUint32(p.contents[offset:offset+4], uint32(len(b)))
	copy(p.contents[offset+4:offset+4+len(b)], b)
}

// GetString reads an ASCII string written by SetString.
func (p *Page) GetString(offset int) (string, error) {
	b, err := p.GetBytes(offset)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SetString writes s as a length-prefixed ASCII string at offset. The
// string is first normalized to Unicode NFC so that canonically
// equivalent inputs always produce identical bytes on the page; for
// plain ASCII input (the expected case) normalization is a no-op.
func (p *Page) SetString(offset int, s string) {
	p.SetBytes(offset, []byte(norm.NFC.String(s)))
}

// MaxLength returns the number of bytes a string of strlen characters
// occupies on the page once length-prefixed: 4 header bytes plus one
// byte per character under the ASCII encoding this page uses.
func MaxLength(strlen int) int {
	return 4 + strlen*bytesPerChar
}

// Contents returns the page's backing byte slice.
func (p *Page) Contents() []byte {
	return p.contents
}

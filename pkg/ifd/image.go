// Package ifd decodes and rewrites an Intel Flash Descriptor embedded in a
// SPI flash image: the binary format, the V1/V2 dialect split, and the
// image-rewriting algorithms (region injection, relayout, lock/unlock,
// frequency and density edits). Every accessor here operates on an owned
// byte buffer; callers get short-lived typed views, never long-lived
// pointers into it, so the buffer can be safely grown and rewritten by the
// relayout engine.
package ifd

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/bytesextra"
)

// Image is the owned byte buffer for a flash image, plus a ReadWriteSeeker
// view of it used by the word-level accessors in this package.
type Image struct {
	buf []byte
	rws *bytesextra.ReadWriteSeeker
}

// NewImage wraps buf. The buffer is used in place, not copied: callers
// should not mutate it concurrently with Image's methods.
func NewImage(buf []byte) *Image {
	return &Image{buf: buf, rws: bytesextra.NewReadWriteSeeker(buf)}
}

// Bytes returns the underlying buffer.
func (img *Image) Bytes() []byte {
	return img.buf
}

// Len returns the buffer length.
func (img *Image) Len() int {
	return len(img.buf)
}

// ReadWord reads the little-endian 32-bit word at offset.
func (img *Image) ReadWord(offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(img.buf)) {
		return 0, fmt.Errorf("%w: offset %#x", ErrImageTooSmall, offset)
	}
	if _, err := img.rws.Seek(int64(offset), io.SeekStart); err != nil {
		return 0, err
	}
	var word uint32
	if err := binary.Read(img.rws, binary.LittleEndian, &word); err != nil {
		return 0, err
	}
	return word, nil
}

// WriteWord writes the little-endian 32-bit word at offset.
func (img *Image) WriteWord(offset uint32, word uint32) error {
	if uint64(offset)+4 > uint64(len(img.buf)) {
		return fmt.Errorf("%w: offset %#x", ErrImageTooSmall, offset)
	}
	if _, err := img.rws.Seek(int64(offset), io.SeekStart); err != nil {
		return err
	}
	return binary.Write(img.rws, binary.LittleEndian, word)
}

// ReadAt reads length bytes starting at offset.
func (img *Image) ReadAt(offset uint32, length int) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(img.buf)) {
		return nil, fmt.Errorf("%w: offset %#x length %#x", ErrImageTooSmall, offset, length)
	}
	out := make([]byte, length)
	copy(out, img.buf[offset:uint64(offset)+uint64(length)])
	return out, nil
}

// WriteAt writes data starting at offset.
func (img *Image) WriteAt(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(img.buf)) {
		return fmt.Errorf("%w: offset %#x length %#x", ErrImageTooSmall, offset, len(data))
	}
	copy(img.buf[offset:], data)
	return nil
}

// WriteFile writes the buffer to path with create-truncate semantics, the
// only file write any mutator performs.
func (img *Image) WriteFile(path string) error {
	return os.WriteFile(path, img.buf, 0644)
}

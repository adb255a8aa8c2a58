package ifd

import (
	"bytes"
	"fmt"
)

// signature is the little-endian byte sequence every IFD starts with.
var signature = []byte{0x5A, 0xA5, 0xF0, 0x0F}

// SignatureValue is the 32-bit little-endian value of signature, as read
// out of FLVALSIG.
const SignatureValue uint32 = 0x0FF0A55A

// FDBAR field offsets, relative to the descriptor base (the offset of the
// signature word itself).
const (
	offFLVALSIG = 0x00
	offFLMAP0   = 0x04
	offFLMAP1   = 0x08
	offFLMAP2   = 0x0C
	// 8 reserved bytes follow FLMAP2 before FLUMAP1.
	offFLUMAP1 = 0x18
)

// FindDescriptor scans buf at 4-byte stride for the flash descriptor
// signature and returns the offset of the signature word, or
// ErrSignatureMissing.
func FindDescriptor(buf []byte) (int, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("%w: image too small", ErrSignatureMissing)
	}
	for off := 0; off <= len(buf)-4; off += 4 {
		if bytes.Equal(buf[off:off+4], signature) {
			return off, nil
		}
	}
	return 0, ErrSignatureMissing
}

// sectionBases holds the byte offsets (relative to the image, not the
// descriptor) of every sub-section the locator derives from FLMAP0/1/2 and
// FLUMAP1.
type sectionBases struct {
	FCBA  uint32 // component base (FLCOMP)
	FRBA  uint32 // region base (FLREG array)
	FMBA  uint32 // master base (FLMSTR array)
	FPSBA uint32 // PCH strap base
	FMSBA uint32 // processor strap base
	VTBA  uint32 // VSCC table base
}

// fieldBase decodes one (byte_offset >> 4)-encoded byte field of a FLMAP
// word into an absolute image offset.
func fieldBase(flmap uint32, byteShift uint) uint32 {
	return ((flmap >> byteShift) & 0xFF) << 4
}

// Descriptor is a typed, version-aware view over one IFD found in an
// Image. It owns no bytes itself; all reads and writes go through the
// Image it was built from.
type Descriptor struct {
	image   *Image
	base    uint32 // offset of the signature word
	Version Version
	bases   sectionBases
	vtl     uint32 // VSCC table length, in DWORDs, from FLUMAP1
	isl     uint32 // PCH/ICH strap section length, in DWORDs, from FLMAP1
	psl     uint32 // processor strap section length, in DWORDs, from FLMAP2
}

// Load locates the descriptor in img, determines its version, and
// resolves every sub-section base address. It does not validate region
// contents; per the tool's non-goals, BIOS/ME payloads are opaque.
func Load(img *Image) (*Descriptor, error) {
	off, err := FindDescriptor(img.Bytes())
	if err != nil {
		return nil, err
	}
	base := uint32(off)

	flmap0, err := img.ReadWord(base + offFLMAP0)
	if err != nil {
		return nil, fmt.Errorf("reading FLMAP0: %w", err)
	}
	flmap1, err := img.ReadWord(base + offFLMAP1)
	if err != nil {
		return nil, fmt.Errorf("reading FLMAP1: %w", err)
	}
	flmap2, err := img.ReadWord(base + offFLMAP2)
	if err != nil {
		return nil, fmt.Errorf("reading FLMAP2: %w", err)
	}
	flumap1, err := img.ReadWord(base + offFLUMAP1)
	if err != nil {
		return nil, fmt.Errorf("reading FLUMAP1: %w", err)
	}

	bases := sectionBases{
		FCBA:  fieldBase(flmap0, 0),
		FRBA:  fieldBase(flmap0, 16),
		FMBA:  fieldBase(flmap1, 0),
		FPSBA: fieldBase(flmap1, 16),
		FMSBA: fieldBase(flmap2, 0),
		VTBA:  fieldBase(flumap1, 0),
	}

	flcomp, err := img.ReadWord(bases.FCBA)
	if err != nil {
		return nil, fmt.Errorf("reading FLCOMP: %w", err)
	}
	readClockFreq := (flcomp >> 17) & 0x7
	version, err := DetectVersion(readClockFreq)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		image:   img,
		base:    base,
		Version: version,
		bases:   bases,
		vtl:     (flumap1 >> 8) & 0xFF,
		isl:     (flmap1 >> 24) & 0xFF,
		psl:     (flmap2 >> 8) & 0xFF,
	}
	if err := d.validateBases(); err != nil {
		return nil, err
	}
	return d, nil
}

// VSCCTableLength returns the VSCC table length, in DWORDs, decoded from
// FLUMAP1.
func (d *Descriptor) VSCCTableLength() uint32 {
	return d.vtl
}

// oemBlobOffset and oemBlobSize locate the fixed OEM section: unlike every
// other sub-section, it is not derived from a FLMAP field — it sits at a
// constant image offset regardless of descriptor version or base.
const (
	oemBlobOffset = 0xF00
	oemBlobSize   = 64
)

// validateBases confirms every sub-section is addressable before any
// accessor dereferences it.
func (d *Descriptor) validateBases() error {
	maxReg := d.Version.MaxRegions()
	checks := []struct {
		name string
		off  uint32
		size uint32
	}{
		{"FCBA", d.bases.FCBA, 16},
		{"FRBA", d.bases.FRBA, uint32(maxReg) * 4},
		{"FMBA", d.bases.FMBA, uint32(numMasterSlots) * 4},
		{"FPSBA", d.bases.FPSBA, d.isl * 4},
		{"FMSBA", d.bases.FMSBA, d.psl * 4},
		{"VTBA", d.bases.VTBA, 64},
		{"OEM blob", oemBlobOffset, oemBlobSize},
	}
	for _, c := range checks {
		if uint64(c.off)+uint64(c.size) > uint64(d.image.Len()) {
			return fmt.Errorf("%w: %s at %#x (need %#x bytes, image is %#x)",
				ErrImageTooSmall, c.name, c.off, c.size, d.image.Len())
		}
	}
	return nil
}

// Image returns the backing image.
func (d *Descriptor) Image() *Image {
	return d.image
}

// Base returns the offset of the descriptor's signature word.
func (d *Descriptor) Base() uint32 {
	return d.base
}

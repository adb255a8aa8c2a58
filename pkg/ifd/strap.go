package ifd

// FCBA field offsets. FLCOMP lives at FCBA+0 (see component.go); FLILL and
// FLPB follow it in the component section.
const (
	offFLILL = 0x04
	offFLPB  = 0x08
)

// flpbFieldMask and flpbShift decode the flash partition boundary address,
// which is page-encoded (4KiB granularity) the same way a region base is.
const (
	flpbFieldMask = 0xFFF
	flpbShift     = 12
)

// InvalidInstructions returns the four Invalid Instruction byte values
// (opcodes the SPI controller refuses to issue) decoded from FLILL, in
// instruction-index order.
func (d *Descriptor) InvalidInstructions() ([4]byte, error) {
	word, err := d.image.ReadWord(d.bases.FCBA + offFLILL)
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}, nil
}

// FlashPartitionBoundary returns the byte offset of the flash partition
// boundary, decoded from FLPB's low 12 bits.
func (d *Descriptor) FlashPartitionBoundary() (uint32, error) {
	word, err := d.image.ReadWord(d.bases.FCBA + offFLPB)
	if err != nil {
		return 0, err
	}
	return (word & flpbFieldMask) << flpbShift, nil
}

// PCHStraps returns the PCH/ICH strap section's raw DWORDs, starting at
// FPSBA. Its length (in DWORDs) is the ISL field from FLMAP1.
func (d *Descriptor) PCHStraps() ([]uint32, error) {
	return d.readWords(d.bases.FPSBA, d.isl)
}

// ProcessorStraps returns the processor strap section's raw bytes, starting
// at FMSBA. Its length (in DWORDs) is the PSL field from FLMAP2; the
// section's internal layout is chipset-specific and opaque to this tool, so
// the dumper only ever hex-dumps it.
func (d *Descriptor) ProcessorStraps() ([]byte, error) {
	words, err := d.readWords(d.bases.FMSBA, d.psl)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out, nil
}

// readWords reads count consecutive little-endian DWORDs starting at off.
func (d *Descriptor) readWords(off uint32, count uint32) ([]uint32, error) {
	words := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		word, err := d.image.ReadWord(off + i*4)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, nil
}

// OEMBlob returns the 64-byte OEM section. Unlike every other sub-section,
// it sits at a fixed image offset rather than one derived from FLMAP, so it
// is read directly off the image rather than relative to the descriptor
// base.
func (d *Descriptor) OEMBlob() ([]byte, error) {
	return d.image.ReadAt(oemBlobOffset, oemBlobSize)
}

package ifd

// buildRawImage assembles a synthetic but structurally valid flash image:
// a descriptor at offset 0, with FCBA/FRBA/FMBA/FPSBA/FMSBA/VTBA laid out
// at fixed offsets, sized generously so every sub-section fits.
//
// Section layout (byte offsets): FCBA=0x30 FRBA=0x40 FMBA=0x80 FPSBA=0xA0
// FMSBA=0xC0 VTBA=0xE0. The image is 0x40000 bytes (generous enough for
// tests that place regions tens of KB out), 0xFF-filled outside the words
// this helper writes explicitly.
func buildRawImage(version Version) []byte {
	buf := make([]byte, 0x40000)
	for i := range buf {
		buf[i] = 0xFF
	}

	putWord := func(off uint32, word uint32) {
		buf[off] = byte(word)
		buf[off+1] = byte(word >> 8)
		buf[off+2] = byte(word >> 16)
		buf[off+3] = byte(word >> 24)
	}

	copy(buf[0:4], signature)

	const (
		fcbaField  = 0x30 / 0x10
		frbaField  = 0x40 / 0x10
		fmbaField  = 0x80 / 0x10
		fpsbaField = 0xA0 / 0x10
		fmsbaField = 0xC0 / 0x10
		vtbaField  = 0xE0 / 0x10
	)

	putWord(offFLMAP0, (frbaField<<16)|fcbaField)
	putWord(offFLMAP1, (fpsbaField<<16)|fmbaField)
	putWord(offFLMAP2, fmsbaField)
	putWord(offFLUMAP1, (8<<8)|vtbaField) // VTL = 8 DWORDs -> 4 VSCC entries

	readClockFreq := uint32(readClockFreqV1)
	if version == V2 {
		readClockFreq = readClockFreqV2
	}
	putWord(0x30, readClockFreq<<17)

	// Every FLREG slot defaults to disabled (basePage 0xFFF, limitPage 0,
	// so limit < base), rather than inheriting the blanket 0xFF fill,
	// which would decode as a bogus enabled region shared by every slot.
	maxRegions := 5
	if version == V2 {
		maxRegions = 9
	}
	for i := 0; i < maxRegions; i++ {
		putRegionWord(buf, RegionIndex(i), 0xFFF, 0)
	}

	return buf
}

// putRegionWord writes a raw FLREG word directly, for tests that want to
// control the encoded bits without going through SetRegion (which refuses
// to write indices beyond maxWritableRegion).
func putRegionWord(buf []byte, index RegionIndex, basePage, limitPage uint32) {
	off := 0x40 + uint32(index)*4
	word := basePage | (limitPage << 16)
	buf[off] = byte(word)
	buf[off+1] = byte(word >> 8)
	buf[off+2] = byte(word >> 16)
	buf[off+3] = byte(word >> 24)
}

package ifd

import "fmt"

// regionBlockSize is the granularity (4KiB) at which FLREG encodes base and
// limit page numbers.
const regionBlockSize = 0x1000

// maxWritableRegion is the highest FLREG index the core can write. Indices
// 5-8 exist under V2 but have no writer here; this mirrors the source's
// conservative stance on reserved slots (see design notes).
const maxWritableRegion = RegionPD

// Region is a decoded (base, limit, size) triple. Base and Limit are byte
// offsets into the image; Limit is inclusive. A disabled region (Limit <
// Base) always has Size == 0.
type Region struct {
	Base  uint32
	Limit uint32
	Size  uint32
}

func (r Region) String() string {
	return fmt.Sprintf("[%#08x:%#08x]", r.Base, r.Limit)
}

// Enabled reports whether the region carries any bytes.
func (r Region) Enabled() bool {
	return r.Size > 0
}

// regionFromLimits builds a Region from an inclusive (base, limit) pair,
// clamping a negative span to a zero-size, disabled region.
func regionFromLimits(base, limit uint32) Region {
	if limit < base {
		return Region{Base: base, Limit: limit, Size: 0}
	}
	return Region{Base: base, Limit: limit, Size: limit - base + 1}
}

// flregOffset returns the byte offset of FLREG[index] relative to FRBA.
func flregOffset(index RegionIndex) uint32 {
	return uint32(index) * 4
}

// GetRegion decodes FLREG[index] into a Region.
func (d *Descriptor) GetRegion(index RegionIndex) (Region, error) {
	if !index.Valid(d.Version) {
		return Region{}, fmt.Errorf("%w: %d", ErrInvalidRegion, index)
	}
	word, err := d.image.ReadWord(d.bases.FRBA + flregOffset(index))
	if err != nil {
		return Region{}, err
	}
	baseMask := d.Version.RegionBaseMask()
	basePage := word & baseMask
	limitPage := (word >> 16) & baseMask
	base := basePage << 12
	limit := (limitPage << 12) | 0xFFF
	return regionFromLimits(base, limit), nil
}

// SetRegion encodes r into FLREG[index]. Only indices 0..4 (fd, bios, me,
// gbe, pd) have a writer; higher indices return
// ErrRegionWriteUnsupported even when the descriptor version defines them.
func (d *Descriptor) SetRegion(index RegionIndex, r Region) error {
	if !index.Valid(d.Version) {
		return fmt.Errorf("%w: %d", ErrInvalidRegion, index)
	}
	if index > maxWritableRegion {
		return fmt.Errorf("%w: %d", ErrRegionWriteUnsupported, index)
	}
	baseMask := d.Version.RegionBaseMask()
	basePage := (r.Base >> 12) & baseMask
	limitPage := (r.Limit >> 12) & baseMask
	word := basePage | (limitPage << 16)
	return d.image.WriteWord(d.bases.FRBA+flregOffset(index), word)
}

// RegionsCollide reports whether two enabled regions' inclusive [base,
// limit] ranges intersect. It is symmetric and false whenever either
// region is disabled.
func RegionsCollide(a, b Region) bool {
	if !a.Enabled() || !b.Enabled() {
		return false
	}
	return a.Base <= b.Limit && b.Base <= a.Limit
}

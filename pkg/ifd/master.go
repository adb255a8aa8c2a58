package ifd

import "fmt"

// flmstrOffset returns the byte offset of FLMSTR[index] relative to FMBA.
func flmstrOffset(index MasterIndex) uint32 {
	return uint32(index) * 4
}

// GetMasterWord reads the raw FLMSTR word for master.
func (d *Descriptor) GetMasterWord(master MasterIndex) (uint32, error) {
	if !master.Valid(d.Version) {
		return 0, fmt.Errorf("%w: master %d", ErrInvalidRegion, master)
	}
	return d.image.ReadWord(d.bases.FMBA + flmstrOffset(master))
}

// SetMasterWord writes the raw FLMSTR word for master.
func (d *Descriptor) SetMasterWord(master MasterIndex, word uint32) error {
	if !master.Valid(d.Version) {
		return fmt.Errorf("%w: master %d", ErrInvalidRegion, master)
	}
	return d.image.WriteWord(d.bases.FMBA+flmstrOffset(master), word)
}

// CanRead reports whether master has read access to region, per FLMSTR's
// per-region access bitmap.
func (d *Descriptor) CanRead(master MasterIndex, region RegionIndex) (bool, error) {
	word, err := d.GetMasterWord(master)
	if err != nil {
		return false, err
	}
	bit := d.Version.MasterReadShift() + uint(region)
	return word&(uint32(1)<<bit) != 0, nil
}

// CanWrite reports whether master has write access to region, per FLMSTR's
// per-region access bitmap.
func (d *Descriptor) CanWrite(master MasterIndex, region RegionIndex) (bool, error) {
	word, err := d.GetMasterWord(master)
	if err != nil {
		return false, err
	}
	bit := d.Version.MasterWriteShift() + uint(region)
	return word&(uint32(1)<<bit) != 0, nil
}

// accessMask builds the read or write access bitmap for the given set of
// readable/writable regions, starting at shift.
func accessMask(shift uint, regions ...RegionIndex) uint32 {
	var mask uint32
	for _, r := range regions {
		mask |= uint32(1) << (shift + uint(r))
	}
	return mask
}

// lockedMasterWord builds the FLMSTR word granting master exactly the read
// and write region sets the canonical locked matrix assigns it, per version.
// V1 zeroes the low byte, except GbE's word which also carries the fixed
// requester ID 0x118 used by the reference firmware (bit 8 of that constant
// coincides with region 0's read bit, so GbE also reads the descriptor
// region as a side effect). V2 preserves the low byte (its requester ID
// fields are wider and version-specific, so the locked matrix leaves them
// untouched).
func (d *Descriptor) lockedMasterWord(master MasterIndex, read, write []RegionIndex) (uint32, error) {
	rShift := d.Version.MasterReadShift()
	wShift := d.Version.MasterWriteShift()
	word := accessMask(rShift, read...) | accessMask(wShift, write...)
	if d.Version == V1 {
		if master == MasterGBE {
			word |= 0x118
		}
		return word, nil
	}
	current, err := d.GetMasterWord(master)
	if err != nil {
		return 0, err
	}
	word |= current & 0xFF
	return word, nil
}

// LockDescriptor writes the canonical access matrix to FLMSTR1 (CPU/BIOS),
// FLMSTR2 (ME), and FLMSTR3 (GbE): CPU/BIOS gets read of FD, BIOS, and GbE
// plus write of BIOS and GbE; ME gets read of FD, ME, and GbE plus write of
// ME and GbE; GbE gets read and write of only its own region. FLMSTR4 (EC),
// where present, is left untouched: the source firmware configures EC
// access out of band.
func (d *Descriptor) LockDescriptor() error {
	matrix := []struct {
		master MasterIndex
		read   []RegionIndex
		write  []RegionIndex
	}{
		{MasterCPUBIOS, []RegionIndex{RegionFD, RegionBIOS, RegionGBE}, []RegionIndex{RegionBIOS, RegionGBE}},
		{MasterME, []RegionIndex{RegionFD, RegionME, RegionGBE}, []RegionIndex{RegionME, RegionGBE}},
		{MasterGBE, []RegionIndex{RegionGBE}, []RegionIndex{RegionGBE}},
	}

	for _, m := range matrix {
		word, err := d.lockedMasterWord(m.master, m.read, m.write)
		if err != nil {
			return err
		}
		if err := d.SetMasterWord(m.master, word); err != nil {
			return err
		}
	}
	return nil
}

// unlockWordV1 is the fixed FLMSTR1/2/3 content unlock writes under V1.
var unlockWordV1 = [3]uint32{0xFFFF0000, 0xFFFF0000, 0x08080118}

// UnlockDescriptor rewrites FLMSTR1 (CPU/BIOS), FLMSTR2 (ME), and FLMSTR3
// (GbE); FLMSTR4 (EC), where present, is left untouched. Under V1 this
// writes the reference firmware's fixed unlock constants verbatim: CPU/BIOS
// and ME get every read and write bit, while GbE's 0x08080118 keeps its
// requester ID and grants only the access bits that constant sets. Under V2
// it sets every region access bit
// via the shift formulas while preserving each master's low byte (its
// requester ID), since V2 has no single fixed constant that covers every
// region count.
func (d *Descriptor) UnlockDescriptor() error {
	masters := []MasterIndex{MasterCPUBIOS, MasterME, MasterGBE}

	if d.Version == V1 {
		for i, master := range masters {
			if err := d.SetMasterWord(master, unlockWordV1[i]); err != nil {
				return err
			}
		}
		return nil
	}

	allRegions := make([]RegionIndex, 0, numRegionSlots)
	for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
		allRegions = append(allRegions, r)
	}
	rShift := d.Version.MasterReadShift()
	wShift := d.Version.MasterWriteShift()
	fullMask := accessMask(rShift, allRegions...) | accessMask(wShift, allRegions...)

	for _, master := range masters {
		current, err := d.GetMasterWord(master)
		if err != nil {
			return err
		}
		word := fullMask | (current & 0xFF)
		if err := d.SetMasterWord(master, word); err != nil {
			return err
		}
	}
	return nil
}

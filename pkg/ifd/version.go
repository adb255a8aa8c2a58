package ifd

import "fmt"

// Version identifies the two IFD dialects this package understands. The
// dialect changes the region count, the region page-field width, the master
// access-bit layout, the chip-density field width, and whether an EC master
// exists; the signature, FLMAP layout, and FLCOMP frequency fields are
// shared.
type Version int

const (
	// V1 covers the ICH8-10 generation: 12-bit region page fields, 5
	// regions, FLMSTR write-shift 16, 3-bit chip densities.
	V1 Version = iota
	// V2 covers the PCH generation onward: 15-bit region page fields, 9
	// regions, FLMSTR write-shift 20, 4-bit chip densities, an EC master.
	V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return "unknown"
	}
}

// readClockFreqV1 and readClockFreqV2 are the only two values the FLCOMP
// read-clock-frequency field (bits 17-19) may hold; any other value means
// the image is fatally unrecognized.
const (
	readClockFreqV1 = 0
	readClockFreqV2 = 4
)

// DetectVersion maps a FLCOMP read-clock-frequency code to a Version.
func DetectVersion(readClockFreq uint32) (Version, error) {
	switch readClockFreq {
	case readClockFreqV1:
		return V1, nil
	case readClockFreqV2:
		return V2, nil
	default:
		return 0, fmt.Errorf("%w: read clock frequency code %#x", ErrUnknownVersion, readClockFreq)
	}
}

// MaxRegions returns the number of FLREG slots this version defines.
func (v Version) MaxRegions() int {
	if v == V1 {
		return 5
	}
	return 9
}

// RegionBaseMask is the mask applied to the low half of a FLREG word to
// recover the base page number: 12 bits in V1, 15 bits in V2.
func (v Version) RegionBaseMask() uint32 {
	if v == V1 {
		return 0xFFF
	}
	return 0x7FFF
}

// MasterReadShift is the bit position of region 0's read-access bit in a
// FLMSTR word. It is the same in both versions.
func (v Version) MasterReadShift() uint {
	return 8
}

// MasterWriteShift is the bit position of region 0's write-access bit in a
// FLMSTR word: 16 in V1, 20 in V2 (V2 needs more read bits to cover 9
// regions, pushing the write field further up).
func (v Version) MasterWriteShift() uint {
	if v == V1 {
		return 16
	}
	return 20
}

// DensityBits is the width, in bits, of each of FLCOMP's two chip-density
// fields: 3 in V1, 4 in V2.
func (v Version) DensityBits() uint {
	if v == V1 {
		return 3
	}
	return 4
}

// HasECMaster reports whether this version defines a fourth, EC, bus
// master (and correspondingly an EC region).
func (v Version) HasECMaster() bool {
	return v == V2
}

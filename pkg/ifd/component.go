package ifd

import "fmt"

// FreqCode is one of the 3-bit SPI clock frequency codes FLCOMP's four
// frequency fields share. Code 3 is silicon-dependent: 50MHz under V1,
// 30MHz under V2.
type FreqCode uint32

// Known frequency codes.
const (
	Freq20MHz      FreqCode = 0
	Freq33MHz      FreqCode = 1
	Freq48MHz      FreqCode = 2
	Freq50Or30MHz  FreqCode = 3
	Freq17MHz      FreqCode = 4
)

// String renders the code the way the full dump does: version-aware only
// for the shared 50/30MHz code point.
func (f FreqCode) String() string {
	switch f {
	case Freq20MHz:
		return "20MHz"
	case Freq33MHz:
		return "33MHz"
	case Freq48MHz:
		return "48MHz"
	case Freq50Or30MHz:
		return "50MHz or 30MHz"
	case Freq17MHz:
		return "17MHz"
	default:
		return fmt.Sprintf("unknown (%d)", uint32(f))
	}
}

// StringForVersion disambiguates Freq50Or30MHz per descriptor version.
func (f FreqCode) StringForVersion(v Version) string {
	if f == Freq50Or30MHz {
		if v == V1 {
			return "50MHz"
		}
		return "30MHz"
	}
	return f.String()
}

// freqByMHz maps the CLI's --spi-freq argument values to codes.
var freqByMHz = map[int]FreqCode{
	17: Freq17MHz,
	20: Freq20MHz,
	30: Freq50Or30MHz,
	33: Freq33MHz,
	48: Freq48MHz,
	50: Freq50Or30MHz,
}

// FreqFromMHz resolves a CLI frequency argument (one of 17/20/30/33/48/50)
// to its FLCOMP code.
func FreqFromMHz(mhz int) (FreqCode, bool) {
	f, ok := freqByMHz[mhz]
	return f, ok
}

// canonicalSlowFreq is the EM100-mode frequency for each version: V1
// silicon never supports the 17MHz code, so it falls back to 20MHz.
func (v Version) canonicalSlowFreq() FreqCode {
	if v == V1 {
		return Freq20MHz
	}
	return Freq17MHz
}

// FLCOMP bit layout. The read-clock-frequency field (17-19) is
// version-detection only and is never written by a mutator.
const (
	flcompReadClockShift = 17
	flcompFastReadShift  = 21
	flcompWriteEraseShift = 24
	flcompReadIDShift    = 27
	flcompDualOutputBit  = 30
	flcompFreqFieldMask  = 0x7

	flcompDensity0Shift = 0
	flcompDensity1ShiftV1 = 3
	flcompDensity1ShiftV2 = 4
)

// ReadClockFrequency returns the version-detection frequency code (bits
// 17-19), unaffected by any mutator.
func (d *Descriptor) ReadClockFrequency() (FreqCode, error) {
	word, err := d.image.ReadWord(d.bases.FCBA)
	if err != nil {
		return 0, err
	}
	return FreqCode((word >> flcompReadClockShift) & flcompFreqFieldMask), nil
}

// SetSPIFrequency clears bits 21-29 of FLCOMP and sets the fast-read,
// write/erase, and read-id-status frequency fields to freq.
func (d *Descriptor) SetSPIFrequency(freq FreqCode) error {
	word, err := d.image.ReadWord(d.bases.FCBA)
	if err != nil {
		return err
	}
	const bits21to29 = uint32(0x1FF) << 21
	word &^= bits21to29
	word |= (uint32(freq) & flcompFreqFieldMask) << flcompFastReadShift
	word |= (uint32(freq) & flcompFreqFieldMask) << flcompWriteEraseShift
	word |= (uint32(freq) & flcompFreqFieldMask) << flcompReadIDShift
	return d.image.WriteWord(d.bases.FCBA, word)
}

// SetEM100Mode disables dual-output fast read (FLCOMP bit 30) and sets the
// SPI frequency to this version's canonical slow code.
func (d *Descriptor) SetEM100Mode() error {
	word, err := d.image.ReadWord(d.bases.FCBA)
	if err != nil {
		return err
	}
	word &^= uint32(1) << flcompDualOutputBit
	if err := d.image.WriteWord(d.bases.FCBA, word); err != nil {
		return err
	}
	return d.SetSPIFrequency(d.Version.canonicalSlowFreq())
}

// DualOutputFastRead reports FLCOMP bit 30.
func (d *Descriptor) DualOutputFastRead() (bool, error) {
	word, err := d.image.ReadWord(d.bases.FCBA)
	if err != nil {
		return false, err
	}
	return word&(uint32(1)<<flcompDualOutputBit) != 0, nil
}

// Density is a chip-density code. Codes 0..7 fit V1's 3-bit field;
// DensityUnused (0xF) needs V2's 4-bit width and is never written by
// SetChipDensity.
type Density uint32

// Known density codes.
const (
	Density512KB  Density = 0
	Density1MB    Density = 1
	Density2MB    Density = 2
	Density4MB    Density = 3
	Density8MB    Density = 4
	Density16MB   Density = 5
	Density32MB   Density = 6
	Density64MB   Density = 7
	DensityUnused Density = 0xF
)

var densityNames = map[Density]string{
	Density512KB:  "512KB",
	Density1MB:    "1MB",
	Density2MB:    "2MB",
	Density4MB:    "4MB",
	Density8MB:    "8MB",
	Density16MB:   "16MB",
	Density32MB:   "32MB",
	Density64MB:   "64MB",
	DensityUnused: "UNUSED",
}

func (d Density) String() string {
	if s, ok := densityNames[d]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%#x)", uint32(d))
}

// densityByMB maps the CLI's --density argument values to codes.
var densityByMB = map[int]Density{
	512: Density512KB,
	1:   Density1MB,
	2:   Density2MB,
	4:   Density4MB,
	8:   Density8MB,
	16:  Density16MB,
	32:  Density32MB,
	64:  Density64MB,
}

// DensityFromMB resolves a CLI density argument to its code.
func DensityFromMB(mb int) (Density, bool) {
	d, ok := densityByMB[mb]
	return d, ok
}

// densityRepresentable reports whether density fits in this version's density
// field: V1's 3-bit field cannot hold 32MB, 64MB, or UNUSED. V2's 4-bit
// field is documented but, per the design notes, not implemented by any
// mutator here.
func (v Version) densityRepresentable(density Density) bool {
	if v == V2 {
		return false
	}
	switch density {
	case Density32MB, Density64MB, DensityUnused:
		return false
	default:
		return true
	}
}

func (v Version) density1Shift() uint {
	if v == V1 {
		return flcompDensity1ShiftV1
	}
	return flcompDensity1ShiftV2
}

// Chip selects which of FLCOMP's two density fields SetChipDensity edits.
type Chip int

// Chip selectors for SetChipDensity.
const (
	ChipBoth Chip = 0
	ChipLow  Chip = 1
	ChipHigh Chip = 2
)

// SetChipDensity writes density into chip 0's, chip 1's, or both density
// fields, masking the other bits of FLCOMP. See densityRepresentable for
// the V1/V2 support matrix.
func (d *Descriptor) SetChipDensity(density Density, chip Chip) error {
	if !d.Version.densityRepresentable(density) {
		return fmt.Errorf("%w: %s under %s", ErrUnsupportedDensity, density, d.Version)
	}
	word, err := d.image.ReadWord(d.bases.FCBA)
	if err != nil {
		return err
	}
	bits := d.Version.DensityBits()
	fieldMask := uint32(1)<<bits - 1
	shift0 := uint(flcompDensity0Shift)
	shift1 := d.Version.density1Shift()

	if chip == ChipBoth || chip == ChipLow {
		word &^= fieldMask << shift0
		word |= (uint32(density) & fieldMask) << shift0
	}
	if chip == ChipBoth || chip == ChipHigh {
		word &^= fieldMask << shift1
		word |= (uint32(density) & fieldMask) << shift1
	}
	return d.image.WriteWord(d.bases.FCBA, word)
}

// ChipDensity reads back chip 0's or chip 1's density field.
func (d *Descriptor) ChipDensity(chip Chip) (Density, error) {
	if chip == ChipBoth {
		chip = ChipLow
	}
	word, err := d.image.ReadWord(d.bases.FCBA)
	if err != nil {
		return 0, err
	}
	bits := d.Version.DensityBits()
	fieldMask := uint32(1)<<bits - 1
	shift := uint(flcompDensity0Shift)
	if chip == ChipHigh {
		shift = d.Version.density1Shift()
	}
	return Density((word >> shift) & fieldMask), nil
}

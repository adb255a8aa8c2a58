package ifd

import "fmt"

// RegionIndex is the slot of a region within FLREG/the flash region
// section. The numbering is fixed by the descriptor format, not by this
// package: index 0 is always the descriptor's own region.
type RegionIndex int

// Region slots, in FLREG order.
const (
	RegionFD RegionIndex = iota
	RegionBIOS
	RegionME
	RegionGBE
	RegionPD
	RegionRes1
	RegionRes2
	RegionRes3
	RegionEC

	numRegionSlots = RegionEC + 1
)

var regionPrettyNames = [numRegionSlots]string{
	RegionFD:   "Flash Descriptor",
	RegionBIOS: "BIOS",
	RegionME:   "Intel ME",
	RegionGBE:  "GbE",
	RegionPD:   "Platform Data",
	RegionRes1: "Reserved",
	RegionRes2: "Reserved",
	RegionRes3: "Reserved",
	RegionEC:   "EC",
}

var regionShortNames = [numRegionSlots]string{
	RegionFD:   "fd",
	RegionBIOS: "bios",
	RegionME:   "me",
	RegionGBE:  "gbe",
	RegionPD:   "pd",
	RegionRes1: "res1",
	RegionRes2: "res2",
	RegionRes3: "res3",
	RegionEC:   "ec",
}

// extractTags are the filename tags used by the region extractor, e.g.
// flashregion_2_intel_me.bin.
var extractTags = [numRegionSlots]string{
	RegionFD:   "flashdescriptor",
	RegionBIOS: "bios",
	RegionME:   "intel_me",
	RegionGBE:  "gbe",
	RegionPD:   "platform_data",
	RegionRes1: "reserved",
	RegionRes2: "reserved",
	RegionRes3: "reserved",
	RegionEC:   "ec",
}

// String returns the pretty (human-readable) name for the region.
func (r RegionIndex) String() string {
	if r < 0 || int(r) >= len(regionPrettyNames) {
		return fmt.Sprintf("region%d", int(r))
	}
	return regionPrettyNames[r]
}

// ShortName returns the terse name used in layout files and layout dumps.
func (r RegionIndex) ShortName() string {
	if r < 0 || int(r) >= len(regionShortNames) {
		return fmt.Sprintf("res%d", int(r))
	}
	return regionShortNames[r]
}

// ExtractTag returns the filename tag used by the extractor.
func (r RegionIndex) ExtractTag() string {
	if r < 0 || int(r) >= len(extractTags) {
		return "reserved"
	}
	return extractTags[r]
}

// Valid reports whether r is within range for the given version.
func (r RegionIndex) Valid(v Version) bool {
	return r >= 0 && int(r) < v.MaxRegions()
}

// ParseRegionName resolves a name against both the pretty and short name
// tables, case-insensitively. It is used by the relayout engine's layout
// parser and returns (index, true) on a match.
func ParseRegionName(name string) (RegionIndex, bool) {
	for i, pretty := range regionPrettyNames {
		if equalFold(pretty, name) {
			return RegionIndex(i), true
		}
	}
	for i, short := range regionShortNames {
		if equalFold(short, name) {
			return RegionIndex(i), true
		}
	}
	return 0, false
}

// MasterIndex is the slot of a bus master within the FLMSTR section.
type MasterIndex int

// Master slots, in FLMSTR order.
const (
	MasterCPUBIOS MasterIndex = iota
	MasterME
	MasterGBE
	MasterEC

	numMasterSlots = MasterEC + 1
)

var masterNames = [numMasterSlots]string{
	MasterCPUBIOS: "CPU/BIOS",
	MasterME:      "ME",
	MasterGBE:     "GbE",
	MasterEC:      "EC",
}

func (m MasterIndex) String() string {
	if m < 0 || int(m) >= len(masterNames) {
		return fmt.Sprintf("master%d", int(m))
	}
	return masterNames[m]
}

// Valid reports whether m is defined for the given version (EC only
// exists under V2).
func (m MasterIndex) Valid(v Version) bool {
	if m == MasterEC {
		return v.HasECMaster()
	}
	return m >= MasterCPUBIOS && m <= MasterGBE
}

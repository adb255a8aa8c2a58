package ifd

import "fmt"

// Sentinel errors for the fatal conditions the tool can hit. Callers should
// compare with errors.Is; most of these are wrapped with additional context
// by the function that detects them.
var (
	// ErrSignatureMissing is returned when no flash descriptor signature is
	// found anywhere in the image.
	ErrSignatureMissing = fmt.Errorf("flash descriptor signature not found")

	// ErrUnknownVersion is returned when the read-clock-frequency field of
	// FLCOMP does not map to a known descriptor version.
	ErrUnknownVersion = fmt.Errorf("unknown descriptor version")

	// ErrInvalidRegion is returned when a region index is out of range for
	// the descriptor's version.
	ErrInvalidRegion = fmt.Errorf("invalid region index")

	// ErrRegionDisabled is returned when an operation requires an enabled
	// region but the region's size is zero.
	ErrRegionDisabled = fmt.Errorf("region is disabled")

	// ErrPayloadTooLarge is returned when a region-injection payload does
	// not fit inside the target region.
	ErrPayloadTooLarge = fmt.Errorf("payload larger than region")

	// ErrUnsupportedDensity is returned when a density value cannot be
	// encoded for the descriptor's version.
	ErrUnsupportedDensity = fmt.Errorf("unsupported chip density for this descriptor version")

	// ErrOverlap is returned when two enabled regions would overlap after a
	// relayout.
	ErrOverlap = fmt.Errorf("regions would overlap")

	// ErrLayoutParse is returned when a layout file line cannot be parsed as
	// a BASE:LIMIT pair.
	ErrLayoutParse = fmt.Errorf("malformed layout line")

	// ErrConflictingModes is returned when more than one mutually exclusive
	// CLI mode flag is supplied.
	ErrConflictingModes = fmt.Errorf("conflicting modes requested")

	// ErrRegionWriteUnsupported is returned when writing FLREG for an index
	// beyond what the core implements (see design notes: only indices 0-4
	// have a writer, even under V2 where regions 5-8 exist).
	ErrRegionWriteUnsupported = fmt.Errorf("writing this region index is not supported")

	// ErrImageTooSmall is returned when the image buffer is smaller than
	// required to hold a structure at the offset being read.
	ErrImageTooSmall = fmt.Errorf("image too small for this offset")
)

// OverlapError describes one pair of regions found to overlap during
// relayout validation.
type OverlapError struct {
	A, B    RegionIndex
	RegionA Region
	RegionB Region
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: %s %s overlaps %s %s", ErrOverlap, e.A, e.RegionA, e.B, e.RegionB)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}

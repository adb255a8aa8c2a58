package ifd

import "fmt"

// InjectRegion writes payload into region index's slot in the image.
// The region must already be enabled; InjectRegion never edits FLREG and
// never resizes the region. A payload larger than the region is rejected.
//
// Region RegionBIOS is top-aligned: payload is written against the
// region's Limit, and any leading gap is filled with 0xFF. Every other
// region is bottom-aligned: payload is written against the region's Base,
// and any trailing gap is left untouched, matching the source's treatment
// of non-BIOS regions as possibly containing trailing metadata the
// injector must not disturb.
func (d *Descriptor) InjectRegion(index RegionIndex, payload []byte) error {
	region, err := d.GetRegion(index)
	if err != nil {
		return err
	}
	if !region.Enabled() {
		return fmt.Errorf("%w: %s", ErrRegionDisabled, index)
	}
	if uint32(len(payload)) > region.Size {
		return fmt.Errorf("%w: %s is %d bytes, region holds %d", ErrPayloadTooLarge, index, len(payload), region.Size)
	}

	if index == RegionBIOS {
		gap := region.Size - uint32(len(payload))
		if gap > 0 {
			pad := make([]byte, gap)
			for i := range pad {
				pad[i] = 0xFF
			}
			if err := d.image.WriteAt(region.Base, pad); err != nil {
				return err
			}
		}
		return d.image.WriteAt(region.Base+gap, payload)
	}

	return d.image.WriteAt(region.Base, payload)
}

// ExtractRegion returns a copy of region index's bytes. A disabled region
// yields an empty slice: extraction is read-only and never fails just
// because the region has no content.
func (d *Descriptor) ExtractRegion(index RegionIndex) ([]byte, error) {
	region, err := d.GetRegion(index)
	if err != nil {
		return nil, err
	}
	if !region.Enabled() {
		return []byte{}, nil
	}
	return d.image.ReadAt(region.Base, int(region.Size))
}

package ifd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tadfisher/ifdtool/pkg/log"
)

// LayoutEntry is one parsed line of a layout file: a region name paired
// with its desired (base, limit) range.
type LayoutEntry struct {
	Region RegionIndex
	Base   uint32
	Limit  uint32
}

// ParseLayout reads a layout file of "BASE:LIMIT NAME" lines, one region
// per line; NAME is everything after the first field, so multi-word pretty
// names such as "Intel ME" match. A line whose NAME does not match any known
// region (pretty or short form, case-insensitive) is silently skipped before
// its range is looked at: layout files may carry annotations for regions
// this tool does not model. A line naming a known region whose BASE:LIMIT
// pair cannot be parsed as hex is fatal (ErrLayoutParse).
func ParseLayout(r io.Reader) ([]LayoutEntry, error) {
	var entries []LayoutEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrLayoutParse, lineNo, line)
		}
		region, ok := ParseRegionName(strings.Join(fields[1:], " "))
		if !ok {
			continue
		}
		base, limit, err := parseRange(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrLayoutParse, lineNo, err)
		}
		entries = append(entries, LayoutEntry{Region: region, Base: base, Limit: limit})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseRange parses a "BASE:LIMIT" pair of hex addresses.
func parseRange(s string) (base, limit uint32, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected BASE:LIMIT, got %q", s)
	}
	b, err := strconv.ParseUint(strings.TrimPrefix(parts[0], "0x"), 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad base %q: %w", parts[0], err)
	}
	l, err := strconv.ParseUint(strings.TrimPrefix(parts[1], "0x"), 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad limit %q: %w", parts[1], err)
	}
	return uint32(b), uint32(l), nil
}

// validateNoOverlaps checks every pair of enabled regions in regions and
// returns a multierror aggregating every colliding pair found, not just
// the first.
func validateNoOverlaps(regions map[RegionIndex]Region) error {
	var result error
	indices := make([]RegionIndex, 0, len(regions))
	for idx := range regions {
		indices = append(indices, idx)
	}
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			a, b := indices[i], indices[j]
			if RegionsCollide(regions[a], regions[b]) {
				result = multierror.Append(result, &OverlapError{
					A: a, B: b, RegionA: regions[a], RegionB: regions[b],
				})
			}
		}
	}
	return result
}

// Relayout rebuilds the image's region layout from entries: it validates
// the new layout for overlaps, resizes the image to the next power of two
// above the highest limit, copies each region's old payload into its new
// slot, relocates the descriptor, and rewrites FLREG1..FLREG4 (up to
// maxWritableRegion). FLREG5..FLREG8, which exist only under V2, have no
// writer: their payloads are moved like any other region's, but their FLREG
// words keep the values copied over with the old descriptor.
// FLREG0 (the descriptor's own region) is never rewritten: its location is
// implied by the signature scan, not by FLREG.
//
// A region that shrinks keeps its trailing bytes (closest to its new
// Limit) and truncates the rest; logger receives a warning for each
// shrink so the caller can surface it without Relayout itself failing.
func (d *Descriptor) Relayout(entries []LayoutEntry, logger log.Logger) (*Image, error) {
	if logger == nil {
		logger = log.DefaultLogger
	}

	oldRegions := make(map[RegionIndex]Region)
	newRegions := make(map[RegionIndex]Region)
	for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
		old, err := d.GetRegion(r)
		if err != nil {
			return nil, err
		}
		oldRegions[r] = old
		newRegions[r] = old
	}
	for _, e := range entries {
		if !e.Region.Valid(d.Version) || e.Region == RegionFD {
			continue
		}
		newRegions[e.Region] = regionFromLimits(e.Base, e.Limit)
	}

	if err := validateNoOverlaps(newRegions); err != nil {
		return nil, err
	}

	var maxLimit uint32
	for _, r := range newRegions {
		if r.Enabled() && r.Limit > maxLimit {
			maxLimit = r.Limit
		}
	}
	newExtent := NextPow2(maxLimit)
	if newExtent == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrLayoutParse)
	}

	newBuf := make([]byte, newExtent)
	for i := range newBuf {
		newBuf[i] = 0xFF
	}
	newImage := NewImage(newBuf)

	descBytes, err := d.image.ReadAt(d.base, int(d.bases.FRBA+uint32(d.Version.MaxRegions())*4-d.base))
	if err != nil {
		return nil, err
	}
	if err := newImage.WriteAt(d.base, descBytes); err != nil {
		return nil, err
	}

	for r, newRegion := range newRegions {
		old := oldRegions[r]
		if err := copyRegionPayload(d.image, old, newImage, newRegion, r, logger); err != nil {
			return nil, err
		}
	}

	newDesc, err := Load(newImage)
	if err != nil {
		return nil, fmt.Errorf("relocating descriptor after relayout: %w", err)
	}

	for r, newRegion := range newRegions {
		if r == RegionFD {
			continue
		}
		if r > maxWritableRegion {
			continue
		}
		if err := newDesc.SetRegion(r, newRegion); err != nil {
			return nil, err
		}
	}

	return newImage, nil
}

// copyRegionPayload moves one region's old content into its new slot.
// The payload is always placed against the new region's high end: a
// growing region's content lands flush with its new Limit, leaving the
// newly added space at the low end; a shrinking region keeps only the
// bytes nearest its new, smaller Limit and truncates the remainder, with a
// warning logged for the loss. A same-size region is unaffected either way.
func copyRegionPayload(oldImage *Image, old Region, newImage *Image, newRegion Region, r RegionIndex, logger log.Logger) error {
	if !old.Enabled() || !newRegion.Enabled() {
		return nil
	}
	payload, err := oldImage.ReadAt(old.Base, int(old.Size))
	if err != nil {
		return err
	}
	if uint32(len(payload)) > newRegion.Size {
		logger.Warnf("region %s shrunk from %d to %d bytes, truncating payload", r, len(payload), newRegion.Size)
		payload = payload[uint32(len(payload))-newRegion.Size:]
	}
	offset := newRegion.Size - uint32(len(payload))
	return newImage.WriteAt(newRegion.Base+offset, payload)
}

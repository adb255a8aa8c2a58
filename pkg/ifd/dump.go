package ifd

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// RegionDump is the per-region information the full dump and the JSON
// companion dump both report.
type RegionDump struct {
	Index   RegionIndex `json:"index"`
	Name    string      `json:"name"`
	Base    uint32      `json:"base"`
	Limit   uint32      `json:"limit"`
	Size    uint32      `json:"size"`
	Enabled bool        `json:"enabled"`
}

// MasterAccessDump is one bus master's read/write access bitmap, reported
// per region.
type MasterAccessDump struct {
	Master MasterIndex    `json:"master"`
	Name   string          `json:"name"`
	Read   map[string]bool `json:"read"`
	Write  map[string]bool `json:"write"`
}

// Dump is the full structured view of a descriptor, the source for both
// the text dump and the --json dump: --json keys are this struct's
// snake_case json tags rather than the text dump's display labels.
type Dump struct {
	Version                string             `json:"version"`
	Regions                []RegionDump       `json:"regions"`
	MasterAccess           []MasterAccessDump `json:"master_access"`
	SPIFrequency           string             `json:"spi_frequency"`
	DualOutputFast         bool               `json:"dual_output_fast_read"`
	ChipDensity0           string             `json:"chip_density_0"`
	ChipDensity1           string             `json:"chip_density_1"`
	InvalidInstructions    [4]byte            `json:"invalid_instructions"`
	FlashPartitionBoundary uint32             `json:"flash_partition_boundary"`
	PCHStraps              []uint32           `json:"pch_straps"`
	ProcessorStraps        []byte             `json:"processor_straps"`
	VSCCTable              []VSCCEntry        `json:"vscc_table"`
	OEM                    []byte             `json:"oem"`
}

// BuildDump decodes every field the text and JSON dumps report.
func (d *Descriptor) BuildDump() (*Dump, error) {
	out := &Dump{Version: d.Version.String()}

	for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
		region, err := d.GetRegion(r)
		if err != nil {
			return nil, err
		}
		out.Regions = append(out.Regions, RegionDump{
			Index: r, Name: r.String(), Base: region.Base, Limit: region.Limit,
			Size: region.Size, Enabled: region.Enabled(),
		})
	}

	for m := MasterIndex(0); int(m) < numMasterSlots; m++ {
		if !m.Valid(d.Version) {
			continue
		}
		read := map[string]bool{}
		write := map[string]bool{}
		for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
			canRead, err := d.CanRead(m, r)
			if err != nil {
				return nil, err
			}
			canWrite, err := d.CanWrite(m, r)
			if err != nil {
				return nil, err
			}
			read[r.ShortName()] = canRead
			write[r.ShortName()] = canWrite
		}
		out.MasterAccess = append(out.MasterAccess, MasterAccessDump{
			Master: m, Name: m.String(), Read: read, Write: write,
		})
	}

	freq, err := d.ReadClockFrequency()
	if err != nil {
		return nil, err
	}
	out.SPIFrequency = freq.StringForVersion(d.Version)

	out.DualOutputFast, err = d.DualOutputFastRead()
	if err != nil {
		return nil, err
	}

	density0, err := d.ChipDensity(ChipLow)
	if err != nil {
		return nil, err
	}
	out.ChipDensity0 = density0.String()

	density1, err := d.ChipDensity(ChipHigh)
	if err != nil {
		return nil, err
	}
	out.ChipDensity1 = density1.String()

	out.InvalidInstructions, err = d.InvalidInstructions()
	if err != nil {
		return nil, err
	}

	out.FlashPartitionBoundary, err = d.FlashPartitionBoundary()
	if err != nil {
		return nil, err
	}

	out.PCHStraps, err = d.PCHStraps()
	if err != nil {
		return nil, err
	}

	out.ProcessorStraps, err = d.ProcessorStraps()
	if err != nil {
		return nil, err
	}

	out.VSCCTable, err = d.VSCCTable()
	if err != nil {
		return nil, err
	}

	out.OEM, err = d.OEMBlob()
	if err != nil {
		return nil, err
	}

	return out, nil
}

// WriteText renders the full human-readable dump: raw FLREG/FLMSTR words
// first, unchanged by anything below, followed by go-pretty tables
// decoding regions, master access, and the VSCC table.
func (d *Descriptor) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "FLVALSIG:  %#010x\n", SignatureValue)
	fmt.Fprintf(w, "Version:   %s\n\n", d.Version)

	fmt.Fprintln(w, "Raw region words (FLREG):")
	for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
		word, err := d.image.ReadWord(d.bases.FRBA + flregOffset(r))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  FLREG%d: %#010x\n", r, word)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Raw master words (FLMSTR):")
	for m := MasterIndex(0); int(m) < numMasterSlots; m++ {
		if !m.Valid(d.Version) {
			continue
		}
		word, err := d.GetMasterWord(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  FLMSTR%d: %#010x\n", m+1, word)
	}
	fmt.Fprintln(w)

	dump, err := d.BuildDump()
	if err != nil {
		return err
	}

	regionTable := table.NewWriter()
	regionTable.SetOutputMirror(w)
	regionTable.AppendHeader(table.Row{"Region", "Base", "Limit", "Size", "Enabled"})
	for _, rd := range dump.Regions {
		size := "-"
		if rd.Enabled {
			size = humanize.IBytes(uint64(rd.Size))
		}
		regionTable.AppendRow(table.Row{
			rd.Name, fmt.Sprintf("%#08x", rd.Base), fmt.Sprintf("%#08x", rd.Limit), size, rd.Enabled,
		})
	}
	regionTable.Render()
	fmt.Fprintln(w)

	masterTable := table.NewWriter()
	masterTable.SetOutputMirror(w)
	header := table.Row{"Master"}
	for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
		header = append(header, r.ShortName()+" r", r.ShortName()+" w")
	}
	masterTable.AppendHeader(header)
	for _, ma := range dump.MasterAccess {
		row := table.Row{ma.Name}
		for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
			row = append(row, ma.Read[r.ShortName()], ma.Write[r.ShortName()])
		}
		masterTable.AppendRow(row)
	}
	masterTable.Render()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Read Clock Frequency: %s\n", dump.SPIFrequency)
	fmt.Fprintf(w, "Dual output fast read:  %t\n", dump.DualOutputFast)
	fmt.Fprintf(w, "Chip density 0:         %s\n", dump.ChipDensity0)
	fmt.Fprintf(w, "Chip density 1:         %s\n", dump.ChipDensity1)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Invalid instructions:")
	for i, instr := range dump.InvalidInstructions {
		fmt.Fprintf(w, "  %d: %#04x\n", i, instr)
	}
	fmt.Fprintf(w, "Flash partition boundary: %#010x\n", dump.FlashPartitionBoundary)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PCH straps (PCHSTRP):")
	for i, word := range dump.PCHStraps {
		fmt.Fprintf(w, "  PCHSTRP%d: %#010x\n", i, word)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Processor straps (%d bytes):\n%s\n", len(dump.ProcessorStraps), hex.Dump(dump.ProcessorStraps))

	if len(dump.VSCCTable) > 0 {
		vsccTable := table.NewWriter()
		vsccTable.SetOutputMirror(w)
		vsccTable.AppendHeader(table.Row{"JID", "VSCC"})
		for _, e := range dump.VSCCTable {
			vsccTable.AppendRow(table.Row{fmt.Sprintf("%#08x", e.JID), fmt.Sprintf("%#08x", e.VSCC)})
		}
		vsccTable.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "OEM (%d bytes):\n%s", len(dump.OEM), hex.Dump(dump.OEM))

	return nil
}

// WriteLayout renders the terse "BASE:LIMIT name" layout-dump format, one
// enabled region per line, addresses zero-padded to 8 lowercase hex
// digits.
func (d *Descriptor) WriteLayout(w io.Writer) error {
	for r := RegionIndex(0); int(r) < d.Version.MaxRegions(); r++ {
		region, err := d.GetRegion(r)
		if err != nil {
			return err
		}
		if !region.Enabled() {
			continue
		}
		fmt.Fprintf(w, "%08x:%08x %s\n", region.Base, region.Limit, r.ShortName())
	}
	return nil
}

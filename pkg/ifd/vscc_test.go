package ifd

import "testing"

func TestVSCCTableBound(t *testing.T) {
	buf := buildRawImage(V1) // VTL = 8 DWORDs -> 4 entries, buildRawImage helper
	desc, err := Load(NewImage(buf))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Write 4 entries at VTBA (0xE0).
	const vtba = 0xE0
	for i := 0; i < 4; i++ {
		off := vtba + i*8
		jid := uint32(0x10000000 + i)
		vscc := uint32(0x20000000 + i)
		for b := 0; b < 4; b++ {
			buf[off+b] = byte(jid >> (8 * b))
			buf[off+4+b] = byte(vscc >> (8 * b))
		}
	}
	entries, err := desc.VSCCTable()
	if err != nil {
		t.Fatalf("VSCCTable: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("VSCCTable returned %d entries; want 4", len(entries))
	}
	for i, e := range entries {
		if e.JID != uint32(0x10000000+i) || e.VSCC != uint32(0x20000000+i) {
			t.Errorf("entry %d = %#v; want JID=%#x VSCC=%#x", i, e, 0x10000000+i, 0x20000000+i)
		}
	}
}

func TestVSCCTableBoundedAtEight(t *testing.T) {
	if maxVSCCEntries != 8 {
		t.Fatalf("maxVSCCEntries = %d; want 8", maxVSCCEntries)
	}
}

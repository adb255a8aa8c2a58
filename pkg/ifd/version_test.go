package ifd

import (
	"errors"
	"testing"
)

func TestDetectVersion(t *testing.T) {
	cases := []struct {
		freq    uint32
		want    Version
		wantErr bool
	}{
		{0, V1, false},
		{4, V2, false},
		{1, 0, true},
		{7, 0, true},
	}
	for _, tc := range cases {
		got, err := DetectVersion(tc.freq)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownVersion) {
				t.Errorf("DetectVersion(%#x) err = %v; want ErrUnknownVersion", tc.freq, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("DetectVersion(%#x) unexpected err: %v", tc.freq, err)
		}
		if got != tc.want {
			t.Errorf("DetectVersion(%#x) = %v; want %v", tc.freq, got, tc.want)
		}
	}
}

func TestVersionFieldWidths(t *testing.T) {
	if V1.MaxRegions() != 5 {
		t.Errorf("V1.MaxRegions() = %d; want 5", V1.MaxRegions())
	}
	if V2.MaxRegions() != 9 {
		t.Errorf("V2.MaxRegions() = %d; want 9", V2.MaxRegions())
	}
	if V1.RegionBaseMask() != 0xFFF {
		t.Errorf("V1.RegionBaseMask() = %#x; want 0xFFF", V1.RegionBaseMask())
	}
	if V2.RegionBaseMask() != 0x7FFF {
		t.Errorf("V2.RegionBaseMask() = %#x; want 0x7FFF", V2.RegionBaseMask())
	}
	if V1.MasterWriteShift() != 16 {
		t.Errorf("V1.MasterWriteShift() = %d; want 16", V1.MasterWriteShift())
	}
	if V2.MasterWriteShift() != 20 {
		t.Errorf("V2.MasterWriteShift() = %d; want 20", V2.MasterWriteShift())
	}
	if V1.DensityBits() != 3 {
		t.Errorf("V1.DensityBits() = %d; want 3", V1.DensityBits())
	}
	if V2.DensityBits() != 4 {
		t.Errorf("V2.DensityBits() = %d; want 4", V2.DensityBits())
	}
	if V1.HasECMaster() {
		t.Errorf("V1.HasECMaster() = true; want false")
	}
	if !V2.HasECMaster() {
		t.Errorf("V2.HasECMaster() = false; want true")
	}
}

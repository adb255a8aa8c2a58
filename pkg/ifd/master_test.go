package ifd

import "testing"

func TestUnlockThenLockTwiceMatrixIsStable(t *testing.T) {
	for _, v := range []Version{V1, V2} {
		buf := buildRawImage(v)
		desc, err := Load(NewImage(buf))
		if err != nil {
			t.Fatalf("Load(%v): %v", v, err)
		}
		if err := desc.UnlockDescriptor(); err != nil {
			t.Fatalf("UnlockDescriptor(%v): %v", v, err)
		}
		if err := desc.LockDescriptor(); err != nil {
			t.Fatalf("LockDescriptor(%v): %v", v, err)
		}
		before := map[MasterIndex]uint32{}
		for _, m := range []MasterIndex{MasterCPUBIOS, MasterME, MasterGBE} {
			w, err := desc.GetMasterWord(m)
			if err != nil {
				t.Fatalf("GetMasterWord(%v, %v): %v", v, m, err)
			}
			before[m] = w
		}

		// Lock is idempotent: locking again must reproduce exactly the
		// same matrix regardless of what UnlockDescriptor left behind.
		if err := desc.LockDescriptor(); err != nil {
			t.Fatalf("second LockDescriptor(%v): %v", v, err)
		}
		for _, m := range []MasterIndex{MasterCPUBIOS, MasterME, MasterGBE} {
			w, err := desc.GetMasterWord(m)
			if err != nil {
				t.Fatalf("GetMasterWord(%v, %v): %v", v, m, err)
			}
			if w != before[m] {
				t.Errorf("%v: LockDescriptor not idempotent for %v: %#x != %#x", v, m, w, before[m])
			}
		}
	}
}

func TestLockDescriptorGrantsExpectedAccess(t *testing.T) {
	buf := buildRawImage(V1)
	desc, err := Load(NewImage(buf))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := desc.LockDescriptor(); err != nil {
		t.Fatalf("LockDescriptor: %v", err)
	}

	cases := []struct {
		master MasterIndex
		region RegionIndex
		read   bool
		write  bool
	}{
		{MasterCPUBIOS, RegionFD, true, false},
		{MasterCPUBIOS, RegionBIOS, true, true},
		{MasterCPUBIOS, RegionGBE, true, true},
		{MasterCPUBIOS, RegionME, false, false},
		{MasterME, RegionFD, true, false},
		{MasterME, RegionME, true, true},
		{MasterME, RegionGBE, true, true},
		{MasterME, RegionBIOS, false, false},
		{MasterGBE, RegionGBE, true, true},
		// V1's fixed 0x118 requester ID happens to set region 0's read bit,
		// so GbE also reads the descriptor region as a side effect.
		{MasterGBE, RegionFD, true, false},
		{MasterGBE, RegionBIOS, false, false},
		{MasterGBE, RegionME, false, false},
	}
	for _, tc := range cases {
		gotRead, err := desc.CanRead(tc.master, tc.region)
		if err != nil {
			t.Fatalf("CanRead(%v, %v): %v", tc.master, tc.region, err)
		}
		if gotRead != tc.read {
			t.Errorf("CanRead(%v, %v) = %v; want %v", tc.master, tc.region, gotRead, tc.read)
		}
		gotWrite, err := desc.CanWrite(tc.master, tc.region)
		if err != nil {
			t.Fatalf("CanWrite(%v, %v): %v", tc.master, tc.region, err)
		}
		if gotWrite != tc.write {
			t.Errorf("CanWrite(%v, %v) = %v; want %v", tc.master, tc.region, gotWrite, tc.write)
		}
	}
}

func TestUnlockDescriptorV1UsesFixedConstants(t *testing.T) {
	buf := buildRawImage(V1)
	desc, err := Load(NewImage(buf))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := desc.UnlockDescriptor(); err != nil {
		t.Fatalf("UnlockDescriptor: %v", err)
	}
	for i, master := range []MasterIndex{MasterCPUBIOS, MasterME, MasterGBE} {
		got, err := desc.GetMasterWord(master)
		if err != nil {
			t.Fatalf("GetMasterWord(%v): %v", master, err)
		}
		if got != unlockWordV1[i] {
			t.Errorf("GetMasterWord(%v) after unlock = %#x; want %#x", master, got, unlockWordV1[i])
		}
	}
}

func TestUnlockDescriptorV2GrantsFullAccess(t *testing.T) {
	buf := buildRawImage(V2)
	desc, err := Load(NewImage(buf))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := desc.UnlockDescriptor(); err != nil {
		t.Fatalf("UnlockDescriptor: %v", err)
	}
	for r := RegionIndex(0); int(r) < desc.Version.MaxRegions(); r++ {
		canRead, err := desc.CanRead(MasterCPUBIOS, r)
		if err != nil {
			t.Fatalf("CanRead: %v", err)
		}
		canWrite, err := desc.CanWrite(MasterCPUBIOS, r)
		if err != nil {
			t.Fatalf("CanWrite: %v", err)
		}
		if !canRead || !canWrite {
			t.Errorf("CPU/BIOS access to region %v after unlock = (read=%v, write=%v); want (true, true)", r, canRead, canWrite)
		}
	}
}

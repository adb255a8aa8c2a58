package ifd

import (
	"errors"
	"testing"
)

func TestFindDescriptor(t *testing.T) {
	buf := buildRawImage(V1)
	off, err := FindDescriptor(buf)
	if err != nil {
		t.Fatalf("FindDescriptor: %v", err)
	}
	if off != 0 {
		t.Errorf("FindDescriptor offset = %d; want 0", off)
	}

	if _, err := FindDescriptor([]byte{0, 0, 0}); !errors.Is(err, ErrSignatureMissing) {
		t.Errorf("FindDescriptor on short buffer err = %v; want ErrSignatureMissing", err)
	}

	noSig := make([]byte, 64)
	if _, err := FindDescriptor(noSig); !errors.Is(err, ErrSignatureMissing) {
		t.Errorf("FindDescriptor on zeroed buffer err = %v; want ErrSignatureMissing", err)
	}
}

func TestLoadDetectsVersion(t *testing.T) {
	for _, v := range []Version{V1, V2} {
		buf := buildRawImage(v)
		desc, err := Load(NewImage(buf))
		if err != nil {
			t.Fatalf("Load(%v): %v", v, err)
		}
		if desc.Version != v {
			t.Errorf("Load(%v).Version = %v; want %v", v, desc.Version, v)
		}
	}
}

func TestLoadRejectsMissingSignature(t *testing.T) {
	buf := make([]byte, 64)
	if _, err := Load(NewImage(buf)); !errors.Is(err, ErrSignatureMissing) {
		t.Errorf("Load err = %v; want ErrSignatureMissing", err)
	}
}

func TestLoadRejectsTooSmallImage(t *testing.T) {
	buf := buildRawImage(V1)
	truncated := buf[:0x50] // cuts off before VTBA
	if _, err := Load(NewImage(truncated)); !errors.Is(err, ErrImageTooSmall) {
		t.Errorf("Load err = %v; want ErrImageTooSmall", err)
	}
}

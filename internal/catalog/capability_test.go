package catalog_test

import (
	"testing"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

func TestCapability_Allows(t *testing.T) {
	if !catalog.CapabilityOwner.Allows(catalog.CapabilityWrite) {
		t.Fatal("owner should allow write")
	}
	if !catalog.CapabilityWrite.Allows(catalog.CapabilityRead) {
		t.Fatal("write should allow read")
	}
	if catalog.CapabilityRead.Allows(catalog.CapabilityWrite) {
		t.Fatal("read should not allow write")
	}
	if catalog.CapabilityNone.Allows(catalog.CapabilityRead) {
		t.Fatal("none should not allow read")
	}
}

func TestParseCapability_RejectsOwner(t *testing.T) {
	if _, err := catalog.ParseCapability("owner"); err == nil {
		t.Fatal("expected error for owner capability")
	}

	capability, err := catalog.ParseCapability("write")
	if err != nil {
		t.Fatalf("parse write: %v", err)
	}
	if capability != catalog.CapabilityWrite {
		t.Fatalf("unexpected capability: %v", capability)
	}
}

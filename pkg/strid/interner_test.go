package strid

import "testing"

func TestWellKnownIDsStable(t *testing.T) {
	in := New()

	if got := in.Intern("this"); got != This {
		t.Errorf("Intern(\"this\") = %d, want %d", got, This)
	}
	if got := in.Intern("__FILE__"); got != FileConst {
		t.Errorf("Intern(\"__FILE__\") = %d, want %d", got, FileConst)
	}
	if got := in.Intern(""); got != Empty {
		t.Errorf("Intern(\"\") = %d, want %d", got, Empty)
	}
}

func TestInternRoundTrip(t *testing.T) {
	in := New()

	id := in.Intern("someVariable")
	again := in.Intern("someVariable")
	if id != again {
		t.Fatalf("Intern is not idempotent: %d != %d", id, again)
	}

	got, ok := in.Lookup(id)
	if !ok || got != "someVariable" {
		t.Fatalf("Lookup(%d) = %q, %v; want %q, true", id, got, ok, "someVariable")
	}
}

func TestLookupUnknown(t *testing.T) {
	in := New()
	if _, ok := in.Lookup(ID(9999)); ok {
		t.Error("expected Lookup of an unassigned ID to fail")
	}
}

func TestInternDistinctStringsGetDistinctIDs(t *testing.T) {
	in := New()
	a := in.Intern("alpha")
	b := in.Intern("beta")
	if a == b {
		t.Fatalf("distinct strings got the same id: %d", a)
	}
}

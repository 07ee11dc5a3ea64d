package coordinator

import "testing"

func TestPairTable_Symmetry(t *testing.T) {
	p := newPairTable()
	if !p.pair("a", "b") {
		t.Fatal("pair(a, b) = false, want true")
	}

	got, ok := p.partnerOf("a")
	if !ok || got != "b" {
		t.Errorf("partnerOf(a) = (%s, %v), want (b, true)", got, ok)
	}
	got, ok = p.partnerOf("b")
	if !ok || got != "a" {
		t.Errorf("partnerOf(b) = (%s, %v), want (a, true)", got, ok)
	}
	if p.count() != 1 {
		t.Errorf("count() = %d, want 1", p.count())
	}
}

func TestPairTable_RefusesSelfAndOverwrite(t *testing.T) {
	p := newPairTable()

	if p.pair("a", "a") {
		t.Error("pair(a, a) = true, want false")
	}

	p.pair("a", "b")
	if p.pair("a", "c") {
		t.Error("pair(a, c) while a is paired = true, want false")
	}
	if p.pair("c", "b") {
		t.Error("pair(c, b) while b is paired = true, want false")
	}
}

func TestPairTable_UnpairIdempotent(t *testing.T) {
	p := newPairTable()
	p.pair("a", "b")

	other, ok := p.unpair("a")
	if !ok || other != "b" {
		t.Fatalf("unpair(a) = (%s, %v), want (b, true)", other, ok)
	}

	// Both directions must be gone at once.
	if _, ok := p.partnerOf("a"); ok {
		t.Error("partnerOf(a) still resolves after unpair")
	}
	if _, ok := p.partnerOf("b"); ok {
		t.Error("partnerOf(b) still resolves after unpair")
	}

	// A second unpair is a harmless no-op.
	if _, ok := p.unpair("a"); ok {
		t.Error("second unpair(a) = true, want false")
	}
	if p.count() != 0 {
		t.Errorf("count() = %d after unpair, want 0", p.count())
	}
}

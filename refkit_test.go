package refkit

import "testing"

type valueDropper struct {
	hits *int
}

func (d valueDropper) Drop() { (*d.hits)++ }

type ptrDropper struct {
	hits int
}

func (d *ptrDropper) Drop() { d.hits++ }

func TestValueDrops(t *testing.T) {
	if ValueDrops[int]() {
		t.Fatal("int must not report a Drop method")
	}
	if ValueDrops[[]byte]() {
		t.Fatal("[]byte must not report a Drop method")
	}
	if !ValueDrops[valueDropper]() {
		t.Fatal("value-receiver Dropper not detected")
	}
	if !ValueDrops[ptrDropper]() {
		t.Fatal("pointer-receiver Dropper not detected on value type")
	}
	if !ValueDrops[*ptrDropper]() {
		t.Fatal("pointer-receiver Dropper not detected on pointer type")
	}
}

func TestDropValue(t *testing.T) {
	hits := 0
	v := valueDropper{hits: &hits}
	if !DropValue(&v) {
		t.Fatal("Expected value-receiver Drop to run")
	}
	if hits != 1 {
		t.Fatalf("Expected 1 drop, got %d", hits)
	}

	p := &ptrDropper{}
	if !DropValue(&p) {
		t.Fatal("Expected pointer payload Drop to run")
	}
	if p.hits != 1 {
		t.Fatalf("Expected 1 drop, got %d", p.hits)
	}

	inPlace := ptrDropper{}
	if !DropValue(&inPlace) {
		t.Fatal("Expected in-place Drop through address")
	}
	if inPlace.hits != 1 {
		t.Fatalf("Expected drop against stored value, got %d", inPlace.hits)
	}

	n := 5
	if DropValue(&n) {
		t.Fatal("Expected no Drop for plain int")
	}
}

func TestDropValueNilPayloads(t *testing.T) {
	// Zeroed slots of pointer and interface element types carry the Drop
	// method in their type but have no receiver to run it on.
	var p *ptrDropper
	if DropValue(&p) {
		t.Fatal("Expected no Drop for nil pointer payload")
	}

	var d Dropper
	if DropValue(&d) {
		t.Fatal("Expected no Drop for nil interface payload")
	}

	d = (*ptrDropper)(nil)
	if DropValue(&d) {
		t.Fatal("Expected no Drop for typed-nil interface payload")
	}

	d = &ptrDropper{}
	if !DropValue(&d) {
		t.Fatal("Expected Drop for non-nil interface payload")
	}
}

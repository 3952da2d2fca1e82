package roaringish

import "testing"

func TestPackUnpack_RoundTrip(t *testing.T) {
	cases := []struct {
		doc    DocID
		group  uint16
		values uint16
	}{
		{0, 0, 1},
		{1, 5, 0xFFFF},
		{42, 65535, 0x8001},
	}
	for _, c := range cases {
		w := pack(c.doc, c.group, c.values)
		if got := unpackDocID(w); got != c.doc {
			t.Errorf("pack/unpackDocID(%+v) = %d, want %d", c, got, c.doc)
		}
		if got := unpackGroup(w); got != c.group {
			t.Errorf("pack/unpackGroup(%+v) = %d, want %d", c, got, c.group)
		}
		if got := unpackValues(w); got != c.values {
			t.Errorf("pack/unpackValues(%+v) = %d, want %d", c, got, c.values)
		}
	}
}

func TestClearValues(t *testing.T) {
	w := pack(7, 3, 0xFFFF)
	cleared := clearValues(w)
	if unpackValues(cleared) != 0 {
		t.Errorf("clearValues left non-zero value bitmap")
	}
	if unpackDocID(cleared) != 7 || unpackGroup(cleared) != 3 {
		t.Errorf("clearValues disturbed doc_id/group")
	}
}

func TestList_Push_GroupsConsecutivePositions(t *testing.T) {
	var l List
	// Positions 0 and 1 share group 0; position 20 is group 1.
	l.Push(1, []Position{0, 1, 20})

	if len(l) != 2 {
		t.Fatalf("Push produced %d words, want 2", len(l))
	}
	if unpackDocID(l[0]) != 1 || unpackGroup(l[0]) != 0 || unpackValues(l[0]) != 0b11 {
		t.Errorf("word 0 = %x, want doc=1 group=0 values=0b11", l[0])
	}
	if unpackDocID(l[1]) != 1 || unpackGroup(l[1]) != 1 || unpackValues(l[1]) != 1<<4 {
		t.Errorf("word 1 = %x, want doc=1 group=1 values=1<<4", l[1])
	}
}

func TestList_Validate(t *testing.T) {
	var good List
	good.Push(0, []Position{0, 1})
	good.Push(1, []Position{0})
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() on well-formed list: %v", err)
	}

	bad := List{pack(0, 0, 0)}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() did not reject a zero-bitmap word")
	}

	unsorted := List{pack(1, 0, 1), pack(0, 0, 1)}
	if err := unsorted.Validate(); err == nil {
		t.Error("Validate() did not reject an out-of-order list")
	}
}

func TestNewAligned(t *testing.T) {
	l := NewAligned(10)
	if len(l) != 10 {
		t.Fatalf("NewAligned(10) has len %d, want 10", len(l))
	}
	if uintptrOf(l)%64 != 0 {
		t.Errorf("NewAligned(10) backing array is not 64-byte aligned")
	}
}

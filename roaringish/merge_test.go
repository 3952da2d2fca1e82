package roaringish

import "testing"

func TestMergeResults(t *testing.T) {
	primary := List{
		pack(0, 0, 0b0001),
		pack(1, 2, 0b0010),
	}
	carry := List{
		pack(0, 0, 0b0100), // same key as primary[0]: bitmaps OR together
		pack(0, 1, 0b1000), // new key, inserted in order
	}

	got := MergeResults(primary, carry)
	want := List{
		pack(0, 0, 0b0101),
		pack(0, 1, 0b1000),
		pack(1, 2, 0b0010),
	}

	if len(got) != len(want) {
		t.Fatalf("MergeResults produced %d words, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestMergeResults_ZeroCarryLeavesPrimaryUnchanged(t *testing.T) {
	primary := List{pack(0, 0, 0b0001)}
	carry := List{pack(0, 0, 0)} // OR leaves primary's bits untouched, non-zero

	got := MergeResults(primary, carry)
	if len(got) != 1 || unpackValues(got[0]) != 0b0001 {
		t.Fatalf("MergeResults = %v, want single word with values 0b0001", got)
	}
}

package filewatch

import "testing"

func TestAccumulatorDedupsAndPreservesOrder(t *testing.T) {
	a := NewAccumulator()
	a.Add("b.txt")
	a.Add("a.txt")
	a.Add("b.txt")

	got := a.Paths()
	want := []string{"b.txt", "a.txt"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if a.Len() != 2 {
		t.Errorf("expected Len 2, got %d", a.Len())
	}
}

func TestAccumulatorClear(t *testing.T) {
	a := NewAccumulator()
	a.Add("a.txt")
	a.Clear()
	if a.Len() != 0 {
		t.Errorf("expected empty accumulator after Clear, got %d", a.Len())
	}
	a.Add("a.txt")
	if a.Len() != 1 {
		t.Errorf("expected re-adding after Clear to succeed, got len %d", a.Len())
	}
}

func TestAccumulatorPathsReturnsCopy(t *testing.T) {
	a := NewAccumulator()
	a.Add("a.txt")
	paths := a.Paths()
	paths[0] = "mutated"
	if a.Paths()[0] != "a.txt" {
		t.Error("expected Paths() to return a copy, not the internal slice")
	}
}

package codegen

import "testing"

func TestGenerateRejectsOutOfRangePRN(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Fatal("expected error for PRN 0")
	}
	if _, err := Generate(len(l1caDelay) + 1); err == nil {
		t.Fatal("expected error for PRN beyond table")
	}
}

func TestTableWrapGuardEdges(t *testing.T) {
	table, err := Generate(1)
	if err != nil {
		t.Fatal(err)
	}
	L := table.Len()
	if table.At(0) != table.At(L) {
		t.Errorf("wrap guard at index 0: got %d, want chip L (%d)", table.At(0), table.At(L))
	}
	if table.At(L+1) != table.At(1) {
		t.Errorf("wrap guard at index L+1: got %d, want chip 1 (%d)", table.At(L+1), table.At(1))
	}
}

func TestChipsAreBipolar(t *testing.T) {
	table, err := Generate(5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= table.Len(); i++ {
		if v := table.At(i); v != 1 && v != -1 {
			t.Fatalf("chip %d has non-bipolar value %d", i, v)
		}
	}
}

func TestDistinctPRNsProduceDistinctCode(t *testing.T) {
	a, err := Generate(1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(2)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := 1; i <= a.Len(); i++ {
		if a.At(i) != b.At(i) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("PRN 1 and PRN 2 produced identical code sequences")
	}
}

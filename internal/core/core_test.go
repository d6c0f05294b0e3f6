package core

import (
	"slices"
	"testing"
	"time"
)

type nopSim struct{}

func (nopSim) Name() string   { return "nop" }
func (nopSim) Size() Size     { return Size{W: 1, H: 1} }
func (nopSim) Reset(int64)    {}
func (nopSim) Step()          {}
func (nopSim) Cells() []uint8 { return []uint8{0} }

func TestRegisterIgnoresInvalidEntries(t *testing.T) {
	before := len(Sims())
	Register("", func(map[string]string) Sim { return nopSim{} })
	Register("nil-factory", nil)
	if len(Sims()) != before {
		t.Fatal("invalid registrations must be ignored")
	}
	Register("zz-nop", func(map[string]string) Sim { return nopSim{} })
	names := Names()
	if !slices.IsSorted(names) || !slices.Contains(names, "zz-nop") {
		t.Fatalf("expected sorted names containing zz-nop, got %v", names)
	}
}

func TestFillDiskCoversCenterAndRadius(t *testing.T) {
	g := NewByteGrid(9, 9)
	g.FillDisk(4.5, 4.5, 2, 3)
	cells := g.Cells()
	if cells[g.Index(4, 4)] != 3 {
		t.Fatal("center cell not filled")
	}
	if cells[g.Index(6, 4)] != 3 || cells[g.Index(2, 4)] != 3 {
		t.Fatal("cells at distance 2 should be filled")
	}
	if cells[g.Index(7, 4)] != 0 || cells[g.Index(6, 6)] != 0 {
		t.Fatal("cells beyond the radius should stay empty")
	}

	g.Clear()
	g.FillDisk(0.2, 8.9, 0.01, 5)
	if cells[g.Index(0, 8)] != 5 {
		t.Fatal("tiny disk should still mark its cell")
	}
	g.FillDisk(-3, -3, 1, 7)
	for _, v := range cells {
		if v == 7 {
			t.Fatal("off-grid disk must not write")
		}
	}
}

func TestFixedStepDueCapsCatchUp(t *testing.T) {
	fs := NewFixedStep(10)
	if fs.Interval() != 100*time.Millisecond {
		t.Fatalf("unexpected interval %v", fs.Interval())
	}
	start := time.Unix(100, 0)
	if n := fs.Due(start); n != 1 {
		t.Fatalf("first call should run one primed tick, got %d", n)
	}
	if n := fs.Due(start.Add(250 * time.Millisecond)); n != 2 {
		t.Fatalf("expected 2 ticks after 250ms, got %d", n)
	}
	if n := fs.Due(start.Add(300 * time.Millisecond)); n != 1 {
		t.Fatalf("leftover 50ms plus 50ms should yield one tick, got %d", n)
	}
	if n := fs.Due(start.Add(10 * time.Second)); n != 4 {
		t.Fatalf("catch-up should be capped at 4, got %d", n)
	}
}

func TestSnapshotLookup(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "A", Params: []Parameter{{Key: "x", Value: "1"}}},
		{Name: "B", Params: []Parameter{{Key: "y", Value: "2"}}},
	}}
	if p, ok := snap.Lookup("y"); !ok || p.Value != "2" {
		t.Fatalf("expected y=2, got %+v (%v)", p, ok)
	}
	if _, ok := snap.Lookup("z"); ok {
		t.Fatal("missing key should not be found")
	}
}

package main

import (
	"testing"
	"time"

	"dla/internal/sims/aggregation"

	"github.com/gdamore/tcell/v2"
)

func TestFitKeepsAspect(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH int
		tw, th           int
	}{
		{256, 256, 80, 48, 48, 48},
		{256, 128, 80, 48, 80, 40},
		{10, 10, 4, 4, 4, 4},
		{0, 10, 4, 4, 0, 0},
	}
	for _, c := range cases {
		tw, th := fit(c.w, c.h, c.maxW, c.maxH)
		if tw != c.tw || th != c.th {
			t.Fatalf("fit(%d,%d,%d,%d) = %d,%d want %d,%d", c.w, c.h, c.maxW, c.maxH, tw, th, c.tw, c.th)
		}
	}
}

func newTestViewer(t *testing.T) (*viewer, tcell.SimulationScreen) {
	t.Helper()
	cfg := aggregation.DefaultConfig()
	cfg.Width, cfg.Height = 64, 64
	cfg.Mode = "nearest"
	cfg.Engine.GrowthRate = 20
	world, err := aggregation.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 21)
	return newViewer(screen, world, 30, cfg.Seed), screen
}

func TestViewerDrawsClusterAndStatus(t *testing.T) {
	v, screen := newTestViewer(t)
	v.draw()

	blocks := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r == '▀' {
				blocks++
			}
		}
	}
	if blocks == 0 {
		t.Fatal("expected the seed to be drawn")
	}
	if r, _, _, _ := screen.GetContent(1, 20); r != 'd' {
		t.Fatalf("expected status line to start with the sim name, got %q", r)
	}
}

func TestViewerKeys(t *testing.T) {
	v, _ := newTestViewer(t)
	world := v.sim.(*aggregation.World)

	if !v.handle(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)) {
		t.Fatal("n should keep running")
	}
	if got := world.Engine().Cluster().Size(); got != 21 {
		t.Fatalf("expected one burst of 20, got size %d", got)
	}

	v.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	start := time.Now()
	v.tick(start)
	v.tick(start.Add(time.Second))
	if got := world.Engine().Cluster().Size(); got != 21 {
		t.Fatalf("paused viewer should not grow, got size %d", got)
	}

	v.handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if got := world.Engine().Cluster().Size(); got != 1 {
		t.Fatalf("reset should leave only the seed, got %d", got)
	}
	if v.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("q should stop the viewer")
	}
	if v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatal("escape should stop the viewer")
	}
}

package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"
	"time"

	"dla/internal/app"
	"dla/internal/core"
	"dla/internal/render"
	_ "dla/internal/sims/aggregation"

	"github.com/gdamore/tcell/v2"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type finisher interface {
	Done() bool
}

type viewer struct {
	screen tcell.Screen
	sim    core.Sim
	colors []tcell.Color
	timer  *core.FixedStep
	paused bool
	seed   int64
}

func newViewer(screen tcell.Screen, sim core.Sim, tps int, seed int64) *viewer {
	v := &viewer{screen: screen, sim: sim, timer: core.NewFixedStep(tps), seed: seed}
	if p, ok := sim.(paletteProvider); ok {
		for _, c := range p.Palette() {
			v.colors = append(v.colors, tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		}
	} else {
		v.colors = []tcell.Color{tcell.ColorBlack, tcell.ColorWhite}
	}
	return v
}

func (v *viewer) color(value uint8) tcell.Color {
	if int(value) >= len(v.colors) {
		return v.colors[len(v.colors)-1]
	}
	return v.colors[value]
}

// draw renders two raster rows per terminal row using upper half blocks and
// reserves the last row for status.
func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	rows := h - 1
	if w <= 0 || rows <= 0 {
		v.screen.Show()
		return
	}
	size := v.sim.Size()
	tw, th := fit(size.W, size.H, w, 2*rows)
	blocks := render.Downsample(v.sim.Cells(), size.W, size.H, tw, th)
	bg := v.color(0)
	for y := 0; y+1 < th; y += 2 {
		for x := 0; x < tw; x++ {
			top, bottom := blocks[y*tw+x], blocks[(y+1)*tw+x]
			if top == 0 && bottom == 0 {
				v.screen.SetContent(x, y/2, ' ', nil, tcell.StyleDefault.Background(bg))
				continue
			}
			style := tcell.StyleDefault.Foreground(v.color(top)).Background(v.color(bottom))
			v.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
	drawText(v.screen, 0, h-1, tcell.StyleDefault.Reverse(true), v.status(w))
	v.screen.Show()
}

func (v *viewer) status(width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, " %s seed=%d", v.sim.Name(), v.seed)
	if p, ok := v.sim.(core.ParameterProvider); ok {
		snap := p.Parameters()
		for _, key := range []string{"size", "radius", "dimension"} {
			if param, ok := snap.Lookup(key); ok {
				fmt.Fprintf(&b, " %s=%s", key, param.Value)
			}
		}
	}
	if v.paused {
		b.WriteString(" [paused]")
	}
	if f, ok := v.sim.(finisher); ok && f.Done() {
		b.WriteString(" [done]")
	}
	b.WriteString("  space pause  n step  r reset  s reseed  q quit")
	line := b.String()
	if len(line) < width {
		line += strings.Repeat(" ", width-len(line))
	}
	return line
}

// handle applies a key or resize event and reports whether to keep running.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.paused = !v.paused
		case 'n':
			v.step()
		case 'r':
			v.sim.Reset(v.seed)
		case 's':
			v.seed = time.Now().UnixNano()
			v.sim.Reset(v.seed)
		}
		v.draw()
	case *tcell.EventResize:
		v.screen.Sync()
		v.draw()
	}
	return true
}

func (v *viewer) step() {
	if f, ok := v.sim.(finisher); ok && f.Done() {
		return
	}
	v.sim.Step()
}

func (v *viewer) tick(now time.Time) {
	n := v.timer.Due(now)
	if v.paused {
		return
	}
	for i := 0; i < n; i++ {
		v.step()
	}
}

func (v *viewer) run() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev := <-eventChan:
			if !v.handle(ev) {
				return
			}
		case now := <-ticker.C:
			v.tick(now)
			v.draw()
		}
	}
}

// fit scales a w*h raster into at most maxW*maxH while keeping its aspect.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if maxW*h > maxH*w {
		return max(1, maxH*w/h), maxH
	}
	return maxW, max(1, maxW*h/w)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q (available: %s)", cfg.Sim, strings.Join(core.Names(), ", "))
	}
	opts, err := cfg.Options()
	if err != nil {
		log.Fatal(err)
	}
	sim := factory(opts)
	sim.Reset(cfg.Seed)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	newViewer(screen, sim, cfg.TPS, cfg.Seed).run()
}

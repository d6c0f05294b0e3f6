package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"dla/internal/app"
	"dla/internal/sims/aggregation"
	"dla/internal/stream"
)

//go:embed web
var webFS embed.FS

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	interval := flag.Duration("interval", 100*time.Millisecond, "time between growth bursts")
	cfg := app.NewConfig()
	flags := flag.CommandLine
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the initial cluster")
	flags.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "TOML file with simulation settings")
	flags.Var(&cfg.Sets, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()

	opts, err := cfg.Options()
	if err != nil {
		log.Fatal(err)
	}
	simCfg := aggregation.FromMap(opts)
	simCfg.Seed = cfg.Seed
	world, err := aggregation.NewWithConfig(simCfg)
	if err != nil {
		log.Fatal(err)
	}

	hub := stream.NewHub(world)
	static, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Fatal(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.Handle("/ws", hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := hub.Run(ctx, *interval); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("hub stopped: %v", err)
		}
	}()

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("serving %s on http://localhost%s", world.Name(), *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

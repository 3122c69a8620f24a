// Command pointviz runs the scene server: a Visualizer whose actors are
// streamed to remote viewers over gRPC, with tsweb debug pages on the admin
// address and an optional synthetic scene source.
//
// Usage:
//
//	go run ./cmd/pointviz [flags]
//
// Flags:
//
//	-config     Viewer config JSON (default: config/viewer.defaults.json if present)
//	-listen     gRPC stream listen address
//	-admin      Admin HTTP listen address
//	-viewports  Number of panes
//	-rate       Synthetic frame rate in Hz
//	-grid       Synthetic grid edge length
//	-run        How long the synthetic source runs, e.g. 30s (default: forever)
//	-synthetic  Drive the scene with generated data (default: true)
//	-version    Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/pointviz/internal/config"
	"github.com/banshee-data/pointviz/internal/version"
	"github.com/banshee-data/pointviz/internal/viz"
	"github.com/banshee-data/pointviz/internal/viz/scene"
	"github.com/banshee-data/pointviz/internal/viz/stream"
	"github.com/banshee-data/pointviz/internal/viz/synthetic"
)

var (
	configPath = flag.String("config", "", "Path to viewer config JSON")
	listen     = flag.String("listen", "", "gRPC stream listen address (overrides config)")
	admin      = flag.String("admin", "", "Admin HTTP listen address (overrides config)")
	viewports  = flag.Int("viewports", 0, "Number of panes (overrides config)")
	rate       = flag.Float64("rate", 0, "Synthetic frame rate in Hz (overrides config)")
	grid       = flag.Int("grid", 0, "Synthetic grid edge length (overrides config)")
	run        = flag.String("run", "", "Synthetic run duration, e.g. 30s (overrides config)")
	synth      = flag.Bool("synthetic", true, "Drive the scene with generated data")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

// loadConfig reads the config file, falling back to built-in defaults when
// no path is given and the defaults file is absent, then applies flag
// overrides.
func loadConfig() (*config.ViewerConfig, error) {
	path := *configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			path = config.DefaultConfigPath
		}
	}

	cfg := config.DefaultViewerConfig()
	if path != "" {
		loaded, err := config.LoadViewerConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Printf("Loaded viewer config from %s", path)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = listen
		case "admin":
			cfg.AdminAddr = admin
		case "viewports":
			cfg.Viewports = viewports
		case "rate":
			cfg.FrameRate = rate
		case "grid":
			cfg.GridSize = grid
		case "run":
			cfg.SyntheticRun = run
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		return
	}
	log.Printf("Starting %s", version.String())

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	mem := scene.NewMemory(cfg.GetViewports())
	renderer := stream.NewRenderer(stream.ConfigFromViewer(cfg), mem)
	v := viz.New(renderer, viz.OptionsFromConfig(cfg))
	renderer.SetView(v.View)

	if err := renderer.Start(); err != nil {
		log.Fatalf("Failed to start stream renderer: %v", err)
	}
	defer renderer.Stop()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Admin server with the tsweb debug pages.
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		v.AttachAdminRoutes(mux)
		server := &http.Server{
			Addr:    cfg.GetAdminAddr(),
			Handler: mux,
		}

		go func() {
			log.Printf("Admin server listening on %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Admin server error: %v", err)
			}
		}()

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Admin server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("Admin server force close error: %v", err)
			}
		}
		log.Printf("Admin server stopped")
	}()

	if *synth {
		wg.Add(1)
		go func() {
			defer wg.Done()

			gen := synthetic.NewGeneratorFromConfig(cfg)
			driver := synthetic.NewDriver(gen, v)
			driver.NormalsLevel = cfg.GetNormalsLevel()
			driver.NormalsScale = cfg.GetNormalsScale()
			rgb := cfg.GetDefaultShapeColor()
			driver.ShapeColor = viz.Color{R: rgb[0], G: rgb[1], B: rgb[2]}

			if err := driver.Run(ctx, cfg.GetSyntheticRun()); err != nil {
				log.Printf("Synthetic source failed: %v", err)
			}
		}()
	}

	log.Printf("Server ready, waiting for connections...")
	<-ctx.Done()
	log.Printf("Shutting down...")

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// Command gsviz renders a G-code job as it would look part way through a run.
//
// It parses the file, replays controller progress up to -at of the job with
// the received-lines cursor running -lookahead lines ahead of the machine,
// and writes a top-down preview PNG.
//
//	gsviz -in job.nc -out progress.png -at 0.5
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/Sienci-Labs/gsender-sub000/internal/toolpath"
	"github.com/Sienci-Labs/gsender-sub000/preview"
	"github.com/Sienci-Labs/gsender-sub000/session"
	"github.com/Sienci-Labs/gsender-sub000/worker"
)

func main() {
	var (
		input     = flag.String("in", "", "G-code file")
		output    = flag.String("out", "progress.png", "output file")
		at        = flag.Float64("at", 0.5, "job progress to show, 0..1")
		lookahead = flag.Int("lookahead", 15, "lines the controller buffers ahead of the machine")
		rotary    = flag.Bool("rotary", false, "force rotary tracking")
		laser     = flag.Bool("laser", false, "treat the job as a laser job")
		window    = flag.Int("window", visualizer.DefaultWindowSize, "rotary window size")
		size      = flag.Int("size", 768, "image size in pixels")
		thumb     = flag.Int("thumb", 0, "scale the output to this width (0 keeps the size)")
		verbose   = flag.Bool("v", false, "log tracker events")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("missing -in")
	}
	if *verbose {
		visualizer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := worker.NewLoader(worker.WithParseOptions(toolpath.WithLaser(*laser)))
	defer loader.Close()
	res := <-loader.Load(ctx, filepath.Base(*input), data)
	if res.Err != nil {
		log.Fatalf("Failed to parse: %v", res.Err)
	}
	geom := res.Geometry

	trackerOpts := []visualizer.Option{visualizer.WithWindowSize(*window)}
	if *rotary {
		trackerOpts = append(trackerOpts, visualizer.WithRotary(true))
	}
	rec := preview.NewRecorder()
	s := session.New(rec, session.WithTrackerOptions(trackerOpts...))
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	if err := s.Load(ctx, geom, nil); err != nil {
		log.Fatalf("Failed to load toolpath: %v", err)
	}

	lines := len(geom.Frames) - 1
	target := int(min(max(*at, 0), 1) * float64(lines))
	for running := 0; running <= target; running++ {
		received := min(running+*lookahead, lines)
		if err := s.Progress(ctx, received, running); err != nil {
			log.Fatalf("Failed to update progress: %v", err)
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		log.Fatalf("Failed to read session stats: %v", err)
	}
	if p, ok, err := s.Location(ctx); err == nil && ok {
		log.Printf("Tool at X%.3f Y%.3f Z%.3f", p.X, p.Y, p.Z)
	}

	o := preview.DefaultOptions()
	o.Width, o.Height = *size, *size
	o.Label = preview.ProgressLabel(target, lines)
	img, err := rec.Render(o)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if *thumb > 0 {
		img = preview.Thumbnail(img, *thumb)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if err := preview.WritePNG(f, img); err != nil {
		f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	cancel()
	<-done
	log.Printf("Preview saved to %s (%s, %d uploads in %d batches)\n", *output, o.Label, st.Uploads, st.Batches)
}

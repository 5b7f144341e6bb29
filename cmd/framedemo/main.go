// Command framedemo drives the render pipeline end to end.
//
// Several producer goroutines draw a scene into the draw queue while the
// render loop composites frames. With the software backend the last
// presented frame is written as a PNG.
//
//	framedemo -scale=xbrz3 -frames=30 -out=frame.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/framekit"
	"github.com/gogpu/framekit/backend"
	"github.com/gogpu/framekit/backend/software"
	"github.com/gogpu/framekit/compositor"
	"github.com/gogpu/framekit/drawqueue"
	"github.com/gogpu/framekit/engine"
	"github.com/gogpu/framekit/fade"
)

type options struct {
	backend   string
	scale     compositor.Flags
	frames    int
	producers int
	fadeIn    time.Duration
	out       string
}

func main() {
	var (
		backendName = flag.String("backend", backend.NameSoftware, "presentation backend, empty for the best registered")
		scale       = flag.String("scale", "none", "scaler: none, bilinear, biadapt, biadaptadv, triscan, hq, xbrz3, xbrz4")
		frames      = flag.Int("frames", 60, "frames to render after the scene is drawn")
		producers   = flag.Int("producers", 4, "producer goroutines")
		fadeIn      = flag.Duration("fade", 250*time.Millisecond, "fade-in duration")
		out         = flag.String("out", "framedemo.png", "output PNG (software backend only)")
		debug       = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	framekit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	flags, ok := compositor.ParseScale(*scale)
	if !ok {
		log.Fatalf("unknown scaler %q", *scale)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, options{
		backend:   *backendName,
		scale:     flags,
		frames:    *frames,
		producers: *producers,
		fadeIn:    *fadeIn,
		out:       *out,
	})
	stop()
	if err != nil {
		log.Fatalf("framedemo: %v", err)
	}
}

func run(ctx context.Context, o options) error {
	if o.producers < 1 {
		return fmt.Errorf("producers %d: %w", o.producers, framekit.ErrInvalidArgument)
	}

	cfg := engine.DefaultConfig()
	cfg.Video.Backend = o.backend
	cfg.Video.Flags |= o.scale
	cfg.Video.Title = "framedemo"

	sys, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer sys.Shutdown()
	if err := sys.Init(); err != nil {
		return err
	}

	sc, err := newScene(sys.Assets(), cfg.Video.Width, cfg.Video.Height, o.producers)
	if err != nil {
		return err
	}

	sys.Fade().FadeScreen(fade.ToBlack, 0)
	sys.Fade().FadeScreen(fade.ToColor, o.fadeIn)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i := range o.producers {
		g.Go(func() error {
			return sc.produce(gctx, sys.Queue(), i)
		})
	}
	var drawn atomic.Bool
	produced := make(chan error, 1)
	go func() {
		err := g.Wait()
		drawn.Store(true)
		produced <- err
	}()

	start := time.Now()
	rendered := 0
	runErr := sys.Run(ctx, func() engine.FrameOptions {
		if drawn.Load() && !sys.Fade().Fading() {
			rendered++
			if rendered >= o.frames {
				cancel()
			}
		}
		return sc.frameOptions()
	})

	frame := lastFrame(sys.Compositor().Backend())
	stats := sys.Stats()
	// Closing the queue releases producers still blocked on a full queue.
	sys.Shutdown()
	prodErr := <-produced

	if runErr != nil {
		return runErr
	}
	if prodErr != nil && !errors.Is(prodErr, drawqueue.ErrClosed) && !errors.Is(prodErr, context.Canceled) {
		return prodErr
	}

	framekit.Logger().Info("framedemo finished",
		"frames", stats.Frames,
		"skipped", stats.Skipped,
		"commands", stats.Commands,
		"blocked", stats.Queue.Blocked,
		"glyph_hit_rate", stats.Glyphs.HitRate(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if frame == nil || o.out == "" {
		return nil
	}
	return writePNG(o.out, frame)
}

// lastFrame returns the last presented frame of backends that keep one.
func lastFrame(b backend.Backend) image.Image {
	sw, ok := b.(*software.Backend)
	if !ok {
		return nil
	}
	if f := sw.Frame(); f != nil {
		return f
	}
	return nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path) // #nosec G304 -- path is a command-line flag
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

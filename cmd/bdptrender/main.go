// Command bdptrender is the CLI driver wiring scene loading, the
// bidirectional render loop, and output together. Flags are built on
// cobra/pflag, and golang.org/x/sync/errgroup drives the per-iteration
// parallel fan-out and joins its workers. The workers ignore the group's
// context and always return nil, so no worker is cancelled early.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kestrelrender/bdpt/internal/imageio"
	"github.com/kestrelrender/bdpt/internal/telemetry"
	"github.com/kestrelrender/bdpt/pkg/framebuffer"
	"github.com/kestrelrender/bdpt/pkg/integrator"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/preview"
	"github.com/kestrelrender/bdpt/pkg/rng"
	"github.com/kestrelrender/bdpt/pkg/sceneio"
)

type options struct {
	scenePath       string
	outputPath      string
	iterations      int
	lightPaths      int
	maxDepth        int
	minDepth        int
	seed            uint64
	previewAddr     string
	pyramidDir      string
	verbose         bool
	checkpointEvery int

	enableHitting     bool
	enableConnections bool
	enableLightTracer bool
	numConnections    int
	numShadowRays     int
}

func main() {
	opts := &options{}
	root := &cobra.Command{
		Use:   "bdptrender",
		Short: "Render a scene with bidirectional path tracing and multiple importance sampling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.scenePath, "scene", "", "path to a PBRT-lite scene description (required)")
	flags.StringVar(&opts.outputPath, "output", "render.png", "output PNG path")
	flags.IntVar(&opts.iterations, "iterations", 64, "number of full render iterations")
	flags.IntVar(&opts.lightPaths, "light-paths", 0, "light subpaths per iteration (default: width*height)")
	flags.IntVar(&opts.maxDepth, "max-depth", 8, "maximum subpath vertex count for both camera and light walks")
	flags.IntVar(&opts.minDepth, "min-depth", 0, "minimum bounce depth a strategy must reach before it's allowed to contribute")
	flags.Uint64Var(&opts.seed, "seed", 1, "base RNG seed")
	flags.StringVar(&opts.previewAddr, "preview-addr", "", "if set, serve live-preview events on this TCP address")
	flags.StringVar(&opts.pyramidDir, "pyramid-dir", "", "if set, write one PNG per (s,t) technique into this directory")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable human-readable development logging")
	flags.IntVar(&opts.checkpointEvery, "checkpoint-every", 8, "write the output PNG every N iterations")
	flags.BoolVar(&opts.enableHitting, "enable-hitting", true, "let camera subpaths that directly hit an emitter contribute")
	flags.BoolVar(&opts.enableConnections, "enable-connections", true, "let camera vertices connect bidirectionally to the light-vertex cache")
	flags.BoolVar(&opts.enableLightTracer, "enable-light-tracer", true, "splat light subpath vertices directly onto the lens")
	flags.IntVar(&opts.numConnections, "num-connections", 1, "bidirectional connection attempts per eligible camera vertex")
	flags.IntVar(&opts.numShadowRays, "num-shadow-rays", 1, "next-event estimation samples per eligible camera vertex")
	root.MarkFlagRequired("scene")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	logger, err := buildLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := os.Open(opts.scenePath)
	if err != nil {
		return fmt.Errorf("opening scene file: %w", err)
	}
	defer f.Close()

	scene, err := sceneio.LoadPBRTLite(f)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}
	logger.Infow("scene loaded",
		"shapes", len(scene.Scene.Shapes),
		"emitters", len(scene.Scene.Emitters),
		"width", scene.Camera.Width,
		"height", scene.Camera.Height,
	)

	var sink *preview.Sink
	if opts.previewAddr != "" {
		sink, err = preview.NewSink(opts.previewAddr)
		if err != nil {
			return fmt.Errorf("starting preview sink: %w", err)
		}
		defer sink.Close()
		logger.Infow("preview sink listening", "addr", opts.previewAddr, "run_id", sink.RunID())
	}

	lightPaths := opts.lightPaths
	if lightPaths <= 0 {
		lightPaths = scene.Camera.Width * scene.Camera.Height
	}

	var pyramid *framebuffer.Pyramid
	if opts.pyramidDir != "" {
		pyramid = framebuffer.NewPyramid(scene.Camera.Width, scene.Camera.Height)
		if err := os.MkdirAll(opts.pyramidDir, 0o755); err != nil {
			return fmt.Errorf("creating pyramid directory: %w", err)
		}
	}

	fb := framebuffer.New(scene.Camera.Width, scene.Camera.Height)
	base := &integrator.BidirBase{
		Scene:             scene.Scene,
		Background:        scene.Scene,
		Camera:            scene.Camera,
		Selector:          scene.Scene.Selector,
		MaxDepth:          opts.maxDepth,
		MinDepth:          opts.minDepth,
		EnableHitting:     opts.enableHitting,
		EnableConnections: opts.enableConnections,
		EnableLightTracer: opts.enableLightTracer,
		NumConnections:    opts.numConnections,
		NumShadowRays:     opts.numShadowRays,
		Pyramid:           pyramid,
	}

	workers := runtime.GOMAXPROCS(0)
	start := time.Now()

	for iter := 0; iter < opts.iterations; iter++ {
		if err := ctx.Err(); err != nil {
			logger.Warnw("render interrupted", "iteration", iter)
			break
		}
		fb.StartIteration()
		if sink != nil {
			sink.Publish(preview.Event{Iteration: fb.Iteration(), Kind: "iteration_start"})
		}

		cache := pathcache.NewCache(lightPaths, opts.maxDepth)
		if err := fillLightCache(ctx, cache, base, lightPaths, opts.maxDepth, opts.seed, uint64(iter), workers); err != nil {
			return fmt.Errorf("filling light-path cache: %w", err)
		}

		if err := renderIteration(ctx, base, fb, cache, scene.Camera.Width, scene.Camera.Height, opts.seed, uint64(iter), workers); err != nil {
			return fmt.Errorf("rendering iteration %d: %w", iter, err)
		}

		if opts.enableLightTracer {
			integrator.SplatLightTracerPaths(scene.Scene, scene.Camera, cache, fb, pyramid, opts.enableConnections, opts.numConnections)
		}
		fb.EndIteration()

		elapsed := time.Since(start).Seconds()
		if sink != nil {
			sink.Publish(preview.Event{Iteration: fb.Iteration(), Kind: "iteration_end", ElapsedSecs: elapsed})
		}
		logger.Debugw("iteration complete", "iteration", iter, "elapsed_secs", elapsed)

		if opts.checkpointEvery > 0 && (iter+1)%opts.checkpointEvery == 0 {
			if err := writeOutput(opts.outputPath, fb); err != nil {
				logger.Warnw("checkpoint write failed", "error", err)
			}
		}
	}

	if err := writeOutput(opts.outputPath, fb); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.Infow("render complete", "iterations", opts.iterations, "output", opts.outputPath, "elapsed_secs", time.Since(start).Seconds())

	if pyramid != nil {
		if err := writePyramid(opts.pyramidDir, pyramid); err != nil {
			return fmt.Errorf("writing technique pyramid: %w", err)
		}
	}
	return nil
}

func buildLogger(verbose bool) (telemetry.Logger, error) {
	if verbose {
		return telemetry.NewDevelopment()
	}
	return telemetry.New()
}

// fillLightCache runs the per-iteration light-subpath generation in
// parallel worker shards and merges each shard's local cache into the
// shared one once every shard finishes. The shards always return nil and
// do not watch a context; errgroup here only waits for all of them.
func fillLightCache(ctx context.Context, cache *pathcache.Cache, base *integrator.BidirBase, totalPaths, maxDepth int, seed, iteration uint64, workers int) error {
	if workers < 1 {
		workers = 1
	}
	shards := make([]*pathcache.Cache, workers)
	g, _ := errgroup.WithContext(ctx)

	perWorker := (totalPaths + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		offset := w * perWorker
		count := perWorker
		if offset+count > totalPaths {
			count = totalPaths - offset
		}
		if count <= 0 {
			continue
		}
		shards[w] = pathcache.NewCache(count, maxDepth)
		g.Go(func() error {
			integrator.FillLightPathCache(shards[w], base.Scene, base.Background, base.Selector, maxDepth, rng.LightPathSeed(seed, 0, 0)^iteration, offset, count)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, shard := range shards {
		if shard != nil {
			cache.Merge(shard)
		}
	}
	return nil
}

// renderIteration splits the image into row bands, one per worker, and
// runs BidirBase.EvaluatePixel across each pixel, splatting the result
// into fb. It depends on cache already being fully populated for this
// iteration.
func renderIteration(ctx context.Context, base *integrator.BidirBase, fb *framebuffer.FrameBuffer, cache *pathcache.Cache, width, height int, seed, iteration uint64, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, _ := errgroup.WithContext(ctx)
	rowsPerWorker := (height + workers - 1) / workers

	for w := 0; w < workers; w++ {
		yStart := w * rowsPerWorker
		yEnd := yStart + rowsPerWorker
		if yEnd > height {
			yEnd = height
		}
		if yStart >= yEnd {
			continue
		}
		g.Go(func() error {
			for y := yStart; y < yEnd; y++ {
				for x := 0; x < width; x++ {
					src := rng.New(rng.PixelSeed(seed, x, y, int(iteration)), 0)
					jx, jy := src.Float64Pair()
					color := base.EvaluatePixel(float64(x)+jx, float64(y)+jy, cache, src)
					fb.AddSample(x, y, color)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func writeOutput(path string, fb *framebuffer.FrameBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return imageio.WritePNG(f, fb)
}

func writePyramid(dir string, pyramid *framebuffer.Pyramid) error {
	for _, key := range pyramid.Techniques() {
		name := fmt.Sprintf("%s/technique_c%d_l%d.png", dir, key.CameraLen, key.LightLen)
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		err = imageio.WritePNG(f, pyramid.Weighted(key.CameraLen, key.LightLen))
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Command nodemat renders the demo scene variants.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/netisu/nodemat"
	"github.com/netisu/nodemat/preview"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	variant string
	config  string
	vv      bool
	v       bool
	q       bool
	log     *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:          "nodemat",
		Short:        "Render 3D scenes with shader-expression materials",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.log = nodemat.NewLogger(os.Stderr, nodemat.LevelFromFlags(o.vv, o.v, o.q))
			slog.SetDefault(o.log)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&o.variant, "variant", "knight", "built-in variant name")
	f.StringVarP(&o.config, "config", "c", "", "variant file (.yaml or .toml); overrides --variant")
	f.BoolVar(&o.vv, "vv", false, "debug logging")
	f.BoolVarP(&o.v, "verbose", "v", false, "info logging")
	f.BoolVarP(&o.q, "quiet", "q", false, "errors only")

	root.AddCommand(newRenderCmd(o), newRunCmd(o), newInspectCmd(o), newPresetsCmd(o), newVariantsCmd())
	return root
}

func (o *options) loadVariant() (nodemat.Variant, error) {
	if o.config != "" {
		return nodemat.LoadVariant(o.config)
	}
	return nodemat.BuiltinVariant(o.variant)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRenderCmd(o *options) *cobra.Command {
	var out string
	var timeout time.Duration
	var at time.Duration
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Load the model and write a single frame as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := o.loadVariant()
			if err != nil {
				return err
			}
			surface := nodemat.NewSoftwareSurface(v.Width, v.Height, v.Supersample)
			app, err := nodemat.NewApp(v, surface, o.log)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
			defer cancelTimeout()
			if err := app.WaitLoaded(ctx); err != nil {
				return errors.Wrap(err, "waiting for model")
			}
			if err := app.RunFrame(at); err != nil {
				return err
			}
			if err := writePNG(surface, out); err != nil {
				return err
			}
			o.log.Info("wrote frame", "path", out)
			return app.Err()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "frame.png", "output PNG")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up waiting for the model after this long")
	cmd.Flags().DurationVar(&at, "time", 0, "elapsed time seen by time-varying materials")
	return cmd
}

func writePNG(surface *nodemat.SoftwareSurface, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create frame file")
	}
	defer f.Close()
	if err := surface.EncodePNG(f); err != nil {
		return errors.Wrap(err, "encode frame")
	}
	return f.Close()
}

func newRunCmd(o *options) *cobra.Command {
	var frames int
	var outDir string
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the render loop, optionally serving a browser preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := o.loadVariant()
			if err != nil {
				return err
			}
			if watch && o.config == "" {
				return errors.New("--watch needs --config")
			}
			surface := nodemat.NewSoftwareSurface(v.Width, v.Height, v.Supersample)
			app, err := nodemat.NewApp(v, surface, o.log)
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return errors.Wrap(err, "frame directory")
				}
			}

			ctx, cancel := signalContext()
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				host := nodemat.TickerHost{FPS: v.FPS, Frames: frames}
				err := app.Run(ctx, host)
				if addr == "" {
					// nothing else to wait for
					cancel()
				}
				return err
			})
			if outDir != "" {
				g.Go(func() error {
					return dumpFrames(ctx, surface, outDir, v.FPS)
				})
			}
			if addr != "" {
				srv := preview.New(surface, app, o.log)
				g.Go(func() error {
					return srv.ListenAndServe(ctx, addr)
				})
			}
			if watch {
				g.Go(func() error {
					return nodemat.WatchPresets(ctx, o.config, app, o.log)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "stop after this many frames (0 runs until interrupted)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write frames into this directory")
	cmd.Flags().StringVar(&addr, "preview", "", "serve a browser preview on this address, e.g. :8080")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload presets when the --config file changes")
	return cmd
}

// dumpFrames writes each new frame once, polling at the loop's rate.
func dumpFrames(ctx context.Context, surface *nodemat.SoftwareSurface, dir string, fps int) error {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		n := surface.Frames()
		if n == last {
			continue
		}
		last = n
		if err := writePNG(surface, filepath.Join(dir, fmt.Sprintf("frame%05d.png", n))); err != nil {
			return err
		}
	}
}

func newInspectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <asset>",
		Short: "Print an asset's meshes and the material each would be bound to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := o.loadVariant()
			if err != nil {
				return err
			}
			v.Model.Path = ""
			app, err := nodemat.NewApp(v, nodemat.NewSoftwareSurface(1, 1, 1), o.log)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			res, err := app.Loader.Load(args[0]).Wait(ctx)
			if err != nil {
				return err
			}
			if res.Err != nil {
				return res.Err
			}

			bound := make(map[*nodemat.Node]nodemat.Binding)
			for _, b := range nodemat.Bind(res.Root, app.Rules) {
				bound[b.Node] = b
			}
			box := res.Root.BoundingBox()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "MESH\tTRIANGLES\tAUTHORED\tBOUND\tREASON\n")
			for _, n := range res.Root.Meshes() {
				authored := ""
				if n.Authored != nil {
					authored = n.Authored.Name
				}
				material, reason := "(unchanged)", "-"
				if b, ok := bound[n]; ok {
					material, reason = b.Material.Name, b.Reason.String()
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", n.Name, len(n.Mesh.Triangles), authored, material, reason)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bounds min %+v max %+v center %+v\n", box.Min, box.Max, box.Center())
			return nil
		},
	}
}

func newPresetsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the preset table of the selected variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := o.loadVariant()
			if err != nil {
				return err
			}
			table, err := v.PresetTable()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "NAME\tANGLE\tOFFSET\tSCALE\tCOLOR A\tCOLOR B\n")
			for _, name := range table.Names() {
				p, _ := table.Lookup(name)
				fmt.Fprintf(w, "%s\t%.4f\t%g\t%g\t%s\t%s\n", name, p.Angle, p.Offset, p.Scale, p.ColorA.Hex(), p.ColorB.Hex())
			}
			p := nodemat.DefaultPreset
			fmt.Fprintf(w, "(default)\t%.4f\t%g\t%g\t%s\t%s\n", p.Angle, p.Offset, p.Scale, p.ColorA.Hex(), p.ColorB.Hex())
			return w.Flush()
		},
	}
}

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List built-in variants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range nodemat.BuiltinVariantNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

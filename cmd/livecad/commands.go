package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3/obj3/thread"
	"github.com/soypat/livecad/internal/config"
	"github.com/soypat/livecad/pipeline"
	"github.com/soypat/livecad/recipe"
	"github.com/soypat/livecad/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newParamsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List the parameters of the selected recipe",
		Long: `List the parameter declarations of the selected recipe together with the
values resolved from presets, configuration and --set overrides.

A recipe file is Go source declaring

	func Parameters() []livecad.Parameter
	func Generate(v livecad.Values) (*livecad.Mesh, error)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := recipe.Open(a.recipeRef())
			if err != nil {
				return err
			}
			overrides, err := a.overrides(a.cfg)
			if err != nil {
				return err
			}
			params := gen.Parameters()
			values, err := livecad.Resolve(params, overrides)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVALUE\tDEFAULT\tMIN\tMAX\tSTEP")
			for _, p := range params {
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n", p.Name, values[p.Name], p.Default, p.Min, p.Max, p.Step())
			}
			return w.Flush()
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		output, format, material string
		offset, weld             float64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the part and export it as STL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				a.cfg.Output.Path = output
			}
			if flags.Changed("format") {
				a.cfg.Output.Format = format
			}
			if flags.Changed("offset") {
				a.cfg.Offset = offset
			}
			if flags.Changed("weld") {
				a.cfg.Weld = weld
			}
			if flags.Changed("material") {
				a.cfg.Material = material
			}
			f, err := render.ParseFormat(a.cfg.Output.Format)
			if err != nil {
				return err
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			if err := s.Export(a.cfg.Output.Path, f); err != nil {
				return err
			}
			printStats(cmd, a.cfg.Output.Path, s.Mesh())
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", "", "Output STL file")
	fl.StringVar(&format, "format", "", "STL encoding: binary or ascii")
	fl.Float64Var(&offset, "offset", 0, "Surface offset along vertex normals [mm]")
	fl.Float64Var(&weld, "weld", 0, "Merge vertices closer than this distance [mm], 0 disables")
	fl.StringVar(&material, "material", "", "Shrinkage compensation material: pla, petg, abs or none")
	return cmd
}

func printStats(cmd *cobra.Command, path string, m *livecad.Mesh) {
	bb := m.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d vertices, %d triangles, bounds (%.3f, %.3f, %.3f) to (%.3f, %.3f, %.3f)\n",
		path, m.NumVertices(), m.NumFaces(),
		bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z)
}

func newPreviewCmd(a *app) *cobra.Command {
	var (
		output        string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a PNG preview of the part",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				a.cfg.Preview.Path = output
			}
			if flags.Changed("width") {
				a.cfg.Preview.Width = width
			}
			if flags.Changed("height") {
				a.cfg.Preview.Height = height
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			view := render.DefaultView()
			view.Width, view.Height = a.cfg.Preview.Width, a.cfg.Preview.Height
			if err := render.SavePreview(a.cfg.Preview.Path, s.Mesh(), view); err != nil {
				return err
			}
			a.logger.Info("preview saved", zap.String("path", a.cfg.Preview.Path))
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Preview.Path)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", "", "Output PNG file")
	fl.IntVar(&width, "width", 0, "Image width in pixels")
	fl.IntVar(&height, "height", 0, "Image height in pixels")
	return cmd
}

func newProfileCmd(a *app) *cobra.Command {
	var (
		output string
		theta  float64
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Plot the thread radius along the bolt axis",
		Long: `Plot the thread surface radius against axial position along the
generatrix at angle --theta. The recipe must declare the hexbolt thread
parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := recipe.Open(a.recipeRef())
			if err != nil {
				return err
			}
			overrides, err := a.overrides(a.cfg)
			if err != nil {
				return err
			}
			values, err := livecad.Resolve(gen.Parameters(), overrides)
			if err != nil {
				return err
			}
			for _, name := range []string{thread.ParamDiameter, thread.ParamLength, thread.ParamPitch, thread.ParamResolution} {
				if _, ok := values[name]; !ok {
					return fmt.Errorf("recipe has no %q parameter", name)
				}
			}
			h := thread.ParmsFromValues(values).Helix()
			z, r, err := h.ProfileSamples(theta)
			if err != nil {
				return &livecad.GenerationError{Values: values, Err: err}
			}
			title := fmt.Sprintf("D=%g P=%g", h.MajorDiameter, h.Pitch)
			if err := render.SaveProfilePlot(output, title, z, r); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "profile.png", "Output image file, extension selects the format")
	cmd.Flags().Float64Var(&theta, "theta", 0, "Generatrix angle [rad]")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Export every part listed in a YAML job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := pipeline.LoadJobs(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			results, err := pipeline.RunBatch(ctx, list, jobs, a.logger)
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = "FAILED"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s -> %s (%d triangles, %s)\n",
					status, r.Job.Name, r.Job.Output, r.Faces, r.Elapsed.Round(time.Millisecond))
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Maximum concurrent jobs, 0 uses all CPUs")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate and export whenever the recipe or configuration changes",
		Long: `Watch the recipe source file and the configuration file. When either
settles after a change the part is regenerated and exported to the
configured output. A change that fails to load or generate is logged and
the previous export is left in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			ref := a.recipeRef()
			if isFile(ref) {
				files = append(files, ref)
			}
			if isFile(a.cfgFile) {
				files = append(files, a.cfgFile)
			}
			if len(files) == 0 {
				return fmt.Errorf("nothing to watch: recipe %q is builtin and %s does not exist", ref, a.cfgFile)
			}
			f, err := render.ParseFormat(a.cfg.Output.Format)
			if err != nil {
				return err
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			if err := s.Export(a.cfg.Output.Path, f); err != nil {
				return err
			}
			recipeAbs, err := filepath.Abs(ref)
			if err != nil {
				return err
			}
			onChange := func(ctx context.Context, path string) {
				log := a.logger.With(zap.String("path", path))
				if path == recipeAbs {
					r, err := recipe.LoadFile(path)
					if err != nil {
						log.Error("recipe reload failed", zap.Error(err))
						return
					}
					err = s.SetRecipe(r)
					if err != nil {
						log.Error("regeneration failed", zap.Error(err))
						return
					}
				} else if err := a.reloadConfig(s); err != nil {
					log.Error("config reload failed", zap.Error(err))
					return
				}
				if err := s.Export(a.cfg.Output.Path, f); err != nil {
					log.Error("export failed", zap.Error(err))
				}
			}
			w, err := pipeline.NewWatcher(files, a.cfg.GetDebounce(), a.logger, onChange)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
			a.logger.Info("watching", zap.Strings("files", files))
			<-ctx.Done()
			return nil
		},
	}
	return cmd
}

// reloadConfig re-reads the configuration file and applies its parameter
// and post-processing values to s. a.cfg is only updated once s accepts them.
func (a *app) reloadConfig(s *pipeline.Session) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	next := *a.cfg
	next.Preset, next.Parameters = cfg.Preset, cfg.Parameters
	next.Offset, next.Weld, next.Material = cfg.Offset, cfg.Weld, cfg.Material
	overrides, err := a.overrides(&next)
	if err != nil {
		return err
	}
	pp, err := post(&next)
	if err != nil {
		return err
	}
	if err := s.Update(overrides, pp); err != nil {
		return err
	}
	*a.cfg = next
	return nil
}

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List ISO metric thread presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIAMETER\tPITCH\tHEAD F2F\tHEAD HEIGHT")
			for _, iso := range thread.ISOPresets() {
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%.3f\n", iso.Name, iso.D, iso.P, iso.HeadSize(), iso.HexHeight())
			}
			return w.Flush()
		},
	}
}

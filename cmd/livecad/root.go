package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3/obj3/thread"
	"github.com/soypat/livecad/helpers/matter"
	"github.com/soypat/livecad/internal/config"
	"github.com/soypat/livecad/internal/logging"
	"github.com/soypat/livecad/pipeline"
	"github.com/soypat/livecad/recipe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	recipe  string
	preset  string
	set     []string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "livecad",
		Short: "Parametric part mesh generator",
		Long: `livecad builds triangle meshes of parametric parts from recipes.

The default recipe is a hex head bolt with a helical thread. Recipes may also
be Go source files interpreted at runtime, see "livecad params --help".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := cfg.Log.Level
			if a.verbose {
				level = "debug"
			}
			a.logger, err = logging.New(level, cfg.Log.Development)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", config.DefaultFile, "Configuration file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVarP(&a.recipe, "recipe", "r", "", "Builtin recipe name or recipe source file (overrides config)")
	pf.StringVarP(&a.preset, "preset", "p", "", "ISO thread preset such as M8x1.25 (overrides config)")
	pf.StringArrayVarP(&a.set, "set", "s", nil, "Parameter override name=value, may be repeated")

	root.AddCommand(
		newParamsCmd(a),
		newGenerateCmd(a),
		newPreviewCmd(a),
		newProfileCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newPresetsCmd(a),
	)
	return root
}

// recipeRef returns the recipe selected by flag or configuration.
func (a *app) recipeRef() string {
	if a.recipe != "" {
		return a.recipe
	}
	return a.cfg.Recipe
}

// overrides merges the preset, parameters of cfg and --set flags in
// increasing order of precedence.
func (a *app) overrides(cfg *config.Config) (map[string]float64, error) {
	out := make(map[string]float64)
	preset := cfg.Preset
	if a.preset != "" {
		preset = a.preset
	}
	if preset != "" {
		iso, err := thread.LookupISO(preset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", livecad.ErrParameterValue, err)
		}
		for k, v := range iso.Overrides() {
			out[k] = v
		}
	}
	for k, v := range cfg.Parameters {
		out[k] = v
	}
	for _, kv := range a.set {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("%w: override %q is not name=value", livecad.ErrParameterValue, kv)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", livecad.ErrParameterValue, name, err)
		}
		out[strings.TrimSpace(name)] = f
	}
	return out, nil
}

// post returns the post-processing configured by cfg.
func post(cfg *config.Config) (pipeline.Post, error) {
	material, err := matter.Lookup(cfg.Material)
	if err != nil {
		return pipeline.Post{}, err
	}
	return pipeline.Post{Offset: cfg.Offset, Weld: cfg.Weld, Material: material}, nil
}

// session opens the selected recipe and returns a session that has
// generated its first mesh.
func (a *app) session() (*pipeline.Session, error) {
	gen, err := recipe.Open(a.recipeRef())
	if err != nil {
		return nil, err
	}
	overrides, err := a.overrides(a.cfg)
	if err != nil {
		return nil, err
	}
	pp, err := post(a.cfg)
	if err != nil {
		return nil, err
	}
	s, err := pipeline.NewSession(gen, overrides, pipeline.WithLogger(a.logger), pipeline.WithPost(pp))
	if err != nil {
		return nil, err
	}
	if err := s.Regenerate(); err != nil {
		return nil, err
	}
	return s, nil
}

// isFile reports whether path names an existing regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

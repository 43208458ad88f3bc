package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vitalvas/topk/xconfig"
)

// config holds every driver setting, loadable from (in ascending precedence)
// a struct `default` tag, a YAML file named by --config, a TOPK_-prefixed
// environment variable, and finally an explicit command-line flag.
type config struct {
	Algorithm        string        `yaml:"algorithm" default:"exact"`
	CountType        string        `yaml:"type" default:"uint32"`
	Epsilon          int           `yaml:"epsilon" default:"1024"`
	TokenField       int           `yaml:"token_field" default:"1"`
	FreqField        int           `yaml:"freq_field" default:"2"`
	Support          float64       `yaml:"support" default:"0"`
	AbsoluteSupport  int           `yaml:"absolute_support" default:"-1"`
	Realization      string        `yaml:"realization" default:"streamsummary"`
	LogLevel         string        `yaml:"log_level" default:"info"`
	ProgressInterval time.Duration `yaml:"progress_interval" default:"0s"`
}

// configFlagValue scans raw command-line arguments for --config (or
// --config=path), independent of the kingpin app below. Its value must be
// known before that app is built, since it names the YAML file supplying
// lower-precedence defaults for every other flag.
func configFlagValue(args []string) string {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// loadConfig layers struct defaults, an optional YAML file, and TOPK_-
// prefixed environment variables, then parses args over the result. Command-
// line flags always win: their kingpin Default() is seeded from the layered
// config, but an explicit flag value overrides it during Parse.
func loadConfig(args []string) (config, error) {
	var cfg config

	opts := []xconfig.Option{xconfig.WithEnv("TOPK")}
	if path := configFlagValue(args); path != "" {
		opts = append(opts, xconfig.WithFiles(path))
	}

	if err := xconfig.Load(&cfg, opts...); err != nil {
		return config{}, fmt.Errorf("loading configuration: %w", err)
	}

	app := newApp(&cfg)

	// --config is accepted here purely so it shows up in --help and does
	// not trip kingpin's unknown-flag error; its value was already
	// consumed by configFlagValue above.
	var configFile string
	app.Flag("config", "optional YAML config file providing flag defaults").StringVar(&configFile)

	if _, err := app.Parse(args); err != nil {
		return config{}, fmt.Errorf("parsing flags: %w", err)
	}

	return cfg, nil
}

// newApp declares every driver flag against cfg, using cfg's current
// (struct-default/file/env-layered) values as each flag's Default so that an
// explicit command-line flag is the only thing that can still override them.
func newApp(cfg *config) *kingpin.Application {
	app := kingpin.New("topk", "Streaming heavy-hitters over tab-separated or line-oriented stdin records.")
	app.HelpFlag.Short('h')

	app.Flag("algorithm", "counting algorithm to run").Short('a').
		Default(cfg.Algorithm).
		EnumVar(&cfg.Algorithm, "exact", "spacesaving", "sum", "sum_spacesaving")

	app.Flag("type", "count width").Short('c').
		Default(cfg.CountType).
		EnumVar(&cfg.CountType, "uint16", "uint32", "uint64")

	app.Flag("epsilon", "capacity m for Space-Saving").Short('e').
		Default(fmt.Sprint(cfg.Epsilon)).
		IntVar(&cfg.Epsilon)

	app.Flag("token-field", "1-based token field index in sum mode").Short('t').
		Default(fmt.Sprint(cfg.TokenField)).
		IntVar(&cfg.TokenField)

	app.Flag("freq-field", "1-based frequency field index in sum mode").Short('f').
		Default(fmt.Sprint(cfg.FreqField)).
		IntVar(&cfg.FreqField)

	app.Flag("support", "relative support threshold in [0,1]").Short('s').
		Default(fmt.Sprint(cfg.Support)).
		Float64Var(&cfg.Support)

	app.Flag("absolute-support", "absolute support threshold").Short('S').
		Default(fmt.Sprint(cfg.AbsoluteSupport)).
		IntVar(&cfg.AbsoluteSupport)

	app.Flag("realization", "Space-Saving realization").Short('r').
		Default(cfg.Realization).
		EnumVar(&cfg.Realization, "streamsummary", "priorityqueue")

	app.Flag("log-level", "structured log level").
		Default(cfg.LogLevel).
		StringVar(&cfg.LogLevel)

	app.Flag("progress-interval", "log a progress line on this interval while scanning, 0 disables it").
		Default(cfg.ProgressInterval.String()).
		DurationVar(&cfg.ProgressInterval)

	return app
}

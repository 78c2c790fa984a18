// Package main provides the entry point for the voxcache CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/voxcache/internal/cache"
	"github.com/dgnsrekt/voxcache/tts"
	"github.com/dgnsrekt/voxcache/tts/engines/mock"
	"github.com/dgnsrekt/voxcache/tts/engines/polly"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	engineName string
	voice      string
	format     string
	outPath    string
	cacheDir   string
	retainDays int

	rootCmd = &cobra.Command{
		Use:   "voxcache [TEXT]",
		Short: "Cache synthesized speech on disk",
		Long: "\nVoxcache fronts a text-to-speech backend with a disk cache. Text spoken\n" +
			"once is never synthesized again: repeated requests return the cached\n" +
			"audio file and refresh its last-access time, and entries unused beyond\n" +
			"the retention window are aged out automatically.",
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          execute,
	}
)

// envOptions are runtime knobs read from the environment, mostly for
// debugging.
type envOptions struct {
	Debug   bool   `env:"VOXCACHE_DEBUG"`
	LogFile string `env:"VOXCACHE_LOGFILE"`
}

func setupLog() (func() error, error) {
	opts, err := env.ParseAs[envOptions]()
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	closer := func() error { return nil }
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		log.SetOutput(f)
		log.SetReportTimestamp(true)
		closer = f.Close
	}
	return closer, nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// textFromInput assembles the text to speak from CLI args, or from
// stdin when piped (or when the sole argument is "-").
func textFromInput(args []string) (string, error) {
	fromPipe, err := stdinIsPipe()
	if err != nil {
		return "", err
	}
	if fromPipe || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	if len(args) == 0 {
		return "", errors.New("missing text: pass it as an argument or pipe it on stdin")
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

func execute(_ *cobra.Command, args []string) error {
	text, err := textFromInput(args)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("nothing to speak: input text is empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	synth, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}

	c, err := newCache(cfg, synth)
	if err != nil {
		return err
	}

	path, err := c.Get(ctx, text, cfg.Voice, cfg.Format)
	if err != nil {
		return err
	}

	if outPath != "" {
		return writeArtifact(path, outPath)
	}
	fmt.Println(path)
	return nil
}

// writeArtifact streams the cached audio file to dst ("-" = stdout).
func writeArtifact(path, dst string) error {
	src, err := os.Open(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("unable to open cached artifact: %w", err)
	}
	defer src.Close() //nolint:errcheck

	var w io.Writer = os.Stdout
	if dst != "-" {
		f, err := os.Create(dst) //nolint:gosec
		if err != nil {
			return fmt.Errorf("unable to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("unable to write audio: %w", err)
	}
	return nil
}

// loadConfig resolves the runtime configuration from Viper and fills
// in the default cache folder when none is set.
func loadConfig() (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir, err = defaultCacheDir()
		if err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func defaultCacheDir() (string, error) {
	scope := gap.NewScope(gap.User, "voxcache")
	dir, err := scope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("could not determine cache directory: %w", err)
	}
	return filepath.Join(dir, "audio"), nil
}

func newEngine(ctx context.Context, cfg tts.Config) (tts.Synthesizer, error) {
	switch cfg.Engine {
	case "polly":
		return polly.New(ctx, cfg.Polly)
	case "mock":
		return mock.New(cfg.Mock), nil
	default:
		return nil, fmt.Errorf("%w: %q", tts.ErrUnknownEngine, cfg.Engine)
	}
}

func newCache(cfg tts.Config, synth cache.Synthesizer) (*cache.Cache, error) {
	c, err := cache.New(cfg.CacheDir, cfg.RetainDays, synth)
	if err != nil {
		return nil, err
	}
	if cfg.SweepInterval > 0 {
		c.SetSweepInterval(cfg.SweepInterval)
	}
	return c, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "TTS engine (polly/mock)")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice label to synthesize with")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "audio output format (mp3/ogg_vorbis/pcm)")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "copy the audio to a file instead of printing its path (- for stdout)")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache folder")
	rootCmd.Flags().IntVar(&retainDays, "retain-days", 0, "days an unused entry is kept (0 disables eviction)")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("cache.dir", rootCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("cache.retain_days", rootCmd.Flags().Lookup("retain-days"))

	rootCmd.AddCommand(configCmd, purgeCmd, statsCmd, voicesCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voxcache")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voxcache")}, dirs...)
	}

	if c := os.Getenv("VOXCACHE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voxcache")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voxcache")
	viper.AutomaticEnv()
	tts.SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "voxcache.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

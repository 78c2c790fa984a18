package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# cache settings
cache:
  # cache folder (empty = platform cache dir)
  dir: ""
  # days an unused entry is kept; 0 disables eviction
  retain_days: 30
  # minimum interval between eviction sweeps
  sweep_interval: "48h"

# TTS engine: polly or mock
engine: "polly"
# default voice label
voice: "Joanna"
# audio output format: mp3, ogg_vorbis, or pcm
format: "mp3"

# Amazon Polly engine configuration
polly:
  region: "us-east-1"
  # access_key_id: ""
  # secret_access_key: ""
  requests_per_minute: 50
  timeout: "30s"

# Mock engine configuration (for testing)
mock:
  generation_delay: "0s"
  failure_rate: 0.0
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voxcache config file",
	Long:    "\nEdit the voxcache config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "voxcache config\nvoxcache config --config path/to/voxcache.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voxcache", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("could not write configuration file: %w", err)
	}
	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported config type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable to create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write file: %w", err)
		}

		viper.SetConfigFile(configFile)
	} else if err != nil {
		return fmt.Errorf("unable to stat file: %w", err)
	}

	return nil
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind            string
	databaseURL     string
	defaultLevel    string
	levelDir        string
	maxPlayers      int
	port            int
	prefix          string
	profile         bool
	roomTimeout     time.Duration
	tlsCert         string
	tlsKey          string
	transitionDelay time.Duration
	verbose         bool
	version         bool
	watchLevels     bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.levelDir == "" {
		return errors.New("--level-dir must be provided")
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("invalid max players (must be at least 2): %d", c.maxPlayers)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PUZZLEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "puzzlebox",
		Short:         "A cooperative real-time puzzle party game, played from the browser.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PUZZLEBOX_BIND)")
	fs.StringVar(&cfg.databaseURL, "database-url", "", "postgres connection string for result and snapshot persistence (env: PUZZLEBOX_DATABASE_URL)")
	fs.StringVar(&cfg.defaultLevel, "default-level", "", "level id to use when the client does not pick one (env: PUZZLEBOX_DEFAULT_LEVEL)")
	fs.StringVar(&cfg.levelDir, "level-dir", "config/levels", "directory containing level definition files (env: PUZZLEBOX_LEVEL_DIR)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 8, "maximum connected players per room (env: PUZZLEBOX_MAX_PLAYERS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: PUZZLEBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PUZZLEBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: PUZZLEBOX_PROFILE)")
	fs.DurationVar(&cfg.roomTimeout, "room-timeout", 60*time.Minute, "time before idle rooms are destroyed (env: PUZZLEBOX_ROOM_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: PUZZLEBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: PUZZLEBOX_TLS_KEY)")
	fs.DurationVar(&cfg.transitionDelay, "transition-delay", 3*time.Second, "pause between puzzle completion and the next briefing (env: PUZZLEBOX_TRANSITION_DELAY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PUZZLEBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PUZZLEBOX_VERSION)")
	fs.BoolVar(&cfg.watchLevels, "watch-levels", false, "reload level files when they change on disk (env: PUZZLEBOX_WATCH_LEVELS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("puzzlebox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

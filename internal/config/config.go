package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Discord      DiscordConfig      `mapstructure:"discord"`
	Riot         RiotConfig         `mapstructure:"riot"`
	Player       PlayerConfig       `mapstructure:"player"`
	Tracker      TrackerConfig      `mapstructure:"tracker"`
	Commands     CommandsConfig     `mapstructure:"commands"`
	Housekeeping HousekeepingConfig `mapstructure:"housekeeping"`
	Log          LogConfig          `mapstructure:"log"`

	Development bool `mapstructure:"development"`
}

type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	Channel string `mapstructure:"channel"` // Channel id for the tracker messages
	Prefix  string `mapstructure:"prefix"`
}

type RiotConfig struct {
	Key      string `mapstructure:"key"`
	Platform string `mapstructure:"platform"` // Host for the spectator, as in na1
	Region   string `mapstructure:"region"`   // Host for account and match, as in americas
	Realm    string `mapstructure:"realm"`    // Data dragon realm, as in na
}

// Either the puuid or the riot id identify the tracked player
type PlayerConfig struct {
	Puuid  string `mapstructure:"puuid"`
	RiotId string `mapstructure:"riotid"`
	Name   string `mapstructure:"name"`
}

type TrackerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Settle   time.Duration `mapstructure:"settle"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CommandsConfig struct {
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
	Matches int           `mapstructure:"matches"`
}

type HousekeepingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"discord.token":         "",
	"discord.channel":       "",
	"discord.prefix":        "stalker",
	"riot.key":              "",
	"riot.platform":         "na1",
	"riot.region":           "americas",
	"riot.realm":            "na",
	"player.puuid":          "",
	"player.riotid":         "",
	"player.name":           "",
	"tracker.interval":      10 * time.Second,
	"tracker.settle":        30 * time.Second,
	"tracker.timeout":       30 * time.Second,
	"commands.limit":        10,
	"commands.window":       2 * time.Minute,
	"commands.matches":      3,
	"housekeeping.interval": 24 * time.Hour,
	"log.level":             "info",
	"development":           false,
}

// Load the configuration from, in increasing order of precedence,
// defaults, an optional lolstalker.yaml file, the environment (a .env file
// included) and the command line
func Load(args []string) (*Config, error) {

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lolstalker")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("lolstalker", pflag.ContinueOnError)
	flags.String("config", "", "path to a config file")
	flags.String("discord.channel", "", "channel id for the tracker messages")
	flags.String("discord.prefix", "stalker", "prefix of the chat commands")
	flags.String("riot.platform", "na1", "riot platform of the tracked player")
	flags.String("riot.region", "americas", "riot region of the tracked player")
	flags.String("player.puuid", "", "puuid of the tracked player")
	flags.String("player.riotid", "", "riot id of the tracked player, as in Name#TAG")
	flags.String("player.name", "", "name of the tracked player in messages, the riot id by default")
	flags.Duration("tracker.interval", 10*time.Second, "time between spectator polls")
	flags.Duration("tracker.settle", 30*time.Second, "time to wait for the match history after a game")
	flags.String("log.level", "info", "log level")
	flags.Bool("development", false, "human readable logs")
	return flags
}

func (cfg *Config) Validate() error {

	if cfg.Discord.Token == "" {
		return errors.New("discord token is required (DISCORD_TOKEN)")
	}
	if cfg.Discord.Channel == "" {
		return errors.New("discord channel is required (DISCORD_CHANNEL)")
	}
	if cfg.Riot.Key == "" {
		return errors.New("riot api key is required (RIOT_KEY)")
	}
	if cfg.Player.Puuid == "" && cfg.Player.RiotId == "" {
		return errors.New("either the puuid or the riot id of the player is required (PLAYER_PUUID, PLAYER_RIOTID)")
	}
	if cfg.Player.Puuid == "" && !strings.Contains(cfg.Player.RiotId, "#") {
		return fmt.Errorf("riot id %q is not of the form Name#TAG", cfg.Player.RiotId)
	}
	if cfg.Tracker.Interval <= 0 {
		return fmt.Errorf("tracker interval must be positive, got %s", cfg.Tracker.Interval)
	}
	if cfg.Tracker.Timeout <= 0 {
		return fmt.Errorf("tracker timeout must be positive, got %s", cfg.Tracker.Timeout)
	}
	if cfg.Tracker.Settle < 0 {
		return fmt.Errorf("tracker settle delay cannot be negative, got %s", cfg.Tracker.Settle)
	}
	if cfg.Commands.Limit <= 0 || cfg.Commands.Window <= 0 {
		return errors.New("command limit and window must be positive")
	}
	if cfg.Commands.Matches <= 0 {
		return errors.New("number of matches shown must be positive")
	}
	return nil
}

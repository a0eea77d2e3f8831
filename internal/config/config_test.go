package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL", "1234")
	t.Setenv("RIOT_KEY", "RGAPI-key")
	t.Setenv("PLAYER_RIOTID", "Sourcewalker#NA1")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Discord.Token)
	assert.Equal(t, "1234", cfg.Discord.Channel)
	assert.Equal(t, "stalker", cfg.Discord.Prefix)
	assert.Equal(t, "na1", cfg.Riot.Platform)
	assert.Equal(t, "americas", cfg.Riot.Region)
	assert.Equal(t, "na", cfg.Riot.Realm)
	assert.Equal(t, "Sourcewalker#NA1", cfg.Player.RiotId)
	assert.Equal(t, 10*time.Second, cfg.Tracker.Interval)
	assert.Equal(t, 30*time.Second, cfg.Tracker.Settle)
	assert.Equal(t, 30*time.Second, cfg.Tracker.Timeout)
	assert.Equal(t, 10, cfg.Commands.Limit)
	assert.Equal(t, 2*time.Minute, cfg.Commands.Window)
	assert.Equal(t, 3, cfg.Commands.Matches)
	assert.Equal(t, 24*time.Hour, cfg.Housekeeping.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Development)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("TRACKER_INTERVAL", "45s")
	t.Setenv("RIOT_PLATFORM", "euw1")
	t.Setenv("DEVELOPMENT", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Tracker.Interval)
	assert.Equal(t, "euw1", cfg.Riot.Platform)
	assert.True(t, cfg.Development)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("TRACKER_INTERVAL", "45s")

	cfg, err := Load([]string{"--tracker.interval=5s", "--player.name=Stalked"})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Tracker.Interval)
	assert.Equal(t, "Stalked", cfg.Player.Name)
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "lolstalker.yaml")
	content := "tracker:\n  settle: 1m\ncommands:\n  matches: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Tracker.Settle)
	assert.Equal(t, 5, cfg.Commands.Matches)
}

func TestLoad_UnknownFlag(t *testing.T) {
	setRequired(t)

	_, err := Load([]string{"--nope"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Discord:  DiscordConfig{Token: "token", Channel: "1234"},
		Riot:     RiotConfig{Key: "key"},
		Player:   PlayerConfig{Puuid: "puuid"},
		Tracker:  TrackerConfig{Interval: time.Second, Timeout: time.Second},
		Commands: CommandsConfig{Limit: 1, Window: time.Second, Matches: 1},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Discord.Token = "" }},
		{"missing channel", func(c *Config) { c.Discord.Channel = "" }},
		{"missing riot key", func(c *Config) { c.Riot.Key = "" }},
		{"missing player", func(c *Config) { c.Player.Puuid = "" }},
		{"malformed riot id", func(c *Config) { c.Player.Puuid = ""; c.Player.RiotId = "NoTag" }},
		{"zero interval", func(c *Config) { c.Tracker.Interval = 0 }},
		{"zero timeout", func(c *Config) { c.Tracker.Timeout = 0 }},
		{"negative settle", func(c *Config) { c.Tracker.Settle = -time.Second }},
		{"zero command limit", func(c *Config) { c.Commands.Limit = 0 }},
		{"zero matches", func(c *Config) { c.Commands.Matches = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

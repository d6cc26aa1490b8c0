package clonium

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/clonium/clonium/turns"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config configures games and arenas.
type Config struct {
	Turns      turns.Config `toml:"turns"`
	BotMinTime Duration     `toml:"bot_min_time"` // a bot turn never takes less than this in an Arena
	Seed       int64        `toml:"seed"`         // seeds the bots and the shuffling of the order

	Logger zerolog.Logger `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Turns:      turns.DefaultConfig(),
		BotMinTime: Duration{500 * time.Millisecond},
		Seed:       1337,
		Logger:     zerolog.Nop(),
	}
}

func (c Config) IsValid() bool { return c.Turns.IsValid() && c.BotMinTime.Duration >= 0 }

// LoadConfig reads a TOML file over DefaultConfig.
func LoadConfig(filename string) (Config, error) {
	conf := DefaultConfig()
	md, err := toml.DecodeFile(filename, &conf)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Unable to load config %q", filename)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("Unknown keys %v in config %q", undecoded, filename)
	}
	if !conf.IsValid() {
		return Config{}, errors.Errorf("Invalid config %q: %+v", filename, conf)
	}
	return conf, nil
}

// Duration is a time.Duration written as "1.5s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return errors.WithStack(err)
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.Duration.String()), nil }

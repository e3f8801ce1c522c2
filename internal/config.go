package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,required=true"`
	Port              int           `env:"PORT,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	MaxFrameBytes     int64         `env:"MAX_FRAME_BYTES,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	HistoryLimit      *int          `env:"HISTORY_LIMIT"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,required=true"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Words splits the comma-separated censored word list. An empty variable
// disables moderation entirely.
func (c Config) Words() []string {
	if strings.TrimSpace(c.CensoredWords) == "" {
		return nil
	}
	parts := strings.Split(c.CensoredWords, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

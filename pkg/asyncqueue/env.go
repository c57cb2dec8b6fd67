package asyncqueue

import (
	"errors"
	"time"

	"github.com/dmitrymomot/pacer/pkg/config"
)

// EnvConfig carries scheduler defaults loaded from the environment.
type EnvConfig struct {
	MaxSize     int           `env:"PACER_QUEUE_MAX_SIZE" envDefault:"0"`
	Concurrency int           `env:"PACER_QUEUE_CONCURRENCY" envDefault:"1"`
	Wait        time.Duration `env:"PACER_QUEUE_WAIT" envDefault:"0s"`
	Started     bool          `env:"PACER_QUEUE_STARTED" envDefault:"true"`
	Expiration  time.Duration `env:"PACER_QUEUE_EXPIRATION" envDefault:"0s"`
}

// FromEnv applies scheduler defaults from PACER_QUEUE_* environment
// variables. Explicit options placed after FromEnv override the
// environment values. A malformed environment fails the constructor
// with ErrEnvConfig.
func FromEnv[T, R any]() Option[T, R] {
	return func(o *options[T, R]) {
		var cfg EnvConfig
		if err := config.Load(&cfg); err != nil {
			o.envErr = errors.Join(ErrEnvConfig, err)
			return
		}

		o.maxSize = cfg.MaxSize
		o.concurrency = cfg.Concurrency
		o.wait = cfg.Wait
		o.started = cfg.Started
		o.expiration = cfg.Expiration
	}
}

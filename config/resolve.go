package config

import (
	"os"

	goconfig "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"

	"github.com/archivista/archivist/errors"
)

func resolveConfig[T any](config *T) error {
	if config == nil {
		return errors.New("config is nil")
	}

	configReader := goconfig.New()
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		configReader = configReader.AddFeeder(feeder.DotEnv{Path: ".env"})
	}

	if err := configReader.
		AddFeeder(feeder.Env{}).
		AddStruct(config).
		Feed(); err != nil {
		return errors.Wrapf(err, "failed to load config")
	}

	return nil
}

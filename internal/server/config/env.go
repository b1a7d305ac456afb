package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

// parseEnv loads dotEnvPath into the process environment when it exists,
// then overlays every set variable named by the `env` struct tags.
// Variables that are already set win over the file. Unset variables leave
// the current field value alone.
func parseEnv(config *Config, dotEnvPath string) {
	if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}

package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first one found is loaded.
var envFiles = []string{".env", ".env.local"}

// LoadEnvFile loads environment variables from the first .env file found in the
// working directory. Variables already present in the environment are not overridden.
// A missing file is not an error.
func LoadEnvFile() error {
	for _, name := range envFiles {
		err := godotenv.Load(name)
		if err == nil {
			slog.Debug("Loaded environment variables", slog.String("file", name))
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

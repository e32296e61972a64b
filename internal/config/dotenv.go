package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error, and variables that are already
// present in the environment are left untouched.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the optional variables file read from the
// project root.
const DotEnvFile = ".env"

// Environment is an immutable snapshot of environment variables.
type Environment map[string]string

// EnvironmentFromList builds a snapshot from "KEY=value" entries, as returned
// by os.Environ. Entries without '=' are skipped.
func EnvironmentFromList(entries []string) Environment {
	env := make(Environment, len(entries))
	for _, e := range entries {
		key, val, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = val
	}
	return env
}

// LoadEnvironment snapshots the process environment and merges the project's
// .env file into it.
func LoadEnvironment(root string) (Environment, error) {
	return MergeDotEnv(EnvironmentFromList(os.Environ()), root)
}

// MergeDotEnv returns a copy of env with the variables of root/.env added.
// Variables already in env win over the file, and a missing file is not an
// error.
func MergeDotEnv(env Environment, root string) (Environment, error) {
	merged := make(Environment, len(env))
	for key, val := range env {
		merged[key] = val
	}

	path := filepath.Join(root, DotEnvFile)
	fromFile, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return merged, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for key, val := range fromFile {
		if _, set := merged[key]; !set {
			merged[key] = val
		}
	}
	return merged, nil
}

// Lookup returns the raw value of name and whether it is set.
func (e Environment) Lookup(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}

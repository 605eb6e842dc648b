package config

import (
	"sort"

	"github.com/joho/godotenv"

	"github.com/tgagor/stow/pkg/errs"
)

// ReadEnvFile parses a dotenv file into sorted KEY=VALUE entries. An empty
// filename yields no entries.
func ReadEnvFile(filename string) ([]string, error) {
	if filename == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(filename)
	if err != nil {
		return nil, &errs.Error{Kind: errs.Config, Op: "read env file", Path: filename, Err: err}
	}
	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env, nil
}

package config

import (
	"os"
	"strings"
)

// Env is a set of KEY=value pairs read from a .env file. It implements the
// env.Source interface of go-simpler.org/env.
type Env map[string]string

// GetEnv reads a file of KEY=value lines. Blank lines and lines starting with
// # are skipped, as is an optional leading "export ", so the output of
// PrintEnv reads back unchanged.
func GetEnv(path string) (e Env, err error) {
	var b []byte
	e = make(Env)
	if b, err = os.ReadFile(path); chk.T(err) {
		return
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			log.W.F("ignoring line without '=' in %s: %q", path, line)
			continue
		}
		e[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return
}

// LookupEnv returns the raw value of a key.
func (e Env) LookupEnv(key string) (value string, ok bool) {
	value, ok = e[key]
	return
}

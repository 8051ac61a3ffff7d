// Package config parses adaptivemmd's KEY=VALUE configuration file,
// grounded on read_config_file() in
// original_source/adaptivemm/src/adaptivemmd.c.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Conventional search paths, in priority order (spec.md §6).
var DefaultPaths = []string{
	"/etc/sysconfig/adaptivemmd",
	"/etc/default/adaptivemmd",
}

// Config mirrors the tunables the config file may set; command-line
// flags (pkg/daemon, cmd/adaptivemmd) take precedence over whatever is
// loaded here.
type Config struct {
	Verbose             int
	Aggressiveness      int
	MaxGap              int
	EnableFreePageMgmt  bool
	EnableNegDentryMgmt bool
	EnableMemleakCheck  bool
	NegDentryCap        int
}

// Default returns the tunables adaptivemmd starts with when no config
// file is found.
func Default() Config {
	return Config{
		Verbose:             0,
		Aggressiveness:      2,
		MaxGap:              0,
		EnableFreePageMgmt:  true,
		EnableNegDentryMgmt: true,
		EnableMemleakCheck:  true,
		NegDentryCap:        50,
	}
}

// Load tries each of paths in order and parses the first one present.
// No file being present is not an error; Load then returns Default().
func Load(paths []string) (Config, error) {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("config: open %s: %w", p, err)
		}
		defer f.Close()
		return Parse(f)
	}
	return Default(), nil
}

// Parse reads KEY=VALUE lines from r. Blank lines and lines starting
// with '#' are skipped. An unrecognized key aborts parsing entirely and
// returns an error — adaptivemmd refuses to run on a config file it
// can't fully understand rather than silently ignoring typos.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, fmt.Errorf("config: malformed line %q", line)
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"`)

		var err error
		switch key {
		case "VERBOSE":
			cfg.Verbose, err = atoi(val)
		case "AGGRESSIVENESS":
			cfg.Aggressiveness, err = atoi(val)
		case "MAXGAP":
			cfg.MaxGap, err = atoi(val)
		case "ENABLE_FREE_PAGE_MGMT":
			cfg.EnableFreePageMgmt, err = atob(val)
		case "ENABLE_NEG_DENTRY_MGMT":
			cfg.EnableNegDentryMgmt, err = atob(val)
		case "ENABLE_MEMLEAK_CHECK":
			cfg.EnableMemleakCheck, err = atob(val)
		case "NEG_DENTRY_CAP":
			cfg.NegDentryCap, err = atoi(val)
		default:
			return Config{}, fmt.Errorf("config: unknown key %q", key)
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: key %q: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, fmt.Errorf("config: scan: %w", err)
	}
	return cfg, nil
}

func atoi(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

func atob(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

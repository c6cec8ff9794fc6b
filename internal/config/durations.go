package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const day = 24 * time.Hour

// ParseDuration accepts everything time.ParseDuration does plus a leading
// day count, so "7d", "1d12h" and "168h" are all valid.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	days, rest, ok := strings.Cut(s, "d")
	if !ok {
		return time.ParseDuration(s)
	}
	n, err := strconv.ParseUint(days, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("time: invalid duration %q", s)
	}
	d := time.Duration(n) * day
	if rest == "" {
		return d, nil
	}
	extra, err := time.ParseDuration(rest)
	if err != nil || extra < 0 {
		return 0, fmt.Errorf("time: invalid duration %q", s)
	}
	return d + extra, nil
}

func parseEnv(into any) error {
	return env.ParseWithOptions(into, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
				return ParseDuration(v)
			},
		},
	})
}

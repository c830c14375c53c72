package benchmark

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Config maps every benchmark key to a target value. Configs are immutable
// values: Apply returns a new Config and never mutates the receiver, so a
// Config can be shared across concurrent calculations.
type Config struct {
	values map[Key]float64
}

// Defaults returns a fresh Config populated with the industry defaults.
func Defaults() Config {
	values := make(map[Key]float64, len(definitions))
	for _, d := range definitions {
		values[d.Key] = d.Default
	}
	return Config{values: values}
}

// Value returns the target for a key. Unknown keys return 0, false.
func (c Config) Value(k Key) (float64, bool) {
	v, ok := c.values[k]
	return v, ok
}

// Apply returns a new Config with the given overrides applied. Unknown keys
// and non-finite values are rejected; unset keys keep their current value.
func (c Config) Apply(overrides map[string]float64) (Config, error) {
	values := make(map[Key]float64, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}

	for name, v := range overrides {
		if _, ok := Lookup(Key(name)); !ok {
			return Config{}, eris.Errorf("benchmark: unknown key %q", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Config{}, eris.Errorf("benchmark: value for %q is not finite", name)
		}
		values[Key(name)] = v
	}

	return Config{values: values}, nil
}

// Diff returns the sparse override set: only keys whose value differs from
// the documented default. This is what scenario persistence stores.
func (c Config) Diff() map[string]float64 {
	diff := make(map[string]float64)
	for _, d := range definitions {
		if v := c.values[d.Key]; v != d.Default {
			diff[string(d.Key)] = v
		}
	}
	return diff
}

// FromDiff reconstructs a Config from a sparse override set saved by Diff.
func FromDiff(diff map[string]float64) (Config, error) {
	return Defaults().Apply(diff)
}

// Validate checks that every target is finite and within a plausible range:
// ratio metrics in [0, 100], dollar metrics positive.
func (c Config) Validate() error {
	var errs []string
	for _, d := range definitions {
		v, ok := c.values[d.Key]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s is unset", d.Key))
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Sprintf("%s is not finite", d.Key))
			continue
		}
		switch d.Unit {
		case UnitPercent:
			if v < 0 || v > 100 {
				errs = append(errs, fmt.Sprintf("%s must be between 0 and 100, got %g", d.Key, v))
			}
		case UnitDollars:
			if v <= 0 {
				errs = append(errs, fmt.Sprintf("%s must be > 0, got %g", d.Key, v))
			}
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("benchmark: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Hash returns a stable SHA-256 hash of the config for cache invalidation
// on saved scenarios.
func (c Config) Hash() string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	ordered := make([][2]any, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, [2]any{k, c.values[Key(k)]})
	}
	data, err := json.Marshal(ordered)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16]) // 32 hex chars
}

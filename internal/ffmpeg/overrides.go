package ffmpeg

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/five82/pencode/internal/config"
	perrors "github.com/five82/pencode/internal/errors"
	"github.com/five82/pencode/internal/mediainfo"
)

// Bucket is a resolution-threshold override.
type Bucket struct {
	Threshold int
	Value     string
}

// FlagOverrides holds every override for a single flag.
type FlagOverrides struct {
	Flag    string
	Codec   map[string]string
	Buckets []Bucket // ascending by Threshold
}

// OverrideTable is the ordered set of per-flag overrides.
type OverrideTable []FlagOverrides

// NewOverrideTable classifies raw config overrides. Digit-only keys are
// resolution thresholds, anything else is an exact codec id.
func NewOverrideTable(raw []config.Override) (OverrideTable, error) {
	table := make(OverrideTable, 0, len(raw))
	for _, o := range raw {
		fo := FlagOverrides{Flag: o.Flag, Codec: make(map[string]string)}
		keys := make(map[int]string)
		for key, value := range o.Values {
			if !isDigits(key) {
				fo.Codec[key] = value
				continue
			}
			threshold, err := strconv.Atoi(key)
			if err != nil {
				return nil, perrors.NewConfigError(fmt.Sprintf("%s: threshold %q", o.Flag, key), err)
			}
			if prev, ok := keys[threshold]; ok {
				return nil, perrors.NewConfigError(
					fmt.Sprintf("%s: thresholds %q and %q", o.Flag, min(prev, key), max(prev, key)),
					config.ErrDuplicateThreshold)
			}
			keys[threshold] = key
			fo.Buckets = append(fo.Buckets, Bucket{Threshold: threshold, Value: value})
		}
		sort.Slice(fo.Buckets, func(i, j int) bool {
			return fo.Buckets[i].Threshold < fo.Buckets[j].Threshold
		})
		table = append(table, fo)
	}
	return table, nil
}

// ForHeight returns the value of the largest threshold not above height.
func (f FlagOverrides) ForHeight(height int) (string, bool) {
	for i := len(f.Buckets) - 1; i >= 0; i-- {
		if f.Buckets[i].Threshold <= height {
			return f.Buckets[i].Value, true
		}
	}
	return "", false
}

// Resolve applies the override table to a copy of base for one source.
// Codec overrides are applied first, resolution overrides second, so a
// matching resolution bucket always has the final word.
func Resolve(base *Args, probe mediainfo.Probe, table OverrideTable) (*Args, error) {
	out := base.Clone()
	height := EffectiveHeight(probe)

	for _, fo := range table {
		if !out.Has(fo.Flag) {
			return nil, undefinedFlag(fo.Flag)
		}
		if v, ok := fo.Codec[probe.Codec]; ok {
			if err := out.Set(fo.Flag, v); err != nil {
				return nil, err
			}
		}
		if v, ok := fo.ForHeight(height); ok {
			if err := out.Set(fo.Flag, v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

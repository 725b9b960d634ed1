// Package scenario loads model run inputs from human-edited documents.
//
// A scenario names its assumptions, opening balances and ownership:
//
//	name: base
//	benchmark_ticker: WMT
//	assumptions:
//	  start_year: 2026
//	  term_years: 5
//	  revenue_start: 10_000_000
//	  debt_change_schedule: {2027: 500000}
//	opening_balances:
//	  cash_opening: 1000000
//	ownership:
//	  - {name: Founders, fraction: 0.6}
//	  - {name: Investors, fraction: 0.4}
//
// Openings must balance: cash + ppne equals debt + equity + retained
// earnings. Cash 1M, PP&E 3.5M, debt 2M and equity 2M need
// retained_earnings_opening: 500000 to pass.
//
// YAML (.yaml, .yml) is decoded with yaml.v2; HJSON and JSON (.hjson, .json)
// with hjson-go. Both produce the same pipeline.Input.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"finmodel/pkg/core/assumption"
	"finmodel/pkg/core/modelerr"
	"finmodel/pkg/core/pipeline"
	"finmodel/pkg/core/projection"
)

// Format is a document syntax.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatHJSON Format = "hjson"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hjson", ".json":
		return FormatHJSON, nil
	}
	return "", fmt.Errorf("unsupported scenario file %q: want .yaml, .yml, .hjson or .json", path)
}

// document is the on-disk shape before normalisation.
type document struct {
	Name            string                 `yaml:"name" json:"name"`
	BenchmarkTicker string                 `yaml:"benchmark_ticker" json:"benchmark_ticker"`
	LookbackYears   int                    `yaml:"lookback_years" json:"lookback_years"`
	Assumptions     map[string]interface{} `yaml:"assumptions" json:"assumptions"`
	OpeningBalances map[string]interface{} `yaml:"opening_balances" json:"opening_balances"`
	Ownership       interface{}            `yaml:"ownership" json:"ownership"`
}

// Load reads the scenario at path. An unnamed scenario is named after its
// file.
func Load(path string) (pipeline.Input, error) {
	format, err := FormatFor(path)
	if err != nil {
		return pipeline.Input{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read scenario: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, format, stem)
}

// LoadAll loads several scenarios, stopping at the first failure.
func LoadAll(paths []string) ([]pipeline.Input, error) {
	inputs := make([]pipeline.Input, 0, len(paths))
	for _, p := range paths {
		in, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Parse decodes a scenario document. defaultName is used when the document
// has no name.
func Parse(data []byte, format Format, defaultName string) (pipeline.Input, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return pipeline.Input{}, modelerr.Invalid("scenario", "decode yaml: %v", err)
		}
	case FormatHJSON:
		if err := hjson.Unmarshal(data, &doc); err != nil {
			return pipeline.Input{}, modelerr.Invalid("scenario", "decode hjson: %v", err)
		}
	default:
		return pipeline.Input{}, modelerr.Invalid("scenario", "unknown format %q", format)
	}
	return doc.input(defaultName)
}

func (d document) input(defaultName string) (pipeline.Input, error) {
	in := pipeline.Input{
		Name:            strings.TrimSpace(d.Name),
		BenchmarkTicker: strings.TrimSpace(d.BenchmarkTicker),
		LookbackYears:   d.LookbackYears,
	}
	if in.Name == "" {
		in.Name = defaultName
	}

	raw := make(map[string]interface{}, len(d.Assumptions))
	for k, v := range d.Assumptions {
		raw[k] = v
	}
	// Older documents carry the ticker inside the assumptions.
	if t, ok := raw["benchmark_ticker"]; ok {
		delete(raw, "benchmark_ticker")
		if s, ok := t.(string); ok && in.BenchmarkTicker == "" {
			in.BenchmarkTicker = strings.TrimSpace(s)
		}
	}
	overrides, err := assumption.FromMap(raw)
	if err != nil {
		return pipeline.Input{}, err
	}
	in.Overrides = overrides

	if len(d.OpeningBalances) > 0 {
		if in.OpeningBalances, err = assumption.ValuesFrom(d.OpeningBalances); err != nil {
			return pipeline.Input{}, err
		}
	}

	if in.Ownership, err = ownership(d.Ownership); err != nil {
		return pipeline.Input{}, err
	}
	return in, nil
}

// ownership accepts either a list of {name, fraction} entries, kept in
// document order, or a name -> fraction mapping, ordered by name.
func ownership(v interface{}) ([]projection.Holder, error) {
	switch o := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		holders := make([]projection.Holder, 0, len(o))
		for i, item := range o {
			entry, ok := stringMap(item)
			if !ok {
				return nil, modelerr.Invalid("ownership", "entry %d is not a mapping", i)
			}
			name, _ := entry["name"].(string)
			vals, err := assumption.ValuesFrom(map[string]interface{}{"fraction": entry["fraction"]})
			if err != nil {
				return nil, modelerr.Invalid("ownership", "entry %d: %v", i, err)
			}
			holders = append(holders, projection.Holder{Name: name, Fraction: vals["fraction"]})
		}
		return holders, nil
	default:
		m, ok := stringMap(v)
		if !ok {
			return nil, modelerr.Invalid("ownership", "expected a list or a mapping, got %T", v)
		}
		fractions, err := assumption.ValuesFrom(m)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(fractions))
		for name := range fractions {
			names = append(names, name)
		}
		sort.Strings(names)
		holders := make([]projection.Holder, 0, len(names))
		for _, name := range names {
			holders = append(holders, projection.Holder{Name: name, Fraction: fractions[name]})
		}
		return holders, nil
	}
}

func stringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

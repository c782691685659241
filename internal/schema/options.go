package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidOptions is wrapped by every option parsing failure.
var ErrInvalidOptions = errors.New("invalid field options")

// MaxRangeMagnitude bounds number and decimal options. Bounds inside it are exact
// integers as float64, and the width of any range inside it fits in an int.
const MaxRangeMagnitude = min(1<<53, math.MaxInt/2)

// DefaultWordCount is used by lorem_ipsum fields without a word count.
const DefaultWordCount = 5

// OptionKind tags the option variant a type accepts.
type OptionKind int

const (
	KindNone OptionKind = iota
	KindRange
	KindWordCount
	KindValueList
)

// Options is the closed set of per-type option variants.
type Options interface {
	Kind() OptionKind
	// Map renders the options in the engine exchange shape.
	Map() map[string]any
}

// NoOptions is carried by types without declared options.
type NoOptions struct{}

func (NoOptions) Kind() OptionKind    { return KindNone }
func (NoOptions) Map() map[string]any { return map[string]any{} }

// RangeOptions bounds number and decimal fields. Nil bounds fall back to engine defaults.
type RangeOptions struct {
	Min *float64
	Max *float64
}

func (RangeOptions) Kind() OptionKind { return KindRange }

func (o RangeOptions) Map() map[string]any {
	m := map[string]any{}
	if o.Min != nil {
		m["min"] = *o.Min
	}
	if o.Max != nil {
		m["max"] = *o.Max
	}
	return m
}

// Bounds resolves the range against the given defaults.
func (o RangeOptions) Bounds(defMin, defMax float64) (float64, float64) {
	lo, hi := defMin, defMax
	if o.Min != nil {
		lo = *o.Min
	}
	if o.Max != nil {
		hi = *o.Max
	}
	return lo, hi
}

// IntBounds resolves the range to the integers it contains.
func (o RangeOptions) IntBounds(defMin, defMax int) (int, int) {
	lo, hi := float64(defMin), float64(defMax)
	lo, hi = o.Bounds(lo, hi)
	return int(math.Ceil(lo)), int(math.Floor(hi))
}

// WordCountOptions configures lorem_ipsum fields.
type WordCountOptions struct {
	WordCount int
}

func (WordCountOptions) Kind() OptionKind { return KindWordCount }

func (o WordCountOptions) Map() map[string]any {
	if o.WordCount == 0 {
		return map[string]any{}
	}
	return map[string]any{"word_count": o.WordCount}
}

// Words returns the effective word count.
func (o WordCountOptions) Words() int {
	if o.WordCount < 1 {
		return DefaultWordCount
	}
	return o.WordCount
}

// ValueListOptions configures custom_list fields.
type ValueListOptions struct {
	Values []string
}

func (ValueListOptions) Kind() OptionKind { return KindValueList }

func (o ValueListOptions) Map() map[string]any {
	if len(o.Values) == 0 {
		return map[string]any{}
	}
	return map[string]any{"values": append([]string(nil), o.Values...)}
}

// KindFor returns the option variant accepted by a type id.
func KindFor(typeID string) OptionKind {
	switch typeID {
	case "number", "decimal":
		return KindRange
	case "lorem_ipsum":
		return KindWordCount
	case "custom_list":
		return KindValueList
	default:
		return KindNone
	}
}

// ParseOptions validates a raw option bag for typeID and returns its variant.
// Keys that do not belong to the type's variant are ignored.
func ParseOptions(typeID string, raw map[string]any) (Options, error) {
	switch KindFor(typeID) {
	case KindRange:
		return parseRange(typeID, raw)
	case KindWordCount:
		return parseWordCount(raw)
	case KindValueList:
		return parseValueList(raw)
	default:
		return NoOptions{}, nil
	}
}

// DefaultOptions returns the zero variant for typeID.
func DefaultOptions(typeID string) Options {
	opts, _ := ParseOptions(typeID, nil)
	return opts
}

func parseRange(typeID string, raw map[string]any) (Options, error) {
	var opts RangeOptions
	if v, ok := raw["min"]; ok && v != nil {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: min: %v", ErrInvalidOptions, err)
		}
		opts.Min = &f
	}
	if v, ok := raw["max"]; ok && v != nil {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: max: %v", ErrInvalidOptions, err)
		}
		opts.Max = &f
	}
	for _, b := range []struct {
		name string
		v    *float64
	}{{"min", opts.Min}, {"max", opts.Max}} {
		if b.v == nil {
			continue
		}
		if math.IsNaN(*b.v) || math.IsInf(*b.v, 0) {
			return nil, fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidOptions, b.name, *b.v)
		}
		if math.Abs(*b.v) > MaxRangeMagnitude {
			return nil, fmt.Errorf("%w: %s %v is outside [-%v, %v]", ErrInvalidOptions, b.name, *b.v, MaxRangeMagnitude, MaxRangeMagnitude)
		}
	}
	if opts.Min != nil && opts.Max != nil && *opts.Min > *opts.Max {
		return nil, fmt.Errorf("%w: min %v is greater than max %v", ErrInvalidOptions, *opts.Min, *opts.Max)
	}
	if typeID == "number" && opts.Min != nil && opts.Max != nil {
		if math.Ceil(*opts.Min) > math.Floor(*opts.Max) {
			return nil, fmt.Errorf("%w: range [%v, %v] contains no integer", ErrInvalidOptions, *opts.Min, *opts.Max)
		}
	}
	if typeID == "decimal" && opts.Min != nil && opts.Max != nil {
		if math.Ceil(*opts.Min*100) > math.Floor(*opts.Max*100) {
			return nil, fmt.Errorf("%w: range [%v, %v] contains no value with 2 decimals", ErrInvalidOptions, *opts.Min, *opts.Max)
		}
	}
	return opts, nil
}

func parseWordCount(raw map[string]any) (Options, error) {
	v, ok := raw["word_count"]
	if !ok {
		v, ok = raw["wordCount"]
	}
	if !ok || v == nil {
		return WordCountOptions{}, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, fmt.Errorf("%w: word_count: %v", ErrInvalidOptions, err)
	}
	if f < 1 || f != math.Trunc(f) {
		return nil, fmt.Errorf("%w: word_count must be a whole number >= 1, got %v", ErrInvalidOptions, f)
	}
	return WordCountOptions{WordCount: int(f)}, nil
}

func parseValueList(raw map[string]any) (Options, error) {
	v, ok := raw["values"]
	if !ok || v == nil {
		return ValueListOptions{}, nil
	}

	var values []string
	switch list := v.(type) {
	case []string:
		values = list
	case []any:
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: values[%d] is %T, want string", ErrInvalidOptions, i, item)
			}
			values = append(values, s)
		}
	case string:
		// Editor textareas send one value per line.
		values = strings.Split(list, "\n")
	default:
		return nil, fmt.Errorf("%w: values is %T, want a list", ErrInvalidOptions, v)
	}

	out := make([]string, 0, len(values))
	for _, s := range values {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return ValueListOptions{Values: out}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%T is not a number", v)
	}
}

func cloneOptions(o Options) Options {
	switch v := o.(type) {
	case RangeOptions:
		var c RangeOptions
		if v.Min != nil {
			m := *v.Min
			c.Min = &m
		}
		if v.Max != nil {
			m := *v.Max
			c.Max = &m
		}
		return c
	case ValueListOptions:
		return ValueListOptions{Values: append([]string(nil), v.Values...)}
	case nil:
		return NoOptions{}
	default:
		return v
	}
}

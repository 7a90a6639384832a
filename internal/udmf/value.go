package udmf

import "strconv"

// Int parses the value as a (possibly hex, 0x-prefixed) integer,
// returning 0 if the value is absent or unparsable.
func (v Value) Int() int64 {
	if v.Raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(v.Raw, 0, 64)
	if err != nil {
		return 0
	}
	return n
}

// Float parses the value as a float, returning 0 if the value is
// absent or unparsable.
func (v Value) Float() float64 {
	if v.Raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v.Raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// String returns the value's raw text, unquoted.
func (v Value) String() string { return v.Raw }

// Fields is a convenience lookup map with typed accessors and a default
// fallback, used when converting a Block into level types.
type Fields map[string]Value

func (f Fields) Int(key string, def int64) int64 {
	if v, ok := f[key]; ok {
		return v.Int()
	}
	return def
}

func (f Fields) Float(key string, def float64) float64 {
	if v, ok := f[key]; ok {
		return v.Float()
	}
	return def
}

func (f Fields) Bool(key string, def bool) bool {
	if v, ok := f[key]; ok {
		return v.Bool()
	}
	return def
}

func (f Fields) String(key string, def string) string {
	if v, ok := f[key]; ok {
		return v.Raw
	}
	return def
}

package internal

import (
	"maps"
	"net/http"
	"sort"
)

// Input is the request data bag handlers read: query values, then form
// values overriding them, then path parameters for keys still absent.
// Middleware may add values with Set. Only the first value of a repeated
// key is kept.
type Input struct {
	values map[string]string
}

func newInput(r *http.Request) *Input {
	in := &Input{values: make(map[string]string)}

	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			in.values[k] = v[0]
		}
	}

	// ParseForm fails only on malformed bodies; the query values are kept then.
	if err := r.ParseForm(); err == nil {
		for k, v := range r.PostForm {
			if len(v) > 0 {
				in.values[k] = v[0]
			}
		}
	}

	return in
}

// Get returns the value for key and whether it is present.
func (in *Input) Get(key string) (string, bool) {
	v, ok := in.values[key]
	return v, ok
}

// String returns the value for key or an empty string.
func (in *Input) String(key string) string {
	return in.values[key]
}

// Has reports whether key is present.
func (in *Input) Has(key string) bool {
	_, ok := in.values[key]
	return ok
}

// Set stores value under key, replacing any request value.
func (in *Input) Set(key, value string) {
	in.values[key] = value
}

// All returns a copy of every value.
func (in *Input) All() map[string]string {
	return maps.Clone(in.values)
}

// Keys returns the keys in sorted order.
func (in *Input) Keys() []string {
	keys := make([]string, 0, len(in.values))
	for k := range in.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fill adds params whose keys are not present yet.
func (in *Input) fill(params Params) {
	for k, v := range params {
		if _, ok := in.values[k]; !ok {
			in.values[k] = v
		}
	}
}

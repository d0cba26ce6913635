package dispatch

// Response is a successful API response. Body holds the decoded JSON
// document when the server sent one; otherwise Text holds the raw body.
type Response struct {
	StatusCode int
	Body       any
	Text       string
}

// Object returns the body as a JSON object
func (r *Response) Object() (map[string]any, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.Body.(map[string]any)
	return m, ok
}

// List returns the body as a list of objects. A paginated envelope with a
// "results" list is unwrapped.
func (r *Response) List() []map[string]any {
	if r == nil {
		return nil
	}

	items, ok := r.Body.([]any)
	if !ok {
		obj, isObj := r.Body.(map[string]any)
		if !isObj {
			return nil
		}
		if items, ok = obj["results"].([]any); !ok {
			return nil
		}
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// String returns the first non-empty field among keys of an object body
func (r *Response) String(keys ...string) string {
	obj, ok := r.Object()
	if !ok {
		return ""
	}
	return Field(obj, keys...)
}

// Field returns the first non-empty field among keys, formatted as a string
func Field(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := FormatValue(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

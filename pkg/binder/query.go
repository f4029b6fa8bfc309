package binder

import "net/http"

// Query binds `query:"name"` fields from the URL query string. Slices
// accept repeated and comma-separated values; time.Duration fields accept
// Go duration strings or whole seconds.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindToStruct(v, "query", func(name string) []string { return q[name] }, ErrInvalidQuery)
	}
}

package tables

import "net/url"

// Querystring returns base with the keys in set replaced and the keys in
// without removed, encoded with a leading "?". base is not modified.
func Querystring(base url.Values, set url.Values, without ...string) string {
	values := make(url.Values, len(base)+len(set))
	for key, list := range base {
		values[key] = append([]string(nil), list...)
	}
	for key, list := range set {
		values[key] = append([]string(nil), list...)
	}
	for _, key := range without {
		values.Del(key)
	}
	return "?" + values.Encode()
}

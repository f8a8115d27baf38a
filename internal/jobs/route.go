package jobs

import (
	"strings"
)

// Route is a parsed resource path of the form {apiPrefix}{id}[/{action}].
type Route struct {
	ID     string
	Action string
}

// ParseRoute splits path into an id and optional action after apiPrefix.
// apiPrefix should end in "/", e.g. "/api/dishes/". idPrefix is added to bare
// ids (pass "" when ids carry no prefix). Paths with more than two segments,
// or an empty id, are rejected.
func ParseRoute(path, apiPrefix, idPrefix string) (Route, bool) {
	if !strings.HasPrefix(path, apiPrefix) {
		return Route{}, false
	}
	rest := strings.Trim(strings.TrimPrefix(path, apiPrefix), "/")
	if rest == "" {
		return Route{}, false
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 2 || parts[0] == "" {
		return Route{}, false
	}
	r := Route{ID: Normalize(parts[0], idPrefix)}
	if len(parts) == 2 {
		r.Action = parts[1]
	}
	return r, true
}

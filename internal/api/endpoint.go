// Package api describes the remote endpoints taskfetch talks to.
package api

import "strings"

// Endpoint names, used for logging, metrics labels and fixture lookup.
const (
	NameNextPath     = "nextpath"
	NameResponseCode = "responsecode"
)

// DefaultRoot is the server root used when no api.root_url is configured.
const DefaultRoot = "http://localhost:8000"

// Endpoint describes the target of a single request. It is constructed per
// call and never mutated.
type Endpoint struct {
	// Name is a short debug name for the request.
	Name string
	// URL is the full request URL. It is not validated here.
	URL string
}

// NextPath returns the endpoint that yields the next path to follow.
// The URL is the root with "/nextpath" appended.
func NextPath(root string) Endpoint {
	return Endpoint{
		Name: NameNextPath,
		URL:  strings.TrimRight(root, "/") + "/" + NameNextPath,
	}
}

// ResponseCode returns the endpoint that yields a response code for a path
// previously returned by NextPath. The URL is used verbatim.
func ResponseCode(url string) Endpoint {
	return Endpoint{
		Name: NameResponseCode,
		URL:  url,
	}
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.Name + " " + e.URL
}

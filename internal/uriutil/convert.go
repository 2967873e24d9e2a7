// Package uriutil converts between file:// URIs and file system paths
package uriutil

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathToURI converts a file system path to a file:// URI with
// percent-encoded segments. Relative paths are made absolute first.
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		// C:/proj -> /C:/proj
		path = "/" + path
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file://" + strings.Join(segments, "/")
}

// URIToPath converts a file:// URI to a file system path. Anything that is
// not a file URI is returned unchanged.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}

	path := parsed.Path
	if parsed.Host != "" && parsed.Host != "localhost" {
		path = "//" + parsed.Host + path
	}
	// /C:/proj -> C:/proj
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}

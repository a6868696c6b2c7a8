package spacetraveling

import (
	"embed"
	"path"
)

// EmbeddedAssets contains static assets shipped with the site:
// styles.css, loadmore.js and the header logo.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func assetContentType(name string) string {
	switch path.Ext(name) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// Package templates provides embedded document body templates.
package templates

import "embed"

// Documents contains the markdown body template for each document type.
//
//go:embed documents/*.md
var Documents embed.FS

// Package web holds the HTML templates and static assets served by marquee
package web

import "embed"

//go:embed templates
var Templates embed.FS

//go:embed static
var Static embed.FS

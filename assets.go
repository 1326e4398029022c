// Package console provides embedded assets for production builds.
package console

import "embed"

// TemplateFS holds the console's page templates.
//
//go:embed web/templates/*.tmpl
var TemplateFS embed.FS

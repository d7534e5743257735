// Package migrations embeds the versioned SQL schema so the binary can
// migrate its database without a runtime directory dependency.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

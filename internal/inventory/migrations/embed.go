// Package migrations holds the inventory schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema migrations so deployments ship a
// single binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

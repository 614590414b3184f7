// Package migrations holds the postgres schema of the remote store
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS

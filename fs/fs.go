// Package appfs embeds the database migration scripts so deployments and
// tests can migrate without shipping loose files.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS

// Package assets embeds the files the server binary ships with.
package assets

import "embed"

//go:embed all:migrations
var MigrationsFS embed.FS

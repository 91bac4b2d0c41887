// Package db embeds the table API schema.
package db

import _ "embed"

// Schema creates the whitelisted tables and seeds the storefront catalog.
// Every statement is idempotent.
//
//go:embed schema.sql
var Schema string

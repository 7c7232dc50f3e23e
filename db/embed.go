// Package db expone el esquema SQL de las tablas de integración para
// entornos de prueba y desarrollo.
package db

import _ "embed"

//go:embed schema.sql
var Schema string

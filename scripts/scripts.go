// Package scripts embeds the bundled Risor oracle scripts.
package scripts

import "embed"

// FS holds oracle/*.risor.
//
//go:embed oracle/*.risor
var FS embed.FS

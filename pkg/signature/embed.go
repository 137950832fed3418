package signature

import "embed"

// builtinFS embeds the built-in signature files, one per target module.
//
//go:embed signatures/*.yml
var builtinFS embed.FS

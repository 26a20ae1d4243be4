package resources

import "embed"

//go:embed *.yml
var FS embed.FS

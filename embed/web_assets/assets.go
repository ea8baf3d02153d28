package web_assets

import "embed"

//go:embed index.html board.js style.css
var Assets embed.FS

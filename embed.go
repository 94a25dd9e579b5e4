package showreel

import "embed"

// EmbeddedAssets contains static assets shipped with the app:
// live.js, style.css, favicon.svg
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

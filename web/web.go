// Package web содержит встроенные HTML-шаблоны витрины.
package web

import "embed"

//go:embed hello.html
var Templates embed.FS

// Package ui holds the styles and small terminal widgets pulse's one-shot
// commands print with. The dashboard has its own palette in monitor.
package ui

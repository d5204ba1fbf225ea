// Package ui holds the terminal styles for CLI status lines.
//
// [Palette] wraps a handful of [lipgloss] styles behind the [Painter] interface so commands can
// print success, failure, and warning lines without knowing about colors. [Plain] disables styling.
package ui

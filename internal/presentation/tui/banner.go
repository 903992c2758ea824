package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown when a session starts.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Subtle gradient, cool blues into teal
	s1 := termenv.String(` _        _       _  __ _`).Foreground(p.Color("#60a5fa"))
	s2 := termenv.String(`| |_ _ __(_) __ _| |/ _| | _____      __`).Foreground(p.Color("#38bdf8"))
	s3 := termenv.String("| __| '__| |/ _` | | |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(`| |_| |  | | (_| | |  _| | (_) \ V  V /`).Foreground(p.Color("#2dd4bf"))
	s5 := termenv.String(` \__|_|  |_|\__,_|_|_| |_|\___/ \_/\_/`).Foreground(p.Color("#34d399"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("  v" + v).Foreground(p.Color("#94a3b8")).Italic())
	}
	fmt.Println()
}

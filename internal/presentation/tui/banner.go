package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the websession banner and version to w.
func PrintBanner(w io.Writer, profile termenv.Profile, version string) {
	s1 := profile.String(" _ _ _ ___ ___ ___ ___ ___ ___ _ ___ _ _ ").Foreground(profile.Color("#818cf8"))
	s2 := profile.String("| | | | -_| . |_ -| -_|_ -|_ -| | . | | |").Foreground(profile.Color("#c084fc"))
	s3 := profile.String("|_____|___|___|___|___|___|___|_|___|_|_|").Foreground(profile.Color("#f472b6"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, s1)
	fmt.Fprintln(w, s2)
	fmt.Fprintln(w, s3)
	fmt.Fprintf(w, "  version %s\n\n", strings.TrimSpace(version))
}

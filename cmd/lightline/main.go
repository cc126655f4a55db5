package main

import (
	"os"
	"strings"

	"lightline-cli/internal/cli"
)

// levelShortcut returns the level named by an "@name" token.
func levelShortcut(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") || len(s) == 1 {
		return "", false
	}
	return s[1:], true
}

// rewriteLevelShortcutArgs turns `lightline @intro` into `lightline tui intro`.
// Persistent flags may come first, so the first positional token is the one
// that counts.
func rewriteLevelShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":    true,
		"--level":  true,
		"--format": true,
	}

	rewrite := func(i int) []string {
		name, _ := levelShortcut(argv[i])
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "tui", name)
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if _, ok := levelShortcut(argv[i+1]); ok {
					return rewrite(i + 1)
				}
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if _, ok := levelShortcut(a); ok {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteLevelShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

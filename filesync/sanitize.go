package filesync

import (
	"regexp"
	"strings"
)

const (
	replacement = "!"
	maxNameLen  = 255
)

var (
	reserved     = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	repeated     = regexp.MustCompile(`!{2,}`)
	deviceNames  = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])$`)
	relativeName = regexp.MustCompile(`^\.+$`)
)

// Sanitize turns an object name into a name that is safe on every common
// file system.
func Sanitize(name string) string {
	if relativeName.MatchString(name) {
		return replacement
	}

	name = reserved.ReplaceAllString(name, replacement)
	name = repeated.ReplaceAllString(name, replacement)

	stem, ext, _ := strings.Cut(name, ".")
	if deviceNames.MatchString(stem) {
		name = stem + replacement
		if ext != "" {
			name += "." + ext
		}
	}

	if len(name) > maxNameLen {
		name = truncate(name, maxNameLen)
	}
	return name
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

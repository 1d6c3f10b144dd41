package parser

import "strings"

// SanitizeContent removes noise XML tags and converts command tags into a
// readable "/name args" form.
func SanitizeContent(s string) string {
	if IsCommandOutput(s) {
		if out := ExtractCommandOutput(s); out != "" {
			return out
		}
	}

	if strings.HasPrefix(s, "<command-name>") || strings.HasPrefix(s, "<command-message>") {
		if display := extractCommandDisplay(s); display != "" {
			return display
		}
	}

	result := s
	for _, pat := range noiseTagPatterns {
		result = pat.ReplaceAllString(result, "")
	}
	for _, pat := range commandTagPatterns {
		result = pat.ReplaceAllString(result, "")
	}
	result = reBashInput.ReplaceAllString(result, "$1")

	return strings.TrimSpace(result)
}

// extractCommandDisplay converts
// <command-name>/foo</command-name><command-args>bar</command-args> into "/foo bar".
func extractCommandDisplay(s string) string {
	m := reCommandName.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	name := "/" + strings.TrimSpace(m[1])
	if am := reCommandArgs.FindStringSubmatch(s); am != nil {
		if args := strings.TrimSpace(am[1]); args != "" {
			return name + " " + args
		}
	}
	return name
}

// ExtractCommandOutput returns the inner text of <local-command-stdout> or
// <local-command-stderr>, or "" if neither tag is present.
func ExtractCommandOutput(s string) string {
	if m := reStdout.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reStderr.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// IsCommandOutput reports whether s starts with a local-command output tag.
func IsCommandOutput(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, localCommandStdoutTag) || strings.HasPrefix(s, localCommandStderrTag)
}

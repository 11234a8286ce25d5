// Package masker redacts secret-shaped substrings from strings destined
// for output. It is applied both by analyzers that produce credential
// category findings and, defense-in-depth, by the report assembler on
// every finding's evidence field before serialization.
package masker

import "regexp"

// catalogEntry is a single secret shape the masker recognizes.
type catalogEntry struct {
	name    string
	pattern *regexp.Regexp
}

// catalog lists the fixed secret shapes. Every entry is matched against the
// whole input and overlapping matches are merged (see Mask), so entry order
// does not affect the result.
var catalog = []catalogEntry{
	{"aws_access_key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"github_token", regexp.MustCompile(`gh[posur]_[a-zA-Z0-9]{36}`)},
	{"pem_private_key", regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`)},
	{"generic_long_token", regexp.MustCompile(`[a-zA-Z0-9_-]{32,}`)},
}

// looseTokenPattern matches any single run of url-safe characters at least
// 20 long; such a run is masked even when no catalog entry above matches it
// (e.g. it falls short of generic_long_token's 32 char floor but still
// reads as a credential-shaped token).
var looseTokenPattern = regexp.MustCompile(`[A-Za-z0-9_-]{20,}`)

// maskMatch renders the masked form of a matched substring: the first four
// characters of the match followed by a fixed masked suffix.
func maskMatch(match string) string {
	prefixLen := 4
	if len(match) < prefixLen {
		prefixLen = len(match)
	}
	return match[:prefixLen] + "****[MASKED]"
}

// Mask returns s with every secret-shaped substring replaced by its masked
// form. Mask is idempotent: Mask(Mask(x)) == Mask(x). Overlapping or
// adjacent matches from any pattern are merged into one span before
// masking, so a match is never split.
func Mask(s string) string {
	type span struct{ start, end int }
	var spans []span

	markSpans := func(re *regexp.Regexp) {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	for _, entry := range catalog {
		markSpans(entry.pattern)
	}
	markSpans(looseTokenPattern)

	if len(spans) == 0 {
		return s
	}

	// Sort spans by start, then merge overlapping/adjacent spans so a
	// match is never split.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j-1].start > spans[j].start; j-- {
			spans[j-1], spans[j] = spans[j], spans[j-1]
		}
	}
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}

	var out []byte
	cursor := 0
	for _, sp := range merged {
		if sp.start < cursor {
			continue
		}
		out = append(out, s[cursor:sp.start]...)
		out = append(out, maskMatch(s[sp.start:sp.end])...)
		cursor = sp.end
	}
	out = append(out, s[cursor:]...)
	return string(out)
}

// Truncate bounds s to at most n characters (by byte length, which is
// sufficient for the ASCII-dominated evidence strings this package handles).
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Quarter values. Unknown is a valid outcome, never an error.
const (
	QuarterUnknown = "unknown"
	Q1             = "q1"
	Q2             = "q2"
	Q3             = "q3"
	Q4             = "q4"
)

// Statement scope values.
const (
	ScopeUnknown      = "unknown"
	ScopeConsolidated = "consolidated"
	ScopeStandalone   = "standalone"
)

// StatementInfo is the period metadata parsed from a statement's URL path.
type StatementInfo struct {
	// Year is the 4-digit reporting year, or empty when absent.
	Year string

	// Language is the statement language tag ("en" or "ar").
	Language string

	// Quarter is one of q1..q4 or "unknown".
	Quarter string

	// Scope is "consolidated", "standalone" or "unknown".
	Scope string
}

// Name returns the stable document name used to deduplicate statements:
// {year}_{language}_{quarter}_{scope}.pdf. Superseding re-fetches of the
// same statement produce the same name.
func (s StatementInfo) Name() string {
	year := s.Year
	if year == "" {
		year = "0000"
	}
	lang := s.Language
	if lang == "" {
		lang = "xx"
	}
	return fmt.Sprintf("%s_%s_%s_%s.pdf", year, lang, s.Quarter, s.Scope)
}

var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

// ParseStatementURL derives StatementInfo from a statement PDF link.
// Parsing is total: fields that cannot be determined come back as
// "unknown" (or empty Year) rather than an error. Matching is keyword
// based and case-insensitive, so it tolerates path layout changes.
func ParseStatementURL(rawURL, language string) StatementInfo {
	info := StatementInfo{
		Language: language,
		Quarter:  QuarterUnknown,
		Scope:    ScopeUnknown,
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	lower := strings.ToLower(path)

	// Scan path segments from the file name backwards so a year in a
	// parent directory ("/archive-2019/2024-q3.pdf") cannot shadow the
	// one in the statement's own name.
	segments := strings.Split(strings.Trim(lower, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if m := yearRe.FindString(segments[i]); m != "" {
			info.Year = m
			break
		}
	}

	switch {
	case strings.Contains(lower, "q1"), strings.Contains(lower, "march"):
		info.Quarter = Q1
	case strings.Contains(lower, "q2"), strings.Contains(lower, "june"):
		info.Quarter = Q2
	case strings.Contains(lower, "q3"), strings.Contains(lower, "september"):
		info.Quarter = Q3
	case strings.Contains(lower, "q4"), strings.Contains(lower, "december"):
		info.Quarter = Q4
	}

	switch {
	case strings.Contains(lower, "consolidat"),
		strings.Contains(lower, "condensed"),
		containsSegment(lower, "cs"):
		info.Scope = ScopeConsolidated
	case strings.Contains(lower, "standalone"),
		strings.Contains(lower, "separate"),
		containsSegment(lower, "sa"):
		info.Scope = ScopeStandalone
	}

	return info
}

// containsSegment reports whether token appears as a whole hyphen-,
// underscore- or slash-delimited segment of path. Bare substring matching
// would classify "q3-statements" as scope "sa".
func containsSegment(path, token string) bool {
	seg := func(r rune) bool {
		return r == '/' || r == '-' || r == '_' || r == '.'
	}
	for _, part := range strings.FieldsFunc(path, seg) {
		if part == token {
			return true
		}
	}
	return false
}

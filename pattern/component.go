// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// fullWildcardRegexpValue is the regexp behind '*', matching anything
// including the component delimiter.
const fullWildcardRegexpValue = ".*"

// compileOptions tune the compilation of a single component. The
// delimiter bounds segment wildcards and the prefix is the implicit
// leading code point of a group, '/' for pathname and '.' for hostname.
type compileOptions struct {
	delimiter  rune
	prefix     rune
	ignoreCase bool
}

var (
	defaultOptions  = compileOptions{}
	hostnameOptions = compileOptions{delimiter: '.', prefix: '.'}
	pathnameOptions = compileOptions{delimiter: '/', prefix: '/'}
)

func (o compileOptions) prefixString() string {
	if o.prefix == 0 {
		return ""
	}
	return string(o.prefix)
}

// segmentWildcardRegexp builds the regexp of an unnamed segment wildcard,
// a lazy run of anything but the delimiter.
func segmentWildcardRegexp(opts compileOptions) string {
	if opts.delimiter == 0 {
		// RE2 rejects the empty negated class, match anything instead.
		return `[\s\S]+?`
	}
	return "[^" + escapeRegexpString(string(opts.delimiter)) + "]+?"
}

// component is a compiled pattern component: its normalized pattern
// string, the equivalent regexp, the ordered group names and the part
// list it was generated from.
type component struct {
	patternString   string
	regexp          *regexp.Regexp
	groupNames      []string
	parts           []part
	hasRegexpGroups bool
}

// compileComponent parses input into a part list, canonicalizing fixed
// text through callback, then generates and compiles the equivalent
// regexp.
func compileComponent(input string, callback encodingCallback, opts compileOptions) (*component, error) {
	parts, err := parsePatternString(input, opts, callback)
	if err != nil {
		return nil, err
	}

	expr, names := generateRegularExpression(parts, opts)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrCompile, expr, err)
	}

	hasRegexpGroups := false
	for _, p := range parts {
		if p.typ == partRegexp {
			hasRegexpGroups = true
			break
		}
	}

	return &component{
		patternString:   generatePatternString(parts, opts),
		regexp:          re,
		groupNames:      names,
		parts:           parts,
		hasRegexpGroups: hasRegexpGroups,
	}, nil
}

func (c *component) match(input string) ([]string, bool) {
	m := c.regexp.FindStringSubmatch(input)
	if m == nil {
		return nil, false
	}
	return m, true
}

// generateRegularExpression renders the part list to an anchored regexp
// and returns the group names in capture order, per
// https://urlpattern.spec.whatwg.org/#generate-a-regular-expression-and-name-list.
func generateRegularExpression(parts []part, opts compileOptions) (string, []string) {
	var sb strings.Builder
	var names []string

	if opts.ignoreCase {
		sb.WriteString("(?i)")
	}
	sb.WriteByte('^')
	for _, p := range parts {
		if p.typ == partFixedText {
			if p.modifier == modifierNone {
				sb.WriteString(escapeRegexpString(p.value))
			} else {
				sb.WriteString("(?:")
				sb.WriteString(escapeRegexpString(p.value))
				sb.WriteByte(')')
				sb.WriteString(p.modifier.String())
			}
			continue
		}

		names = append(names, p.name)
		regexpValue := p.value
		switch p.typ {
		case partSegmentWildcard:
			regexpValue = segmentWildcardRegexp(opts)
		case partFullWildcard:
			regexpValue = fullWildcardRegexpValue
		}

		if p.prefix == "" && p.suffix == "" {
			if p.modifier == modifierNone || p.modifier == modifierOptional {
				sb.WriteByte('(')
				sb.WriteString(regexpValue)
				sb.WriteByte(')')
				sb.WriteString(p.modifier.String())
			} else {
				sb.WriteString("((?:")
				sb.WriteString(regexpValue)
				sb.WriteByte(')')
				sb.WriteString(p.modifier.String())
				sb.WriteByte(')')
			}
			continue
		}

		if p.modifier == modifierNone || p.modifier == modifierOptional {
			sb.WriteString("(?:")
			sb.WriteString(escapeRegexpString(p.prefix))
			sb.WriteByte('(')
			sb.WriteString(regexpValue)
			sb.WriteByte(')')
			sb.WriteString(escapeRegexpString(p.suffix))
			sb.WriteByte(')')
			sb.WriteString(p.modifier.String())
			continue
		}

		// One-or-more and zero-or-more with a prefix or suffix expand to a
		// first occurrence followed by any number of delimited repetitions.
		sb.WriteString("(?:")
		sb.WriteString(escapeRegexpString(p.prefix))
		sb.WriteString("((?:")
		sb.WriteString(regexpValue)
		sb.WriteString(")(?:")
		sb.WriteString(escapeRegexpString(p.suffix))
		sb.WriteString(escapeRegexpString(p.prefix))
		sb.WriteString("(?:")
		sb.WriteString(regexpValue)
		sb.WriteString("))*)")
		sb.WriteString(escapeRegexpString(p.suffix))
		sb.WriteByte(')')
		if p.modifier == modifierZeroOrMore {
			sb.WriteByte('?')
		}
	}
	sb.WriteByte('$')
	return sb.String(), names
}

// generatePatternString renders the part list back to a normalized
// pattern string that parses to the same parts.
func generatePatternString(parts []part, opts compileOptions) string {
	var sb strings.Builder
	for i, p := range parts {
		var prev, next *part
		if i > 0 {
			prev = &parts[i-1]
		}
		if i+1 < len(parts) {
			next = &parts[i+1]
		}

		if p.typ == partFixedText {
			if p.modifier == modifierNone {
				sb.WriteString(escapePatternString(p.value))
				continue
			}
			sb.WriteByte('{')
			sb.WriteString(escapePatternString(p.value))
			sb.WriteByte('}')
			sb.WriteString(p.modifier.String())
			continue
		}

		customName := len(p.name) > 0 && (p.name[0] < '0' || p.name[0] > '9')
		needsGrouping := p.suffix != "" || (p.prefix != "" && p.prefix != opts.prefixString())

		if !needsGrouping && customName && p.typ == partSegmentWildcard && p.modifier == modifierNone &&
			next != nil && next.prefix == "" && next.suffix == "" {
			if next.typ == partFixedText {
				r := firstRune(next.value)
				needsGrouping = r != 0 && isNameCodePoint(r, false)
			} else {
				needsGrouping = len(next.name) > 0 && next.name[0] >= '0' && next.name[0] <= '9'
			}
		}

		if !needsGrouping && p.prefix == "" && prev != nil && prev.typ == partFixedText &&
			strings.HasSuffix(prev.value, opts.prefixString()) && opts.prefix != 0 {
			needsGrouping = true
		}

		if needsGrouping {
			sb.WriteByte('{')
		}
		sb.WriteString(escapePatternString(p.prefix))
		if customName {
			sb.WriteByte(':')
			sb.WriteString(p.name)
		}
		switch p.typ {
		case partRegexp:
			sb.WriteByte('(')
			sb.WriteString(p.value)
			sb.WriteByte(')')
		case partSegmentWildcard:
			if !customName {
				sb.WriteByte('(')
				sb.WriteString(segmentWildcardRegexp(opts))
				sb.WriteByte(')')
			}
		case partFullWildcard:
			if !customName && (prev == nil || prev.typ == partFixedText || prev.modifier != modifierNone ||
				needsGrouping || p.prefix != "") {
				sb.WriteByte('*')
			} else {
				sb.WriteByte('(')
				sb.WriteString(fullWildcardRegexpValue)
				sb.WriteByte(')')
			}
		}
		if p.typ == partSegmentWildcard && customName && p.suffix != "" {
			if r := firstRune(p.suffix); r != 0 && isNameCodePoint(r, false) {
				sb.WriteByte('\\')
			}
		}
		sb.WriteString(escapePatternString(p.suffix))
		if needsGrouping {
			sb.WriteByte('}')
		}
		sb.WriteString(p.modifier.String())
	}
	return sb.String()
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// Bitmaps used to check whether an ASCII character needs escaping,
// adapted from the regexp package QuoteMeta with '/' added to the regexp
// list.
var specialRegexpBytes [16]byte
var specialPatternBytes [16]byte

func init() {
	for _, b := range []byte(`\.+*?()|[]{}^$/`) {
		specialRegexpBytes[b%16] |= 1 << (b / 16)
	}
	for _, b := range []byte(`\+*?(){}:`) {
		specialPatternBytes[b%16] |= 1 << (b / 16)
	}
}

func specialRegexp(b byte) bool {
	return b < 0x80 && specialRegexpBytes[b%16]&(1<<(b/16)) != 0
}

func specialPattern(b byte) bool {
	return b < 0x80 && specialPatternBytes[b%16]&(1<<(b/16)) != 0
}

// escapeRegexpString backslash-escapes every regexp metacharacter in s.
func escapeRegexpString(s string) string {
	return escapeString(s, specialRegexp)
}

// escapePatternString backslash-escapes every pattern metacharacter in s.
func escapePatternString(s string) string {
	return escapeString(s, specialPattern)
}

func escapeString(s string, special func(byte) bool) string {
	// A byte loop is correct because all metacharacters are ASCII.
	var i int
	for i = 0; i < len(s); i++ {
		if special(s[i]) {
			break
		}
	}
	if i >= len(s) {
		return s
	}

	b := make([]byte, 2*len(s)-i)
	copy(b, s[:i])
	j := i
	for ; i < len(s); i++ {
		if special(s[i]) {
			b[j] = '\\'
			j++
		}
		b[j] = s[i]
		j++
	}
	return string(b[:j])
}

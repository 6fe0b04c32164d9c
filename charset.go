// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"strings"

	"github.com/tigerwill90/wurl/internal/stringutil"
)

// charset is a 256-bit bitmap indexed by byte. A set bit means the byte
// must be percent-encoded when written through the set.
type charset [32]byte

func (s *charset) has(b byte) bool {
	return s[b>>3]&(1<<(b&7)) != 0
}

func (s *charset) add(b byte) {
	s[b>>3] |= 1 << (b & 7)
}

func (s *charset) addRange(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		s.add(byte(b))
	}
}

func (s *charset) addAll(bytes string) {
	for i := 0; i < len(bytes); i++ {
		s.add(bytes[i])
	}
}

// Percent-encode sets defined by the WHATWG URL Standard. Each set extends
// the set it is built from in init, see
// https://url.spec.whatwg.org/#percent-encoded-bytes.
var (
	c0ControlSet      charset
	fragmentSet       charset
	querySet          charset
	specialQuerySet   charset
	pathSet           charset
	userinfoSet       charset
	componentSet      charset
	formURLEncodedSet charset
)

func init() {
	c0ControlSet.addRange(0x00, 0x1f)
	c0ControlSet.addRange(0x7f, 0xff)

	fragmentSet = c0ControlSet
	fragmentSet.addAll(" \"<>`")

	querySet = c0ControlSet
	querySet.addAll(" \"#<>")

	specialQuerySet = querySet
	specialQuerySet.add('\'')

	pathSet = querySet
	pathSet.addAll("?`{}")

	userinfoSet = pathSet
	userinfoSet.addAll("/:;=@[\\]^|")

	componentSet = userinfoSet
	componentSet.addAll("$%&+,")

	formURLEncodedSet = componentSet
	formURLEncodedSet.addAll("!'()~")
}

func isASCIIAlpha(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isASCIIDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isASCIIAlphanumeric(b byte) bool {
	return isASCIIAlpha(b) || isASCIIDigit(b)
}

func isASCIIHexDigit(b byte) bool {
	return isASCIIDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

// isSchemeChar reports whether b may appear in a scheme past the first
// code point, i.e. it is alphanumeric, '+', '-' or '.'.
func isSchemeChar(b byte) bool {
	return isASCIIAlphanumeric(b) || b == '+' || b == '-' || b == '.'
}

func isASCIITabOrNewline(b byte) bool {
	return b == '\t' || b == '\n' || b == '\r'
}

func isC0ControlOrSpace(b byte) bool {
	return b <= ' '
}

// isForbiddenHostByte reports whether b is a forbidden host code point,
// see https://url.spec.whatwg.org/#forbidden-host-code-point.
func isForbiddenHostByte(b byte) bool {
	switch b {
	case 0x00, '\t', '\n', '\r', ' ', '#', '/', ':', '<', '>', '?', '@', '[', '\\', ']', '^', '|':
		return true
	}
	return false
}

// isForbiddenDomainByte reports whether b is a forbidden domain code point,
// which adds '%' and all C0 controls to the forbidden host code points.
func isForbiddenDomainByte(b byte) bool {
	return isForbiddenHostByte(b) || b == '%' || b <= 0x1f || b == 0x7f
}

// isSingleDotSegment reports whether the path segment is "." or an ASCII
// case-insensitive match for "%2e".
func isSingleDotSegment(s string) bool {
	switch len(s) {
	case 1:
		return s[0] == '.'
	case 3:
		return stringutil.EqualASCIIIgnoreCase(s, "%2e")
	}
	return false
}

// isDoubleDotSegment reports whether the path segment is ".." or any ASCII
// case-insensitive mix of "." and "%2e", e.g. ".%2e" or "%2E%2e".
func isDoubleDotSegment(s string) bool {
	switch len(s) {
	case 2:
		return s == ".."
	case 4:
		return isSingleDotSegment(s[:1]) && isSingleDotSegment(s[1:]) ||
			isSingleDotSegment(s[:3]) && isSingleDotSegment(s[3:])
	case 6:
		return isSingleDotSegment(s[:3]) && isSingleDotSegment(s[3:])
	}
	return false
}

// hasTabOrNewline is a fast scan for '\t', '\n' and '\r'. Most inputs have
// none, in which case the parser avoids a filtered copy.
func hasTabOrNewline(s string) bool {
	return strings.IndexByte(s, '\t') >= 0 || strings.IndexByte(s, '\n') >= 0 || strings.IndexByte(s, '\r') >= 0
}

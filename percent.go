// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"strings"

	"github.com/tigerwill90/wurl/internal/bytesconv"
)

const upperhex = "0123456789ABCDEF"

func unhex(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}

// percentDecode decodes every valid %HH sequence in s starting at
// firstPercent, the index of the first '%' byte (-1 when s has none, in
// which case s is returned unchanged). A '%' that is not followed by two
// hex digits is preserved verbatim. This is the single point where invalid
// percent sequences survive decoding.
func percentDecode(s string, firstPercent int) string {
	if firstPercent < 0 {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s))
	buf.WriteString(s[:firstPercent])
	for i := firstPercent; i < len(s); i++ {
		if s[i] != '%' || i+2 >= len(s) || unhex(s[i+1]) < 0 || unhex(s[i+2]) < 0 {
			buf.WriteByte(s[i])
			continue
		}
		buf.WriteByte(byte(unhex(s[i+1])<<4 | unhex(s[i+2])))
		i += 2
	}
	return buf.String()
}

// percentEncode writes s through set, replacing every byte whose bit is set
// with its uppercase %HH form.
func percentEncode(s string, set *charset) string {
	out, _ := percentEncodeChanged(s, set)
	return out
}

// percentEncodeChanged is percentEncode plus a flag reporting whether any
// byte actually required encoding, which lets callers keep the original
// string when nothing changed.
func percentEncodeChanged(s string, set *charset) (string, bool) {
	var i int
	for i = 0; i < len(s); i++ {
		if set.has(s[i]) {
			break
		}
	}
	if i == len(s) {
		return s, false
	}

	buf := make([]byte, 0, len(s)+2*(len(s)-i))
	buf = append(buf, s[:i]...)
	for ; i < len(s); i++ {
		b := s[i]
		if set.has(b) {
			buf = append(buf, '%', upperhex[b>>4], upperhex[b&0xf])
		} else {
			buf = append(buf, b)
		}
	}
	return bytesconv.String(buf), true
}

// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import "strings"

// isWindowsDriveLetter reports whether the segment is exactly an ascii
// letter followed by ':' or '|'.
func isWindowsDriveLetter(s string) bool {
	return len(s) == 2 && isASCIIAlpha(s[0]) && (s[1] == ':' || s[1] == '|')
}

// isNormalizedWindowsDriveLetter requires the ':' form.
func isNormalizedWindowsDriveLetter(s string) bool {
	return len(s) == 2 && isASCIIAlpha(s[0]) && s[1] == ':'
}

// startsWithWindowsDriveLetter reports whether s begins with a Windows
// drive letter that is either the whole string or followed by a path,
// query or fragment delimiter.
func startsWithWindowsDriveLetter(s string) bool {
	if len(s) < 2 || !isASCIIAlpha(s[0]) || (s[1] != ':' && s[1] != '|') {
		return false
	}
	if len(s) == 2 {
		return true
	}
	switch s[2] {
	case '/', '\\', '?', '#':
		return true
	}
	return false
}

// shortenPath drops the last path segment unless the url is a file url
// whose path is a lone normalized Windows drive letter. It reports whether
// the path changed.
func shortenPath(path []string, t schemeType) ([]string, bool) {
	if t == schemeFile && len(path) == 1 && isNormalizedWindowsDriveLetter(path[0]) {
		return path, false
	}
	if len(path) == 0 {
		return path, false
	}
	return path[:len(path)-1], true
}

// parsePreparedPath consumes a path view already stripped of its query and
// fragment, splitting on '/' (and '\' for special urls), applying the
// single-dot and double-dot rules and percent-encoding each segment with
// the path set. The segments are appended to u.path.
func (u *URL) parsePreparedPath(view string) {
	special := u.IsSpecial()
	pos := 0
	for {
		sep := -1
		if special {
			sep = strings.IndexAny(view[pos:], "/\\")
		} else {
			sep = strings.IndexByte(view[pos:], '/')
		}
		var segment string
		last := sep < 0
		if last {
			segment = view[pos:]
		} else {
			segment = view[pos : pos+sep]
		}

		switch {
		case isDoubleDotSegment(segment):
			u.path, _ = shortenPath(u.path, u.schemeType)
			if last {
				u.path = append(u.path, "")
			}
		case isSingleDotSegment(segment):
			if last {
				u.path = append(u.path, "")
			}
		default:
			if u.schemeType == schemeFile && len(u.path) == 0 && isWindowsDriveLetter(segment) {
				segment = segment[:1] + ":"
			}
			u.path = append(u.path, percentEncode(segment, &pathSet))
		}

		if last {
			return
		}
		pos += sep + 1
	}
}

// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import "github.com/tigerwill90/wurl/internal/stringutil"

// schemeType discriminates the special schemes so the parser can branch on
// an integer instead of comparing strings.
type schemeType uint8

const (
	schemeNotSpecial schemeType = iota
	schemeHTTP
	schemeHTTPS
	schemeWS
	schemeWSS
	schemeFTP
	schemeFile
)

// specialSchemes maps every special scheme to its default port. A zero
// value means the scheme has no default port.
var specialSchemes = map[string]uint16{
	"ftp":   21,
	"file":  0,
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
}

func schemeTypeOf(scheme string) schemeType {
	switch scheme {
	case "http":
		return schemeHTTP
	case "https":
		return schemeHTTPS
	case "ws":
		return schemeWS
	case "wss":
		return schemeWSS
	case "ftp":
		return schemeFTP
	case "file":
		return schemeFile
	default:
		return schemeNotSpecial
	}
}

// DefaultPort returns the default port of a special scheme and whether the
// scheme has one. The file scheme is special but has no default port.
func DefaultPort(scheme string) (uint16, bool) {
	port, ok := specialSchemes[scheme]
	if !ok || port == 0 {
		return 0, false
	}
	return port, true
}

// IsSpecialScheme reports whether scheme is one of ftp, file, http, https,
// ws or wss.
func IsSpecialScheme(scheme string) bool {
	_, ok := specialSchemes[scheme]
	return ok
}

// toLowerScheme lowercases s in place of the usual strings.ToLower to avoid
// the unicode machinery, schemes being ASCII by construction.
func toLowerScheme(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	buf := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		buf[i] = stringutil.ToLowerASCII(s[i])
	}
	return string(buf)
}

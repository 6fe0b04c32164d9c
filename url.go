// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tigerwill90/wurl/internal/bytesconv"
)

// URL is a normalized WHATWG url record. The zero value is not usable,
// records are produced by [Parse] and [ParseRef] and mutated only through
// setters which preserve the record invariants. A URL is not safe for
// concurrent mutation.
type URL struct {
	scheme      string
	username    string
	password    string
	opaque      string
	query       string
	fragment    string
	path        []string
	host        host
	port        int
	schemeType  schemeType
	opaquePath  bool
	hasQuery    bool
	hasFragment bool
	valid       bool
}

func newURL() *URL {
	return &URL{port: -1, valid: true}
}

// IsSpecial reports whether the url scheme is one of ftp, file, http,
// https, ws or wss.
func (u *URL) IsSpecial() bool {
	return u.schemeType != schemeNotSpecial
}

// HasOpaquePath reports whether the path is a single opaque string, as for
// mailto: or data: urls.
func (u *URL) HasOpaquePath() bool {
	return u.opaquePath
}

// Scheme returns the lowercased url scheme, without the trailing colon.
func (u *URL) Scheme() string {
	return u.scheme
}

// Protocol returns the scheme followed by ':'.
func (u *URL) Protocol() string {
	return u.scheme + ":"
}

// Username returns the percent-encoded username.
func (u *URL) Username() string {
	return u.username
}

// Password returns the percent-encoded password.
func (u *URL) Password() string {
	return u.password
}

// Hostname returns the serialized host, without the port.
func (u *URL) Hostname() string {
	return u.host.value
}

// Host returns the serialized host followed by ':' and the port when one
// is recorded.
func (u *URL) Host() string {
	if u.host.isNull() {
		return ""
	}
	if u.port < 0 {
		return u.host.value
	}
	return u.host.value + ":" + strconv.Itoa(u.port)
}

// Port returns the decimal port, or the empty string when the port is
// absent or equals the scheme default.
func (u *URL) Port() string {
	if u.port < 0 {
		return ""
	}
	return strconv.Itoa(u.port)
}

// Pathname returns the serialized path: the opaque string for an opaque
// path, otherwise every segment prefixed by '/'.
func (u *URL) Pathname() string {
	if u.opaquePath {
		return u.opaque
	}
	if len(u.path) == 0 {
		return ""
	}
	n := len(u.path)
	for _, seg := range u.path {
		n += len(seg)
	}
	buf := make([]byte, 0, n)
	for _, seg := range u.path {
		buf = append(buf, '/')
		buf = append(buf, seg...)
	}
	return bytesconv.String(buf)
}

// Search returns the query prefixed by '?', or the empty string when the
// query is null or empty.
func (u *URL) Search() string {
	if !u.hasQuery || u.query == "" {
		return ""
	}
	return "?" + u.query
}

// Query returns the query without the '?' prefix. The null and empty
// queries are both returned as "", use [URL.HasQuery] to distinguish them.
func (u *URL) Query() string {
	return u.query
}

// HasQuery reports whether the query is non-null; a url ending with a bare
// '?' has an empty, non-null query.
func (u *URL) HasQuery() bool {
	return u.hasQuery
}

// Hash returns the fragment prefixed by '#', or the empty string when the
// fragment is null or empty.
func (u *URL) Hash() string {
	if !u.hasFragment || u.fragment == "" {
		return ""
	}
	return "#" + u.fragment
}

// Fragment returns the fragment without the '#' prefix.
func (u *URL) Fragment() string {
	return u.fragment
}

// Href serializes the record per https://url.spec.whatwg.org/#url-serializing.
// The serialization round-trips: parsing it again yields an equal record.
func (u *URL) Href() string {
	var buf strings.Builder
	buf.Grow(len(u.scheme) + len(u.opaque) + 16)
	buf.WriteString(u.scheme)
	buf.WriteByte(':')
	if !u.host.isNull() {
		buf.WriteString("//")
		if u.username != "" || u.password != "" {
			buf.WriteString(u.username)
			if u.password != "" {
				buf.WriteByte(':')
				buf.WriteString(u.password)
			}
			buf.WriteByte('@')
		}
		buf.WriteString(u.host.value)
		if u.port >= 0 {
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(u.port))
		}
	} else if !u.opaquePath && len(u.path) > 1 && u.path[0] == "" {
		// A host-less url whose path starts with an empty segment would
		// serialize with a leading "//" and reparse as an authority.
		buf.WriteString("/.")
	}
	buf.WriteString(u.Pathname())
	if u.hasQuery {
		buf.WriteByte('?')
		buf.WriteString(u.query)
	}
	if u.hasFragment {
		buf.WriteByte('#')
		buf.WriteString(u.fragment)
	}
	return buf.String()
}

// String is an alias for [URL.Href].
func (u *URL) String() string {
	return u.Href()
}

// Equal reports whether two records serialize identically field by field.
func (u *URL) Equal(other *URL) bool {
	if other == nil {
		return false
	}
	return u.scheme == other.scheme &&
		u.username == other.username &&
		u.password == other.password &&
		u.host == other.host &&
		u.port == other.port &&
		u.opaquePath == other.opaquePath &&
		u.opaque == other.opaque &&
		slices.Equal(u.path, other.path) &&
		u.hasQuery == other.hasQuery &&
		u.query == other.query &&
		u.hasFragment == other.hasFragment &&
		u.fragment == other.fragment
}

func (u *URL) clone() *URL {
	clone := *u
	clone.path = slices.Clone(u.path)
	return &clone
}

// parseScheme validates and records the scheme, without its trailing
// colon. It returns false on an invalid scheme.
func (u *URL) parseScheme(s string) bool {
	if s == "" || !isASCIIAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isSchemeChar(s[i]) {
			return false
		}
	}
	u.scheme = toLowerScheme(s)
	u.schemeType = schemeTypeOf(u.scheme)
	return true
}

func (u *URL) copyScheme(base *URL) {
	u.scheme = base.scheme
	u.schemeType = base.schemeType
}

func (u *URL) setProtocolAsFile() {
	u.scheme = "file"
	u.schemeType = schemeFile
}

// parseHost parses view and records the result, honoring the special
// scheme of the record.
func (u *URL) parseHost(view string, transitional bool) error {
	h, err := parseHost(view, !u.IsSpecial(), transitional)
	if err != nil {
		u.valid = false
		return err
	}
	u.host = h
	return nil
}

// parsePort consumes the longest digit prefix of view and returns how many
// bytes were consumed. The port is dropped when it equals the scheme
// default and the record is invalidated when the value exceeds 65535 or
// the digits are followed by anything but a path, query or fragment
// delimiter.
func (u *URL) parsePort(view string) (int, error) {
	value, digits := 0, 0
	overflow := false
	for digits < len(view) && isASCIIDigit(view[digits]) {
		if !overflow {
			value = value*10 + int(view[digits]-'0')
			if value > 65535 {
				overflow = true
			}
		}
		digits++
	}
	if digits < len(view) {
		switch {
		case view[digits] == '/' || view[digits] == '?':
		case view[digits] == '\\' && u.IsSpecial():
		default:
			u.valid = false
			return digits, ErrInvalidPort
		}
	}
	if digits == 0 {
		return 0, nil
	}
	if overflow {
		u.valid = false
		return digits, ErrPortOutOfRange
	}
	if def, ok := DefaultPort(u.scheme); ok && int(def) == value {
		u.port = -1
	} else {
		u.port = value
	}
	return digits, nil
}

func (u *URL) clearSearch() {
	u.query = ""
	u.hasQuery = false
}

func (u *URL) clearPathname() {
	u.path = u.path[:0]
	u.opaque = ""
	u.opaquePath = false
}

// hasCredentials reports whether a username or password is recorded.
func (u *URL) hasCredentials() bool {
	return u.username != "" || u.password != ""
}

// cannotHaveCredentialsOrPort reports whether the record rejects userinfo
// and port mutation: a missing or empty host, or the file scheme.
func (u *URL) cannotHaveCredentialsOrPort() bool {
	return u.host.isNull() || u.host.isEmpty() || u.schemeType == schemeFile
}

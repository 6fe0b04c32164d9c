// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"fmt"
	"strings"
)

// The setters mirror the URL interface of the WHATWG standard. Every
// setter re-runs the relevant sub-parser on a scratch value and commits
// only on success, a failing setter leaves the record untouched.

// SetHref reparses href from scratch and replaces the whole record.
func (u *URL) SetHref(href string) error {
	parsed, err := Parse(href)
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}

// SetProtocol changes the url scheme. The value may carry a trailing ':'
// and anything after it is ignored. Transitions between special and
// non-special schemes are rejected, as is any scheme change that would
// leave the record in violation of its invariants.
func (u *URL) SetProtocol(protocol string) error {
	if i := strings.IndexByte(protocol, ':'); i >= 0 {
		protocol = protocol[:i]
	}
	scratch := newURL()
	if !scratch.parseScheme(protocol) {
		return fmt.Errorf("%w: %w", ErrImmutable, ErrInvalidScheme)
	}
	if u.IsSpecial() != scratch.IsSpecial() {
		return fmt.Errorf("%w: cannot change a special scheme to a non-special scheme", ErrImmutable)
	}
	if scratch.schemeType == schemeFile && (u.hasCredentials() || u.port >= 0) {
		return fmt.Errorf("%w: file urls cannot carry credentials or a port", ErrImmutable)
	}
	if u.schemeType == schemeFile && u.host.isEmpty() {
		return fmt.Errorf("%w: file url without host", ErrImmutable)
	}
	u.scheme = scratch.scheme
	u.schemeType = scratch.schemeType
	if def, ok := DefaultPort(u.scheme); ok && u.port == int(def) {
		u.port = -1
	}
	return nil
}

// SetUsername replaces the username with the percent-encoded value.
func (u *URL) SetUsername(username string) error {
	if u.cannotHaveCredentialsOrPort() {
		return fmt.Errorf("%w: url cannot carry credentials", ErrImmutable)
	}
	u.username = EncodeUserinfo(username)
	return nil
}

// SetPassword replaces the password with the percent-encoded value.
func (u *URL) SetPassword(password string) error {
	if u.cannotHaveCredentialsOrPort() {
		return fmt.Errorf("%w: url cannot carry credentials", ErrImmutable)
	}
	u.password = EncodeUserinfo(password)
	return nil
}

// SetHost parses value as host[:port] and replaces both. An empty port
// part leaves the current port untouched.
func (u *URL) SetHost(value string) error {
	if u.opaquePath {
		return fmt.Errorf("%w: url with an opaque path", ErrImmutable)
	}
	h, port, err := u.parseHostWithOptionalPort(value, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImmutable, err)
	}
	u.host = h
	if port != -2 {
		u.port = port
	}
	return nil
}

// SetHostname replaces the host, rejecting any port part.
func (u *URL) SetHostname(value string) error {
	if u.opaquePath {
		return fmt.Errorf("%w: url with an opaque path", ErrImmutable)
	}
	h, _, err := u.parseHostWithOptionalPort(value, true)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImmutable, err)
	}
	u.host = h
	return nil
}

// SetPort sets the port from the longest digit prefix of value, dropping
// it when it equals the scheme default. An empty value removes the port.
func (u *URL) SetPort(value string) error {
	if u.cannotHaveCredentialsOrPort() {
		return fmt.Errorf("%w: url cannot carry a port", ErrImmutable)
	}
	if value == "" {
		u.port = -1
		return nil
	}
	digits := 0
	port := 0
	for digits < len(value) && isASCIIDigit(value[digits]) {
		port = port*10 + int(value[digits]-'0')
		if port > 65535 {
			return fmt.Errorf("%w: %w", ErrImmutable, ErrPortOutOfRange)
		}
		digits++
	}
	if digits == 0 {
		return fmt.Errorf("%w: %w", ErrImmutable, ErrInvalidPort)
	}
	if def, ok := DefaultPort(u.scheme); ok && int(def) == port {
		u.port = -1
	} else {
		u.port = port
	}
	return nil
}

// SetPathname replaces the path, running the value through the path start
// sub-parser. Urls with an opaque path reject the mutation.
func (u *URL) SetPathname(value string) error {
	if u.opaquePath {
		return fmt.Errorf("%w: url with an opaque path", ErrImmutable)
	}
	scratch := u.clone()
	scratch.path = scratch.path[:0]
	view := value
	if len(view) > 0 && (view[0] == '/' || u.IsSpecial() && view[0] == '\\') {
		view = view[1:]
	}
	scratch.parsePreparedPath(view)
	u.path = scratch.path
	return nil
}

// SetSearch replaces the query. An empty value nulls the query, otherwise
// an optional leading '?' is stripped and the rest percent-encoded with
// the scheme's query set.
func (u *URL) SetSearch(value string) error {
	if value == "" {
		u.clearSearch()
		return nil
	}
	value = strings.TrimPrefix(value, "?")
	u.query = EncodeQuery(value, u.IsSpecial())
	u.hasQuery = true
	return nil
}

// SetHash replaces the fragment. An empty value nulls the fragment,
// otherwise an optional leading '#' is stripped and the rest
// percent-encoded with the fragment set.
func (u *URL) SetHash(value string) error {
	if value == "" {
		u.fragment = ""
		u.hasFragment = false
		return nil
	}
	value = strings.TrimPrefix(value, "#")
	u.fragment = EncodeFragment(value)
	u.hasFragment = true
	return nil
}

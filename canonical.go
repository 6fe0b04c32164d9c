// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

// The helpers below expose the per-component sub-parsers used by the url
// setters and by the pattern compiler canonicalizers. Each one runs the
// same code path as the main state machine.

// EncodeUserinfo percent-encodes s with the userinfo percent-encode set.
func EncodeUserinfo(s string) string {
	return percentEncode(s, &userinfoSet)
}

// EncodeQuery percent-encodes s with the query set, or the special-query
// set when special is true.
func EncodeQuery(s string, special bool) string {
	if special {
		return percentEncode(s, &specialQuerySet)
	}
	return percentEncode(s, &querySet)
}

// EncodeFragment percent-encodes s with the fragment percent-encode set.
func EncodeFragment(s string) string {
	return percentEncode(s, &fragmentSet)
}

// EncodeOpaquePath percent-encodes s the way the opaque path state does,
// with the C0 control set.
func EncodeOpaquePath(s string) string {
	return percentEncode(s, &c0ControlSet)
}

// NormalizeScheme lowercases and validates a scheme, without a trailing
// colon.
func NormalizeScheme(s string) (string, error) {
	u := newURL()
	if !u.parseScheme(s) {
		return "", ErrInvalidScheme
	}
	return u.scheme, nil
}

// NormalizeHostname parses s as a host in the context of a special (or
// not) scheme and returns its serialized form.
func NormalizeHostname(s string, special bool) (string, error) {
	if s == "" {
		return "", nil
	}
	h, err := parseHost(s, !special, false)
	if err != nil {
		return "", err
	}
	return h.value, nil
}

// NormalizePort validates a decimal port string and returns its canonical
// form, the empty string when it equals the scheme default.
func NormalizePort(port, scheme string) (string, error) {
	if port == "" {
		return "", nil
	}
	value := 0
	for i := 0; i < len(port); i++ {
		if !isASCIIDigit(port[i]) {
			return "", ErrInvalidPort
		}
		value = value*10 + int(port[i]-'0')
		if value > 65535 {
			return "", ErrPortOutOfRange
		}
	}
	if def, ok := DefaultPort(scheme); ok && int(def) == value {
		return "", nil
	}
	u := newURL()
	u.scheme = scheme
	u.schemeType = schemeTypeOf(scheme)
	u.port = value
	return u.Port(), nil
}

// NormalizePathname runs s through the path start sub-parser of a special
// url and returns the serialized pathname.
func NormalizePathname(s string) string {
	u := newURL()
	u.scheme = "http"
	u.schemeType = schemeHTTP
	view := s
	if len(view) > 0 && (view[0] == '/' || view[0] == '\\') {
		view = view[1:]
	}
	u.parsePreparedPath(view)
	return u.Pathname()
}

// parseHostWithOptionalPort implements the host setter grammar: a host
// optionally followed by ':' and a decimal port. The returned port is -2
// when s carries no port part at all, and -1 when the port equals the
// scheme default and must be stored as absent.
func (u *URL) parseHostWithOptionalPort(s string, hostnameOnly bool) (host, int, error) {
	loc, foundColon := findHostDelimiter(s, u.IsSpecial())
	hostView := s
	if loc != len(s) && !foundColon {
		// A path, query or fragment delimiter ends the host, the rest of
		// the input is ignored like the basic parser would.
		hostView = s[:loc]
	}
	port := -2
	if foundColon {
		if hostnameOnly {
			return host{}, 0, ErrInvalidHost
		}
		hostView = s[:loc]
		rest := s[loc+1:]
		if rest != "" {
			value := 0
			for i := 0; i < len(rest); i++ {
				if !isASCIIDigit(rest[i]) {
					if i > 0 {
						break
					}
					return host{}, 0, ErrInvalidPort
				}
				value = value*10 + int(rest[i]-'0')
				if value > 65535 {
					return host{}, 0, ErrPortOutOfRange
				}
			}
			if def, ok := DefaultPort(u.scheme); ok && int(def) == value {
				port = -1
			} else {
				port = value
			}
		}
	}
	if hostView == "" && u.IsSpecial() {
		return host{}, 0, ErrMissingHost
	}
	if hostView == "" {
		return host{kind: hostEmpty}, port, nil
	}
	h, err := parseHost(hostView, !u.IsSpecial(), false)
	if err != nil {
		return host{}, 0, err
	}
	return h, port, nil
}


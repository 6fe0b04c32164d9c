// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"math"
	"strings"
)

type parseState uint8

const (
	stateSchemeStart parseState = iota
	stateScheme
	stateNoScheme
	stateSpecialRelativeOrAuthority
	statePathOrAuthority
	stateRelative
	stateRelativeSlash
	stateSpecialAuthoritySlashes
	stateSpecialAuthorityIgnoreSlashes
	stateAuthority
	stateHost
	statePort
	statePathStart
	statePath
	stateOpaquePath
	stateQuery
	stateFile
	stateFileSlash
	stateFileHost
)

// Parse parses rawURL into a normalized [URL] record per the WHATWG URL
// Standard. It returns a [ParseError] wrapping [ErrParse] on failure, and
// never a partial record.
func Parse(rawURL string, opts ...Option) (*URL, error) {
	return ParseRef(rawURL, nil, opts...)
}

// ParseRef parses rawURL resolved against the optional base url, which
// must itself be the product of a successful parse. A nil base parses
// rawURL as an absolute url.
func ParseRef(rawURL string, base *URL, opts ...Option) (*URL, error) {
	cfg := new(config)
	for _, opt := range opts {
		opt.apply(cfg)
	}
	u, err := parseURL(rawURL, base, cfg)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// parseURL drives the state machine over the pre-cleaned input. Apart from
// the single rewind to 0 when no scheme is found, the cursor never
// decreases and each state either advances it or switches state, so the
// work stays O(n) plus the cost of the host parser.
func parseURL(input string, base *URL, cfg *config) (*URL, error) {
	u := newURL()

	// Inputs of 4GB and more are surely a bug or an attack.
	if len(input) > math.MaxUint32 {
		return nil, newParseError(ErrInputTooLong, "")
	}

	data := input
	if hasTabOrNewline(data) {
		cfg.report(newParseError(ErrTabNewline, input))
		var b strings.Builder
		b.Grow(len(data))
		for i := 0; i < len(data); i++ {
			if !isASCIITabOrNewline(data[i]) {
				b.WriteByte(data[i])
			}
		}
		data = b.String()
	}

	start, end := 0, len(data)
	for start < end && isC0ControlOrSpace(data[start]) {
		start++
	}
	for end > start && isC0ControlOrSpace(data[end-1]) {
		end--
	}
	data = data[start:end]

	// Splitting the fragment off first keeps fragment logic out of every
	// state, the fragment is attached once after the loop.
	var fragment string
	hasFragment := false
	if i := strings.IndexByte(data, '#'); i >= 0 {
		fragment = data[i+1:]
		hasFragment = true
		data = data[:i]
	}

	state := stateSchemeStart
	pos, size := 0, len(data)

loop:
	for pos <= size {
		switch state {
		case stateSchemeStart:
			if pos != size && isASCIIAlpha(data[pos]) {
				state = stateScheme
				pos++
			} else {
				state = stateNoScheme
			}

		case stateScheme:
			for pos != size && isSchemeChar(data[pos]) {
				pos++
			}
			if pos == size || data[pos] != ':' {
				state = stateNoScheme
				pos = 0
				continue
			}
			if !u.parseScheme(data[:pos]) {
				return nil, newParseError(ErrInvalidScheme, input)
			}
			switch {
			case u.schemeType == schemeFile:
				state = stateFile
			case u.IsSpecial() && base != nil && base.scheme == u.scheme:
				state = stateSpecialRelativeOrAuthority
			case u.IsSpecial():
				state = stateSpecialAuthoritySlashes
			case pos+1 < size && data[pos+1] == '/':
				state = statePathOrAuthority
				pos++
			default:
				state = stateOpaquePath
			}
			pos++

		case stateNoScheme:
			if base == nil || (base.opaquePath && (pos != size || !hasFragment)) {
				return nil, newParseError(ErrNoBase, input)
			}
			if base.opaquePath && hasFragment && pos == size {
				u.copyScheme(base)
				u.opaquePath = true
				u.opaque = base.opaque
				u.query, u.hasQuery = base.query, base.hasQuery
				pos = size + 1
				continue
			}
			if base.schemeType != schemeFile {
				state = stateRelative
			} else {
				state = stateFile
			}

		case stateSpecialRelativeOrAuthority:
			if strings.HasPrefix(data[pos:], "//") {
				state = stateSpecialAuthorityIgnoreSlashes
				pos += 2
			} else {
				cfg.report(newParseError(ErrExpectedDoubleSlash, input))
				state = stateRelative
			}

		case statePathOrAuthority:
			if pos != size && data[pos] == '/' {
				state = stateAuthority
				pos++
			} else {
				state = statePath
			}

		case stateRelative:
			u.copyScheme(base)
			if pos != size && data[pos] == '/' {
				state = stateRelativeSlash
				pos++
				continue
			}
			if u.IsSpecial() && pos != size && data[pos] == '\\' {
				cfg.report(newParseError(ErrBackslash, input))
				state = stateRelativeSlash
				pos++
				continue
			}
			u.username = base.username
			u.password = base.password
			u.host = base.host
			u.port = base.port
			u.path = append(u.path[:0], base.path...)
			u.opaquePath = base.opaquePath
			u.opaque = base.opaque
			u.query, u.hasQuery = base.query, base.hasQuery
			if pos != size && data[pos] == '?' {
				state = stateQuery
				pos++
				continue
			}
			if pos != size {
				u.clearSearch()
				u.path, _ = shortenPath(u.path, u.schemeType)
				state = statePath
				continue
			}
			pos++

		case stateRelativeSlash:
			if u.IsSpecial() && pos != size && (data[pos] == '/' || data[pos] == '\\') {
				state = stateSpecialAuthorityIgnoreSlashes
				pos++
				continue
			}
			if pos != size && data[pos] == '/' {
				state = stateAuthority
				pos++
				continue
			}
			u.username = base.username
			u.password = base.password
			u.host = base.host
			u.port = base.port
			state = statePath

		case stateSpecialAuthoritySlashes:
			if strings.HasPrefix(data[pos:], "//") {
				pos += 2
			} else {
				cfg.report(newParseError(ErrExpectedDoubleSlash, input))
			}
			state = stateSpecialAuthorityIgnoreSlashes

		case stateSpecialAuthorityIgnoreSlashes:
			for pos != size && (data[pos] == '/' || data[pos] == '\\') {
				pos++
			}
			state = stateAuthority

		case stateAuthority:
			// Most urls have no '@' at all, in which case the whole userinfo
			// machinery is skipped.
			if strings.IndexByte(data[pos:], '@') < 0 {
				state = stateHost
				continue
			}
			atSeen, passwordSeen := false, false
			for {
				view := data[pos:]
				loc := findAuthorityDelimiter(view, u.IsSpecial())
				authorityView := view[:loc]
				endOfAuthority := pos + loc
				if endOfAuthority != size && data[endOfAuthority] == '@' {
					cfg.report(newParseError(ErrCredentials, input))
					if atSeen {
						if passwordSeen {
							u.password += "%40"
						} else {
							u.username += "%40"
						}
					}
					atSeen = true
					if !passwordSeen {
						colon := strings.IndexByte(authorityView, ':')
						if colon < 0 {
							u.username += percentEncode(authorityView, &userinfoSet)
						} else {
							passwordSeen = true
							u.username += percentEncode(authorityView[:colon], &userinfoSet)
							u.password += percentEncode(authorityView[colon+1:], &userinfoSet)
						}
					} else {
						u.password += percentEncode(authorityView, &userinfoSet)
					}
				} else {
					if atSeen && authorityView == "" {
						return nil, newParseError(ErrEmptyCredential, input)
					}
					state = stateHost
					break
				}
				pos = endOfAuthority + 1
			}

		case stateHost:
			view := data[pos:]
			loc, foundColon := findHostDelimiter(view, u.IsSpecial())
			hostView := view[:loc]
			pos += loc
			if foundColon {
				if hostView == "" {
					return nil, newParseError(ErrMissingHost, input)
				}
				if err := u.parseHost(hostView, cfg.transitional); err != nil {
					return nil, newParseError(err, input)
				}
				state = statePort
				pos++
				continue
			}
			if hostView == "" && u.IsSpecial() {
				return nil, newParseError(ErrMissingHost, input)
			}
			if hostView == "" {
				u.host = host{kind: hostEmpty}
			} else if err := u.parseHost(hostView, cfg.transitional); err != nil {
				return nil, newParseError(err, input)
			}
			state = statePathStart

		case statePort:
			consumed, err := u.parsePort(data[pos:])
			if err != nil {
				return nil, newParseError(err, input)
			}
			pos += consumed
			state = statePathStart

		case statePathStart:
			if u.IsSpecial() {
				state = statePath
				if pos != size && (data[pos] == '/' || data[pos] == '\\') {
					pos++
				}
				continue
			}
			if pos != size && data[pos] == '?' {
				state = stateQuery
				pos++
				continue
			}
			if pos != size {
				state = statePath
				if data[pos] == '/' {
					pos++
				}
				continue
			}
			pos++

		case statePath:
			view := data[pos:]
			if q := strings.IndexByte(view, '?'); q >= 0 {
				state = stateQuery
				view = view[:q]
				pos += q + 1
			} else {
				pos = size + 1
			}
			u.parsePreparedPath(view)

		case stateOpaquePath:
			view := data[pos:]
			if q := strings.IndexByte(view, '?'); q >= 0 {
				state = stateQuery
				view = view[:q]
				pos += q + 1
			} else {
				pos = size + 1
			}
			u.opaquePath = true
			u.opaque = percentEncode(view, &c0ControlSet)

		case stateQuery:
			set := &querySet
			if u.IsSpecial() {
				set = &specialQuerySet
			}
			u.query = percentEncode(data[pos:], set)
			u.hasQuery = true
			break loop

		case stateFile:
			fileView := data[pos:]
			u.setProtocolAsFile()
			u.host = host{kind: hostEmpty}
			if pos != size && (data[pos] == '/' || data[pos] == '\\') {
				if data[pos] == '\\' {
					cfg.report(newParseError(ErrBackslash, input))
				}
				state = stateFileSlash
				pos++
				continue
			}
			if base != nil && base.schemeType == schemeFile {
				u.host = base.host
				u.path = append(u.path[:0], base.path...)
				u.opaquePath = base.opaquePath
				u.opaque = base.opaque
				u.query, u.hasQuery = base.query, base.hasQuery
				if pos != size && data[pos] == '?' {
					state = stateQuery
					pos++
					continue
				}
				if pos != size {
					u.clearSearch()
					if !startsWithWindowsDriveLetter(fileView) {
						u.path, _ = shortenPath(u.path, u.schemeType)
					} else {
						cfg.report(newParseError(ErrWindowsDrive, input))
						u.clearPathname()
					}
					state = statePath
					continue
				}
				pos++
				continue
			}
			state = statePath

		case stateFileSlash:
			if pos != size && (data[pos] == '/' || data[pos] == '\\') {
				if data[pos] == '\\' {
					cfg.report(newParseError(ErrBackslash, input))
				}
				state = stateFileHost
				pos++
				continue
			}
			if base != nil && base.schemeType == schemeFile {
				u.host = base.host
				if !startsWithWindowsDriveLetter(data[pos:]) && len(base.path) > 0 {
					if isNormalizedWindowsDriveLetter(base.path[0]) {
						u.path = append(u.path, base.path[0])
					}
				}
			}
			state = statePath

		case stateFileHost:
			view := data[pos:]
			loc := strings.IndexAny(view, "/\\?")
			if loc < 0 {
				loc = len(view)
			}
			fileHostView := view[:loc]
			if isWindowsDriveLetter(fileHostView) {
				cfg.report(newParseError(ErrWindowsDrive, input))
				state = statePath
				continue
			}
			if fileHostView == "" {
				u.host = host{kind: hostEmpty}
				state = statePathStart
				continue
			}
			pos += len(fileHostView)
			if err := u.parseHost(fileHostView, cfg.transitional); err != nil {
				return nil, newParseError(err, input)
			}
			if u.host.kind == hostDomain && u.host.value == "localhost" {
				u.host = host{kind: hostEmpty}
			}
			state = statePathStart
		}
	}

	if hasFragment {
		u.fragment = percentEncode(fragment, &fragmentSet)
		u.hasFragment = true
	}
	return u, nil
}

// findAuthorityDelimiter returns the index of the next authority
// delimiter in view ('@', '/', '?' and '\' for special urls), or len(view).
func findAuthorityDelimiter(view string, special bool) int {
	for i := 0; i < len(view); i++ {
		switch view[i] {
		case '@', '/', '?':
			return i
		case '\\':
			if special {
				return i
			}
		}
	}
	return len(view)
}

// findHostDelimiter returns the index of the host terminator in view and
// whether it is a ':' outside of ipv6 brackets.
func findHostDelimiter(view string, special bool) (int, bool) {
	insideBrackets := false
	for i := 0; i < len(view); i++ {
		switch view[i] {
		case '[':
			insideBrackets = true
		case ']':
			insideBrackets = false
		case ':':
			if !insideBrackets {
				return i, true
			}
		case '/', '?', '#':
			return i, false
		case '\\':
			if special {
				return i, false
			}
		}
	}
	return len(view), false
}

// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbsolute(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		scheme   string
		username string
		password string
		hostname string
		port     string
		pathname string
		search   string
		hash     string
		href     string
	}{
		{
			name:     "default port stripped and host folded",
			input:    "http://EXAMPLE.com:80/Path",
			scheme:   "http",
			hostname: "example.com",
			pathname: "/Path",
			href:     "http://example.com/Path",
		},
		{
			name:     "non default port kept",
			input:    "https://example.com:8443/",
			scheme:   "https",
			hostname: "example.com",
			port:     "8443",
			pathname: "/",
			href:     "https://example.com:8443/",
		},
		{
			name:     "userinfo ipv6 and port",
			input:    "http://u:p%40@[::1]:8/",
			scheme:   "http",
			username: "u",
			password: "p%40",
			hostname: "[::1]",
			port:     "8",
			pathname: "/",
			href:     "http://u:p%40@[::1]:8/",
		},
		{
			name:     "dot segments collapse",
			input:    "http://h/a/./b/../c/",
			scheme:   "http",
			hostname: "h",
			pathname: "/a/c/",
			href:     "http://h/a/c/",
		},
		{
			name:     "double dot",
			input:    "http://h/a/b/../c",
			scheme:   "http",
			hostname: "h",
			pathname: "/a/c",
			href:     "http://h/a/c",
		},
		{
			name:     "file drive letter",
			input:    "file:///C:/w",
			scheme:   "file",
			pathname: "/C:/w",
			href:     "file:///C:/w",
		},
		{
			name:     "file pipe drive normalized",
			input:    "file:///C|/w",
			scheme:   "file",
			pathname: "/C:/w",
			href:     "file:///C:/w",
		},
		{
			name:     "file localhost dropped",
			input:    "file://localhost/etc",
			scheme:   "file",
			pathname: "/etc",
			href:     "file:///etc",
		},
		{
			name:     "backslashes as slashes",
			input:    `http:\\example.com\path`,
			scheme:   "http",
			hostname: "example.com",
			pathname: "/path",
			href:     "http://example.com/path",
		},
		{
			name:     "query and fragment",
			input:    "https://h/p?q=1#frag",
			scheme:   "https",
			hostname: "h",
			pathname: "/p",
			search:   "?q=1",
			hash:     "#frag",
			href:     "https://h/p?q=1#frag",
		},
		{
			name:     "opaque path",
			input:    "mailto:user@example.com",
			scheme:   "mailto",
			pathname: "user@example.com",
			href:     "mailto:user@example.com",
		},
		{
			name:     "opaque path with query",
			input:    "data:text/plain,hi?x=1",
			scheme:   "data",
			pathname: "text/plain,hi",
			search:   "?x=1",
			href:     "data:text/plain,hi?x=1",
		},
		{
			name:     "non special authority",
			input:    "git://example.com/repo",
			scheme:   "git",
			hostname: "example.com",
			pathname: "/repo",
			href:     "git://example.com/repo",
		},
		{
			name:     "tabs and newlines removed",
			input:    "ht\ttp://exa\nmple.com/\r",
			scheme:   "http",
			hostname: "example.com",
			pathname: "/",
			href:     "http://example.com/",
		},
		{
			name:     "leading trailing space trimmed",
			input:    "  http://example.com/  ",
			scheme:   "http",
			hostname: "example.com",
			pathname: "/",
			href:     "http://example.com/",
		},
		{
			name:     "space in path encoded",
			input:    "http://h/a b",
			scheme:   "http",
			hostname: "h",
			pathname: "/a%20b",
			href:     "http://h/a%20b",
		},
		{
			name:     "repeated at in userinfo",
			input:    "http://a@b@c/",
			scheme:   "http",
			username: "a%40b",
			hostname: "c",
			pathname: "/",
			href:     "http://a%40b@c/",
		},
		{
			name:     "special query quote encoded",
			input:    "http://h/p?a'b",
			scheme:   "http",
			hostname: "h",
			pathname: "/p",
			search:   "?a%27b",
			href:     "http://h/p?a%27b",
		},
		{
			name:     "ipv4 normalized",
			input:    "http://0x7f.0.0.1/",
			scheme:   "http",
			hostname: "127.0.0.1",
			pathname: "/",
			href:     "http://127.0.0.1/",
		},
		{
			name:     "idna host",
			input:    "http://bücher.de/",
			scheme:   "http",
			hostname: "xn--bcher-kva.de",
			pathname: "/",
			href:     "http://xn--bcher-kva.de/",
		},
		{
			name:     "empty query kept distinct",
			input:    "http://h/p?",
			scheme:   "http",
			hostname: "h",
			pathname: "/p",
			href:     "http://h/p?",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.scheme, u.Scheme())
			assert.Equal(t, tc.username, u.Username())
			assert.Equal(t, tc.password, u.Password())
			assert.Equal(t, tc.hostname, u.Hostname())
			assert.Equal(t, tc.port, u.Port())
			assert.Equal(t, tc.pathname, u.Pathname())
			assert.Equal(t, tc.search, u.Search())
			assert.Equal(t, tc.hash, u.Hash())
			assert.Equal(t, tc.href, u.Href())
		})
	}
}

func TestParseRelative(t *testing.T) {
	cases := []struct {
		name  string
		input string
		base  string
		href  string
	}{
		{name: "protocol relative", input: "//foo/bar", base: "https://a.b/c", href: "https://foo/bar"},
		{name: "query only", input: "?x=1", base: "http://h/p?y=2#z", href: "http://h/p?x=1"},
		{name: "fragment only", input: "#f", base: "http://h/p?y=2", href: "http://h/p?y=2#f"},
		{name: "absolute path", input: "/x/y", base: "http://h/a/b", href: "http://h/x/y"},
		{name: "sibling", input: "d", base: "http://h/a/b/c", href: "http://h/a/b/d"},
		{name: "parent", input: "../d", base: "http://h/a/b/c", href: "http://h/a/d"},
		{name: "same scheme relative", input: "http:d", base: "http://h/a/b", href: "http://h/a/d"},
		{name: "empty input keeps base", input: "", base: "http://h/p?q", href: "http://h/p?q"},
		{name: "opaque base fragment", input: "#f", base: "mailto:me@example.com", href: "mailto:me@example.com#f"},
		{name: "file base sibling", input: "doc.txt", base: "file:///home/me/a.txt", href: "file:///home/me/doc.txt"},
		{name: "file base drive kept", input: "/b", base: "file:///C:/a", href: "file:///C:/b"},
		{name: "windows drive replaces path", input: "D|/x", base: "file:///C:/a", href: "file:///D:/x"},
		{name: "scheme switch", input: "ws://h/p", base: "http://other/", href: "ws://h/p"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, err := Parse(tc.base)
			require.NoError(t, err)
			u, err := ParseRef(tc.input, base)
			require.NoError(t, err)
			assert.Equal(t, tc.href, u.Href())
		})
	}
}

func TestParseFailure(t *testing.T) {
	cases := []struct {
		name  string
		input string
		base  string
		cause error
	}{
		{name: "no scheme no base", input: "/foo", cause: ErrNoBase},
		{name: "opaque base relative", input: "foo", base: "mailto:x@y", cause: ErrNoBase},
		{name: "missing host", input: "http://", cause: ErrMissingHost},
		{name: "empty host with port", input: "http://:80", cause: ErrMissingHost},
		{name: "port overflow", input: "http://h:65536", cause: ErrPortOutOfRange},
		{name: "junk port", input: "http://h:8a/", cause: ErrInvalidPort},
		{name: "empty userinfo", input: "http://@/", cause: ErrEmptyCredential},
		{name: "bad ipv6", input: "http://[::1", cause: ErrInvalidIPv6},
		{name: "bad ipv4", input: "http://1.2.3.4.5/", cause: ErrInvalidIPv4},
		{name: "forbidden domain byte", input: "http://exa%00mple.com/", cause: ErrInvalidHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var base *URL
			if tc.base != "" {
				var err error
				base, err = Parse(tc.base)
				require.NoError(t, err)
			}
			_, err := ParseRef(tc.input, base)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
			assert.ErrorIs(t, err, tc.cause)
		})
	}
}

func TestParsePortEdge(t *testing.T) {
	u, err := Parse("http://h:0000000000000000080/")
	require.NoError(t, err)
	assert.Empty(t, u.Port())

	u, err = Parse("http://h:/p")
	require.NoError(t, err)
	assert.Empty(t, u.Port())
	assert.Equal(t, "/p", u.Pathname())

	u, err = Parse("ws://h:80/")
	require.NoError(t, err)
	assert.Empty(t, u.Port(), "ws shares the http default port")
}

func TestParseReporter(t *testing.T) {
	var reported []error
	_, err := Parse("http://u@h\t/p\\q", WithReporter(func(err error) {
		reported = append(reported, err)
	}))
	require.NoError(t, err)
	require.NotEmpty(t, reported)
	assert.ErrorIs(t, reported[0], ErrTabNewline)
}

// Serialization idempotence: reparsing the serialization of any
// successfully parsed url yields the same record.
func TestSerializationIdempotent(t *testing.T) {
	corpus := []string{
		"http://example.com/",
		"http://u:p@h:8080/a/b?c=d#e",
		"file:///C:/w",
		"file://host/share",
		"mailto:a@b",
		"data:,hello world",
		"git://h:123/x",
		"https://[2001:db8::1]/p",
		"http://0x7f.1/",
		"http://h/%2e%2e/a",
		"a:/..//x",
		"http://h/p?",
		"http://h/p#",
	}

	f := fuzz.New().NumElements(0, 64)
	for i := 0; i < 300; i++ {
		var s string
		f.Fuzz(&s)
		corpus = append(corpus, "http://example.com/"+s)
	}

	for _, input := range corpus {
		u, err := Parse(input)
		if err != nil {
			continue
		}
		again, err := Parse(u.Href())
		require.NoError(t, err, "reparsing %q of input %q", u.Href(), input)
		assert.True(t, u.Equal(again), "input %q: %q != %q", input, u.Href(), again.Href())
	}
}

func TestParseInputBelowLengthLimit(t *testing.T) {
	// The real guard triggers at 4GB, exercising it would allocate too
	// much, so only the happy side is covered here.
	u, err := Parse("http://example.com/" + string(make([]byte, 0)))
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", u.Href())
}

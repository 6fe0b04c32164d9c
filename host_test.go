// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHostDomain(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		kind  hostKind
	}{
		{name: "lowercase passthrough", input: "example.com", want: "example.com", kind: hostDomain},
		{name: "uppercase folded", input: "EXAMPLE.COM", want: "example.com", kind: hostDomain},
		{name: "percent decoded", input: "ex%61mple.com", want: "example.com", kind: hostDomain},
		{name: "unicode idna", input: "bücher.de", want: "xn--bcher-kva.de", kind: hostDomain},
		{name: "punycode kept", input: "xn--bcher-kva.de", want: "xn--bcher-kva.de", kind: hostDomain},
		{name: "trailing dot kept", input: "example.com.", want: "example.com.", kind: hostDomain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := parseHost(tc.input, false, false)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, h.kind)
			assert.Equal(t, tc.want, h.value)
		})
	}
}

func TestParseHostDomainFailure(t *testing.T) {
	for _, input := range []string{"", "exa mple.com", "exa<mple", "a%b", "exa|mple"} {
		t.Run(input, func(t *testing.T) {
			_, err := parseHost(input, false, false)
			assert.Error(t, err)
		})
	}
}

func TestParseHostIPv4(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "127.0.0.1", want: "127.0.0.1"},
		{input: "0.0.0.0", want: "0.0.0.0"},
		{input: "255.255.255.255", want: "255.255.255.255"},
		// Octal, hex and flattened forms all normalize to dot-decimal.
		{input: "0x7f.0.0.1", want: "127.0.0.1"},
		{input: "017.0.0.1", want: "15.0.0.1"},
		{input: "2130706433", want: "127.0.0.1"},
		{input: "127.1", want: "127.0.0.1"},
		{input: "192.168.257", want: "192.168.1.1"},
		{input: "1.1.1.1.", want: "1.1.1.1"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			h, err := parseHost(tc.input, false, false)
			require.NoError(t, err)
			assert.Equal(t, hostIPv4, h.kind)
			assert.Equal(t, tc.want, h.value)
		})
	}
}

func TestParseHostIPv4Failure(t *testing.T) {
	for _, input := range []string{"1.2.3.4.5", "256.256.256.256", "4294967296", "1.2.3.256", "0x.0x.0x.0x100", "09.1.1.1"} {
		t.Run(input, func(t *testing.T) {
			_, err := parseHost(input, false, false)
			assert.ErrorIs(t, err, ErrInvalidIPv4)
		})
	}
}

func TestParseHostIPv6(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "[::1]", want: "[::1]"},
		{input: "[::]", want: "[::]"},
		{input: "[1:2:3:4:5:6:7:8]", want: "[1:2:3:4:5:6:7:8]"},
		{input: "[2001:DB8::1]", want: "[2001:db8::1]"},
		{input: "[1:0:0:0:0:0:0:1]", want: "[1::1]"},
		{input: "[0:0:1:0:0:0:0:1]", want: "[0:0:1::1]"},
		{input: "[::ffff:192.168.0.1]", want: "[::ffff:c0a8:1]"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			h, err := parseHost(tc.input, true, false)
			require.NoError(t, err)
			assert.Equal(t, hostIPv6, h.kind)
			assert.Equal(t, tc.want, h.value)
		})
	}
}

func TestParseHostIPv6Failure(t *testing.T) {
	for _, input := range []string{"[::1", "[:::1]", "[1:2]", "[1:2:3:4:5:6:7:8:9]", "[g::1]", "[::1.2.3]", "[1:2:3:4:5:6:7:8::]"} {
		t.Run(input, func(t *testing.T) {
			_, err := parseHost(input, false, false)
			assert.ErrorIs(t, err, ErrInvalidIPv6)
		})
	}
}

func TestParseHostOpaque(t *testing.T) {
	h, err := parseHost("ex%2Ample", true, false)
	require.NoError(t, err)
	assert.Equal(t, hostOpaque, h.kind)
	assert.Equal(t, "ex%2Ample", h.value)

	h, err = parseHost("foo bar", true, false)
	assert.Error(t, err)

	h, err = parseHost("", true, false)
	require.NoError(t, err)
	assert.Equal(t, hostEmpty, h.kind)
	assert.Empty(t, h.value)
}

// A parsed host belongs to exactly one class.
func TestHostClassesExclusive(t *testing.T) {
	inputs := []struct {
		input      string
		notSpecial bool
		kind       hostKind
	}{
		{input: "example.com", kind: hostDomain},
		{input: "127.0.0.1", kind: hostIPv4},
		{input: "[::1]", kind: hostIPv6},
		{input: "example.com", notSpecial: true, kind: hostOpaque},
	}
	for _, tc := range inputs {
		h, err := parseHost(tc.input, tc.notSpecial, false)
		require.NoError(t, err)
		assert.Equal(t, tc.kind, h.kind)
	}
}

func TestEndsInNumber(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{input: "example.com", want: false},
		{input: "127.0.0.1", want: true},
		{input: "foo.127", want: true},
		{input: "foo.0x12", want: true},
		{input: "foo.127.", want: true},
		{input: "127", want: true},
		{input: "foo.bar", want: false},
		{input: "foo.12e", want: false},
		{input: ".", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, endsInNumber(tc.input))
		})
	}
}

func TestSerializeIPv4(t *testing.T) {
	assert.Equal(t, "0.0.0.0", serializeIPv4(0))
	assert.Equal(t, "255.255.255.255", serializeIPv4(0xffffffff))
	assert.Equal(t, "127.0.0.1", serializeIPv4(0x7f000001))
}

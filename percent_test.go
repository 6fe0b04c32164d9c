// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentDecode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no percent", input: "hello world", want: "hello world"},
		{name: "simple", input: "%41%42%43", want: "ABC"},
		{name: "lowercase hex", input: "%2f%2F", want: "//"},
		{name: "mixed", input: "a%20b", want: "a b"},
		{name: "invalid kept verbatim", input: "%zz%1", want: "%zz%1"},
		{name: "trailing percent", input: "abc%", want: "abc%"},
		{name: "partial invalid", input: "%41%GG%42", want: "A%GGB"},
		{name: "empty", input: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := percentDecode(tc.input, strings.IndexByte(tc.input, '%'))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPercentEncode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		set   *charset
		want  string
	}{
		{name: "fragment set space", input: "a b", set: &fragmentSet, want: "a%20b"},
		{name: "fragment passthrough", input: "a/b?c", set: &fragmentSet, want: "a/b?c"},
		{name: "query set", input: `a"b#c`, set: &querySet, want: "a%22b%23c"},
		{name: "special query quote", input: "a'b", set: &specialQuerySet, want: "a%27b"},
		{name: "path set braces", input: "a{b}c", set: &pathSet, want: "a%7Bb%7Dc"},
		{name: "userinfo set", input: "u:p@h", set: &userinfoSet, want: "u%3Ap%40h"},
		{name: "c0 control", input: "a\x00b\x7f", set: &c0ControlSet, want: "a%00b%7F"},
		{name: "non ascii", input: "café", set: &c0ControlSet, want: "caf%C3%A9"},
		{name: "empty", input: "", set: &componentSet, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, percentEncode(tc.input, tc.set))
		})
	}
}

func TestPercentEncodeChanged(t *testing.T) {
	out, changed := percentEncodeChanged("plain", &userinfoSet)
	assert.False(t, changed)
	assert.Equal(t, "plain", out)

	out, changed = percentEncodeChanged("a@b", &userinfoSet)
	assert.True(t, changed)
	assert.Equal(t, "a%40b", out)
}

// The component set covers '%' itself, so decoding an encoded string must
// reproduce the input byte for byte, whatever the input.
func TestPercentRoundTrip(t *testing.T) {
	f := fuzz.New().NumElements(0, 128)
	for i := 0; i < 500; i++ {
		var input string
		f.Fuzz(&input)
		encoded := percentEncode(input, &componentSet)
		decoded := percentDecode(encoded, strings.IndexByte(encoded, '%'))
		require.Equal(t, input, decoded, "round trip of %q via %q", input, encoded)
	}
}

func TestHasTabOrNewline(t *testing.T) {
	assert.False(t, hasTabOrNewline("http://example.com"))
	assert.True(t, hasTabOrNewline("http://exa\tmple.com"))
	assert.True(t, hasTabOrNewline("a\nb"))
	assert.True(t, hasTabOrNewline("a\rb"))
	assert.False(t, hasTabOrNewline(""))
}

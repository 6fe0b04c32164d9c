// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchParams(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  SearchParams
	}{
		{
			name:  "simple",
			query: "a=1&b=2",
			want:  SearchParams{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}},
		},
		{
			name:  "leading question mark",
			query: "?a=1",
			want:  SearchParams{{Name: "a", Value: "1"}},
		},
		{
			name:  "duplicates preserved in order",
			query: "a=1&a=2&b=3",
			want:  SearchParams{{Name: "a", Value: "1"}, {Name: "a", Value: "2"}, {Name: "b", Value: "3"}},
		},
		{
			name:  "plus decodes to space",
			query: "q=hello+world",
			want:  SearchParams{{Name: "q", Value: "hello world"}},
		},
		{
			name:  "percent decoding",
			query: "na%6De=v%61lue",
			want:  SearchParams{{Name: "name", Value: "value"}},
		},
		{
			name:  "missing value",
			query: "flag&x=1",
			want:  SearchParams{{Name: "flag", Value: ""}, {Name: "x", Value: "1"}},
		},
		{
			name:  "empty pairs skipped",
			query: "a=1&&b=2&",
			want:  SearchParams{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}},
		},
		{
			name:  "empty",
			query: "",
			want:  nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSearchParams(tc.query))
		})
	}
}

func TestSearchParamsAccessors(t *testing.T) {
	params := ParseSearchParams("a=1&a=2&b=3")
	assert.Equal(t, "1", params.Get("a"), "get returns the first match")
	assert.Equal(t, "3", params.Get("b"))
	assert.Empty(t, params.Get("missing"))
	assert.True(t, params.Has("a"))
	assert.False(t, params.Has("missing"))

	var names []string
	for name, value := range params.All() {
		names = append(names, name+"="+value)
	}
	assert.Equal(t, []string{"a=1", "a=2", "b=3"}, names)
}

func TestSerializeSearchParams(t *testing.T) {
	params := SearchParams{
		{Name: "q", Value: "hello world"},
		{Name: "sym", Value: "a&b=c"},
	}
	serialized := SerializeSearchParams(params)
	assert.Equal(t, "q=hello+world&sym=a%26b%3Dc", serialized)

	require.Equal(t, params, ParseSearchParams(serialized))
}

func TestSearchParamsFromURL(t *testing.T) {
	u, err := Parse("http://h/p?q=hello+world&x=%2F")
	require.NoError(t, err)
	params := ParseSearchParams(u.Query())
	assert.Equal(t, "hello world", params.Get("q"))
	assert.Equal(t, "/", params.Get("x"))
}

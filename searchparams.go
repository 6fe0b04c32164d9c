// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"iter"
	"strings"
)

// SearchParam is a single application/x-www-form-urlencoded name value
// pair.
type SearchParam struct {
	Name  string
	Value string
}

// SearchParams is an ordered list of query pairs. Duplicate names are
// preserved in input order.
type SearchParams []SearchParam

// ParseSearchParams decodes query per the application/x-www-form-urlencoded
// format: pairs split on '&', '+' decoded to space, names and values
// percent-decoded. A leading '?' is stripped. Empty pairs are skipped.
func ParseSearchParams(query string) SearchParams {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return nil
	}
	params := make(SearchParams, 0, strings.Count(query, "&")+1)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		params = append(params, SearchParam{
			Name:  decodeFormComponent(name),
			Value: decodeFormComponent(value),
		})
	}
	return params
}

// SerializeSearchParams is the inverse of [ParseSearchParams], encoding
// each name and value with the form-urlencoded set and spaces as '+'.
func SerializeSearchParams(params SearchParams) string {
	var buf strings.Builder
	for i, p := range params {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(encodeFormComponent(p.Name))
		buf.WriteByte('=')
		buf.WriteString(encodeFormComponent(p.Value))
	}
	return buf.String()
}

// Get returns the value of the first pair matching name.
func (p SearchParams) Get(name string) string {
	for i := range p {
		if p[i].Name == name {
			return p[i].Value
		}
	}
	return ""
}

// Has checks whether a pair exists by name.
func (p SearchParams) Has(name string) bool {
	for i := range p {
		if p[i].Name == name {
			return true
		}
	}
	return false
}

// All returns an iterator over all name value pairs in input order.
func (p SearchParams) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i := range p {
			if !yield(p[i].Name, p[i].Value) {
				return
			}
		}
	}
}

func decodeFormComponent(s string) string {
	if strings.IndexByte(s, '+') >= 0 {
		s = strings.ReplaceAll(s, "+", " ")
	}
	return percentDecode(s, strings.IndexByte(s, '%'))
}

func encodeFormComponent(s string) string {
	encoded := percentEncode(s, &formURLEncodedSet)
	return strings.ReplaceAll(encoded, "%20", "+")
}

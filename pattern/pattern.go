// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

// Package pattern implements the URLPattern web API on top of the wurl
// parser, following https://urlpattern.spec.whatwg.org/.
package pattern

import (
	"fmt"
	"strings"

	"github.com/tigerwill90/wurl"
)

// specialSchemes are the schemes whose patterns imply an authority
// section and a slash-delimited pathname.
var specialSchemes = []string{"ftp", "file", "http", "https", "ws", "wss"}

// Pattern is a compiled url pattern. Each of the eight components holds
// its own matcher and can be inspected through the accessors. A Pattern
// is immutable and safe for concurrent use.
type Pattern struct {
	protocol *component
	username *component
	password *component
	hostname *component
	port     *component
	pathname *component
	search   *component
	hash     *component
}

// Init is the structured form of a pattern: each non-nil field is a
// component pattern string. A nil field defaults to a full wildcard, or is
// inherited from BaseURL when one is set.
type Init struct {
	Protocol *string
	Username *string
	Password *string
	Hostname *string
	Port     *string
	Pathname *string
	Search   *string
	Hash     *string

	BaseURL *string
}

// Result is the outcome of a successful [Pattern.Exec]: the matched
// inputs plus one [ComponentResult] per component.
type Result struct {
	Inputs []string

	Protocol ComponentResult
	Username ComponentResult
	Password ComponentResult
	Hostname ComponentResult
	Port     ComponentResult
	Pathname ComponentResult
	Search   ComponentResult
	Hash     ComponentResult
}

// ComponentResult carries the component input and the values captured by
// its named and numbered groups.
type ComponentResult struct {
	Input  string
	Groups map[string]string
}

type config struct {
	ignoreCase bool
}

type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithIgnoreCase enables case-insensitive matching for the pathname,
// search and hash components.
func WithIgnoreCase(enable bool) Option {
	return optionFunc(func(c *config) {
		c.ignoreCase = enable
	})
}

// New compiles a constructor string such as
// "https://*.example.com/foo/:bar" into a [Pattern]. A non-empty baseURL
// supplies the components the string omits. Errors wrap [ErrType] or
// [ErrCompile].
func New(input string, baseURL string, opts ...Option) (*Pattern, error) {
	init, err := parseConstructorString(input)
	if err != nil {
		return nil, err
	}
	if baseURL == "" && init.Protocol == nil {
		return nil, fmt.Errorf("%w: %w", ErrType, ErrNoBaseURL)
	}
	if baseURL != "" {
		init.BaseURL = &baseURL
	}
	return NewFromInit(init, opts...)
}

// NewFromInit compiles a structured [Init] into a [Pattern]. Unset
// components default to "*" after the base url, when any, filled in the
// ones it can.
func NewFromInit(init *Init, opts ...Option) (*Pattern, error) {
	cfg := new(config)
	for _, opt := range opts {
		opt.apply(cfg)
	}

	processed, err := init.process(modePattern, nil)
	if err != nil {
		return nil, err
	}

	star := "*"
	orStar := func(s *string) string {
		if s == nil {
			return star
		}
		return *s
	}
	protocol := orStar(processed.Protocol)
	username := orStar(processed.Username)
	password := orStar(processed.Password)
	hostname := orStar(processed.Hostname)
	port := orStar(processed.Port)
	pathname := orStar(processed.Pathname)
	search := orStar(processed.Search)
	hash := orStar(processed.Hash)

	// A default port spelled out explicitly matches the same urls as an
	// absent port, normalize it away.
	for _, scheme := range specialSchemes {
		if protocol != scheme {
			continue
		}
		if def, ok := wurl.DefaultPort(scheme); ok && port == fmt.Sprint(def) {
			port = ""
		}
		break
	}

	p := new(Pattern)
	if p.protocol, err = compileComponent(protocol, canonicalizeProtocol, defaultOptions); err != nil {
		return nil, err
	}
	if p.username, err = compileComponent(username, canonicalizeUsername, defaultOptions); err != nil {
		return nil, err
	}
	if p.password, err = compileComponent(password, canonicalizePassword, defaultOptions); err != nil {
		return nil, err
	}

	switch {
	case hostnamePatternIsIPv6(hostname):
		p.hostname, err = compileComponent(hostname, canonicalizeIPv6Hostname, hostnameOptions)
	case p.protocol.matchesSpecialScheme() || protocol == star:
		p.hostname, err = compileComponent(hostname, canonicalizeHostname, hostnameOptions)
	default:
		p.hostname, err = compileComponent(hostname, canonicalizeOpaqueHostname, hostnameOptions)
	}
	if err != nil {
		return nil, err
	}

	protocolValue := ""
	if processed.Protocol != nil {
		protocolValue = *processed.Protocol
	}
	portCanon := func(v string) (string, error) { return canonicalizePort(v, protocolValue) }
	if p.port, err = compileComponent(port, portCanon, defaultOptions); err != nil {
		return nil, err
	}

	compileOpts := defaultOptions
	compileOpts.ignoreCase = cfg.ignoreCase

	if p.protocol.matchesSpecialScheme() {
		pathOpts := pathnameOptions
		pathOpts.ignoreCase = cfg.ignoreCase
		p.pathname, err = compileComponent(pathname, canonicalizePathname, pathOpts)
	} else {
		p.pathname, err = compileComponent(pathname, canonicalizeOpaquePathname, compileOpts)
	}
	if err != nil {
		return nil, err
	}

	if p.search, err = compileComponent(search, canonicalizeSearch, compileOpts); err != nil {
		return nil, err
	}
	if p.hash, err = compileComponent(hash, canonicalizeHash, compileOpts); err != nil {
		return nil, err
	}
	return p, nil
}

// Protocol returns the normalized protocol pattern string.
func (p *Pattern) Protocol() string { return p.protocol.patternString }

// Username returns the normalized username pattern string.
func (p *Pattern) Username() string { return p.username.patternString }

// Password returns the normalized password pattern string.
func (p *Pattern) Password() string { return p.password.patternString }

// Hostname returns the normalized hostname pattern string.
func (p *Pattern) Hostname() string { return p.hostname.patternString }

// Port returns the normalized port pattern string.
func (p *Pattern) Port() string { return p.port.patternString }

// Pathname returns the normalized pathname pattern string.
func (p *Pattern) Pathname() string { return p.pathname.patternString }

// Search returns the normalized search pattern string.
func (p *Pattern) Search() string { return p.search.patternString }

// Hash returns the normalized hash pattern string.
func (p *Pattern) Hash() string { return p.hash.patternString }

// HasRegexpGroups reports whether any component embeds a custom regexp
// group.
func (p *Pattern) HasRegexpGroups() bool {
	return p.protocol.hasRegexpGroups ||
		p.username.hasRegexpGroups ||
		p.password.hasRegexpGroups ||
		p.hostname.hasRegexpGroups ||
		p.port.hasRegexpGroups ||
		p.pathname.hasRegexpGroups ||
		p.search.hasRegexpGroups ||
		p.hash.hasRegexpGroups
}

// Test reports whether the url matches the pattern. The url may be
// relative when a non-empty baseURL is provided.
func (p *Pattern) Test(url, baseURL string) bool {
	return p.Exec(url, baseURL) != nil
}

// TestInit reports whether the structured input matches the pattern.
func (p *Pattern) TestInit(input *Init) bool {
	return p.ExecInit(input) != nil
}

// Exec matches the url against the pattern and returns the captured
// groups per component, or nil when the url does not parse or does not
// match.
func (p *Pattern) Exec(url, baseURL string) *Result {
	inputs := []string{url}

	var base *wurl.URL
	if baseURL != "" {
		var err error
		base, err = wurl.Parse(baseURL)
		if err != nil {
			return nil
		}
		inputs = append(inputs, baseURL)
	}

	u, err := wurl.ParseRef(url, base)
	if err != nil {
		return nil
	}

	r := p.match(
		u.Scheme(),
		u.Username(),
		u.Password(),
		u.Hostname(),
		u.Port(),
		u.Pathname(),
		u.Query(),
		u.Fragment(),
	)
	if r != nil {
		r.Inputs = inputs
	}
	return r
}

// ExecInit matches a structured input against the pattern. Unset
// components default to the empty string after base url inheritance.
func (p *Pattern) ExecInit(input *Init) *Result {
	applied, err := input.process(modeURL, ptr(""))
	if err != nil {
		return nil
	}
	return p.match(
		*applied.Protocol,
		*applied.Username,
		*applied.Password,
		*applied.Hostname,
		*applied.Port,
		*applied.Pathname,
		*applied.Search,
		*applied.Hash,
	)
}

func (p *Pattern) match(protocol, username, password, hostname, port, pathname, search, hash string) *Result {
	components := [8]struct {
		c     *component
		input string
	}{
		{p.protocol, protocol},
		{p.username, username},
		{p.password, password},
		{p.hostname, hostname},
		{p.port, port},
		{p.pathname, pathname},
		{p.search, search},
		{p.hash, hash},
	}

	var results [8]ComponentResult
	for i, comp := range components {
		m, ok := comp.c.match(comp.input)
		if !ok {
			return nil
		}
		results[i] = newComponentResult(comp.c, comp.input, m)
	}

	return &Result{
		Protocol: results[0],
		Username: results[1],
		Password: results[2],
		Hostname: results[3],
		Port:     results[4],
		Pathname: results[5],
		Search:   results[6],
		Hash:     results[7],
	}
}

func newComponentResult(c *component, input string, execResult []string) ComponentResult {
	result := ComponentResult{Input: input}
	if len(execResult) <= 1 {
		return result
	}
	result.Groups = make(map[string]string, len(execResult)-1)
	for i := 1; i < len(execResult); i++ {
		result.Groups[c.groupNames[i-1]] = execResult[i]
	}
	return result
}

// matchesSpecialScheme reports whether the compiled protocol component
// accepts at least one special scheme.
func (c *component) matchesSpecialScheme() bool {
	for _, scheme := range specialSchemes {
		if c.regexp.MatchString(scheme) {
			return true
		}
	}
	return false
}

type processMode uint8

const (
	// modePattern keeps component values as pattern syntax.
	modePattern processMode = iota
	// modeURL canonicalizes component values as literal url components.
	modeURL
)

// process resolves an init against its optional base url and
// canonicalizes every explicit component, per
// https://urlpattern.spec.whatwg.org/#process-a-urlpatterninit. The
// fallback seeds each component when neither the init nor the base
// provides it.
func (init *Init) process(mode processMode, fallback *string) (*Init, error) {
	result := &Init{
		Protocol: fallback, Username: fallback, Password: fallback,
		Hostname: fallback, Port: fallback, Pathname: fallback,
		Search: fallback, Hash: fallback,
	}

	var base *wurl.URL
	if init.BaseURL != nil {
		var err error
		base, err = wurl.Parse(*init.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base url: %w", ErrType, err)
		}

		if init.Protocol == nil {
			result.Protocol = ptr(processBaseURLString(base.Scheme(), mode))
		}
		if mode != modePattern && init.Protocol == nil && init.Hostname == nil && init.Port == nil && init.Username == nil {
			result.Username = ptr(processBaseURLString(base.Username(), mode))
		}
		if mode != modePattern && init.Protocol == nil && init.Hostname == nil && init.Port == nil && init.Username == nil && init.Password == nil {
			result.Password = ptr(processBaseURLString(base.Password(), mode))
		}
		if init.Protocol == nil && init.Hostname == nil {
			result.Hostname = ptr(processBaseURLString(base.Hostname(), mode))
		}
		if init.Protocol == nil && init.Hostname == nil && init.Port == nil {
			result.Port = ptr(base.Port())
		}
		if init.Protocol == nil && init.Hostname == nil && init.Port == nil && init.Pathname == nil {
			result.Pathname = ptr(processBaseURLString(base.Pathname(), mode))
		}
		if init.Protocol == nil && init.Hostname == nil && init.Port == nil && init.Pathname == nil && init.Search == nil {
			result.Search = ptr(processBaseURLString(base.Query(), mode))
		}
		if init.Protocol == nil && init.Hostname == nil && init.Port == nil && init.Pathname == nil && init.Search == nil && init.Hash == nil {
			result.Hash = ptr(processBaseURLString(base.Fragment(), mode))
		}
	}

	if init.Protocol != nil {
		v, err := processProtocolForInit(*init.Protocol, mode)
		if err != nil {
			return nil, err
		}
		result.Protocol = &v
	}
	if init.Username != nil {
		v, err := processValueForInit(*init.Username, mode, canonicalizeUsername)
		if err != nil {
			return nil, err
		}
		result.Username = &v
	}
	if init.Password != nil {
		v, err := processValueForInit(*init.Password, mode, canonicalizePassword)
		if err != nil {
			return nil, err
		}
		result.Password = &v
	}

	protocol := ""
	if result.Protocol != nil {
		protocol = *result.Protocol
	}

	if init.Hostname != nil {
		v, err := processHostnameForInit(*init.Hostname, protocol, mode)
		if err != nil {
			return nil, err
		}
		result.Hostname = &v
	}
	if init.Port != nil {
		v := *init.Port
		if mode != modePattern {
			var err error
			if v, err = canonicalizePort(v, protocol); err != nil {
				return nil, err
			}
		}
		result.Port = &v
	}

	if init.Pathname != nil {
		pathname := *init.Pathname
		if base != nil && !base.HasOpaquePath() && !isAbsolutePathname(pathname, mode) {
			basePath := processBaseURLString(base.Pathname(), mode)
			if slash := strings.LastIndexByte(basePath, '/'); slash >= 0 {
				pathname = basePath[:slash+1] + pathname
			}
		}
		v, err := processPathnameForInit(pathname, protocol, mode)
		if err != nil {
			return nil, err
		}
		result.Pathname = &v
	}

	if init.Search != nil {
		v, err := processSearchForInit(*init.Search, mode)
		if err != nil {
			return nil, err
		}
		result.Search = &v
	}
	if init.Hash != nil {
		v, err := processHashForInit(*init.Hash, mode)
		if err != nil {
			return nil, err
		}
		result.Hash = &v
	}
	return result, nil
}

func ptr(s string) *string {
	return &s
}

// processBaseURLString escapes pattern metacharacters of a base url
// component so a literal value is not reinterpreted as pattern syntax.
func processBaseURLString(input string, mode processMode) string {
	if mode != modePattern {
		return input
	}
	return escapePatternString(input)
}

func processProtocolForInit(value string, mode processMode) (string, error) {
	stripped := strings.TrimSuffix(value, ":")
	if mode == modePattern {
		return stripped, nil
	}
	return canonicalizeProtocol(stripped)
}

func processValueForInit(value string, mode processMode, canon encodingCallback) (string, error) {
	if mode == modePattern {
		return value, nil
	}
	return canon(value)
}

func processHostnameForInit(value, protocol string, mode processMode) (string, error) {
	if mode == modePattern {
		return value, nil
	}
	if protocol == "" || wurl.IsSpecialScheme(protocol) {
		return canonicalizeHostname(value)
	}
	return canonicalizeOpaqueHostname(value)
}

func processPathnameForInit(value, protocol string, mode processMode) (string, error) {
	if mode == modePattern {
		return value, nil
	}
	if protocol == "" || wurl.IsSpecialScheme(protocol) {
		return canonicalizePathname(value)
	}
	return canonicalizeOpaquePathname(value)
}

func processSearchForInit(value string, mode processMode) (string, error) {
	stripped := strings.TrimPrefix(value, "?")
	if mode == modePattern {
		return stripped, nil
	}
	return canonicalizeSearch(stripped)
}

func processHashForInit(value string, mode processMode) (string, error) {
	stripped := strings.TrimPrefix(value, "#")
	if mode == modePattern {
		return stripped, nil
	}
	return canonicalizeHash(stripped)
}

// isAbsolutePathname reports whether input is an absolute pathname,
// accounting for escaped and grouped leading slashes in pattern mode.
func isAbsolutePathname(input string, mode processMode) bool {
	if input == "" {
		return false
	}
	if input[0] == '/' {
		return true
	}
	if mode != modePattern {
		return false
	}
	return strings.HasPrefix(input, "\\/") || strings.HasPrefix(input, "{/")
}

// hostnamePatternIsIPv6 reports whether the hostname pattern targets a
// bracketed ipv6 literal.
func hostnamePatternIsIPv6(input string) bool {
	if len(input) < 2 {
		return false
	}
	if input[0] == '[' {
		return true
	}
	if (input[0] == '{' || input[0] == '\\') && input[1] == '[' {
		return true
	}
	return false
}

// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

type partType uint8

const (
	// partFixedText matches a literal string.
	partFixedText partType = iota
	// partRegexp matches a custom regular expression.
	partRegexp
	// partSegmentWildcard matches any run of code points up to the
	// component delimiter.
	partSegmentWildcard
	// partFullWildcard matches any run of code points, delimiter included.
	partFullWildcard
)

type partModifier uint8

const (
	modifierNone partModifier = iota
	// modifierOptional is the '?' modifier.
	modifierOptional
	// modifierZeroOrMore is the '*' modifier.
	modifierZeroOrMore
	// modifierOneOrMore is the '+' modifier.
	modifierOneOrMore
)

func (m partModifier) String() string {
	switch m {
	case modifierOptional:
		return "?"
	case modifierZeroOrMore:
		return "*"
	case modifierOneOrMore:
		return "+"
	}
	return ""
}

// part is one unit of a compiled component: a fixed text, a named or
// numbered matching group, or a wildcard, decorated with an optional
// modifier and prefix and suffix strings.
type part struct {
	value    string
	name     string
	prefix   string
	suffix   string
	typ      partType
	modifier partModifier
}

// encodingCallback canonicalizes the fixed text of a part, e.g. lowercases
// a hostname or percent-encodes a pathname segment. It is never applied to
// pattern syntax.
type encodingCallback func(string) (string, error)

// parsePatternString tokenizes input under the strict policy and builds
// the ordered part list of a component.
func parsePatternString(input string, opts compileOptions, callback encodingCallback) ([]part, error) {
	tokens, err := tokenize([]rune(input), policyStrict)
	if err != nil {
		return nil, err
	}

	p := patternParser{
		tokens:                tokens,
		callback:              callback,
		segmentWildcardRegexp: segmentWildcardRegexp(opts),
	}

	for p.index < len(p.tokens) {
		charToken := p.tryConsume(tokenChar)
		nameToken := p.tryConsume(tokenName)
		regexpOrWildcardToken := p.tryConsumeRegexpOrWildcard(nameToken)

		if nameToken != nil || regexpOrWildcardToken != nil {
			prefix := ""
			if charToken != nil {
				prefix = charToken.value
			}
			if prefix != "" && prefix != opts.prefixString() {
				p.pendingFixedValue += prefix
				prefix = ""
			}
			if err := p.flushPendingFixedValue(); err != nil {
				return nil, err
			}
			modifierToken := p.tryConsumeModifier()
			if err := p.addPart(prefix, nameToken, regexpOrWildcardToken, "", modifierToken); err != nil {
				return nil, err
			}
			continue
		}

		fixedToken := charToken
		if fixedToken == nil {
			fixedToken = p.tryConsume(tokenEscapedChar)
		}
		if fixedToken != nil {
			p.pendingFixedValue += fixedToken.value
			continue
		}

		if openToken := p.tryConsume(tokenOpen); openToken != nil {
			prefix := p.consumeText()
			nameToken := p.tryConsume(tokenName)
			regexpOrWildcardToken := p.tryConsumeRegexpOrWildcard(nameToken)
			suffix := p.consumeText()
			if _, err := p.consumeRequired(tokenClose); err != nil {
				return nil, err
			}
			modifierToken := p.tryConsumeModifier()
			if err := p.addPart(prefix, nameToken, regexpOrWildcardToken, suffix, modifierToken); err != nil {
				return nil, err
			}
			continue
		}

		if err := p.flushPendingFixedValue(); err != nil {
			return nil, err
		}
		if _, err := p.consumeRequired(tokenEnd); err != nil {
			return nil, err
		}
	}

	return p.parts, nil
}

type patternParser struct {
	callback              encodingCallback
	segmentWildcardRegexp string
	pendingFixedValue     string
	tokens                []token
	parts                 []part
	index                 int
	nextNumericName       int
}

func (p *patternParser) tryConsume(typ tokenType) *token {
	if p.index >= len(p.tokens) {
		return nil
	}
	next := p.tokens[p.index]
	if next.typ != typ {
		return nil
	}
	p.index++
	return &next
}

// tryConsumeRegexpOrWildcard consumes a regexp token, or an asterisk when
// no name token came first.
func (p *patternParser) tryConsumeRegexpOrWildcard(nameToken *token) *token {
	tok := p.tryConsume(tokenRegexp)
	if nameToken == nil && tok == nil {
		tok = p.tryConsume(tokenAsterisk)
	}
	return tok
}

func (p *patternParser) tryConsumeModifier() *token {
	if tok := p.tryConsume(tokenOtherModifier); tok != nil {
		return tok
	}
	return p.tryConsume(tokenAsterisk)
}

func (p *patternParser) consumeText() string {
	var sb strings.Builder
	for {
		tok := p.tryConsume(tokenChar)
		if tok == nil {
			tok = p.tryConsume(tokenEscapedChar)
		}
		if tok == nil {
			break
		}
		sb.WriteString(tok.value)
	}
	return sb.String()
}

func (p *patternParser) consumeRequired(typ tokenType) (*token, error) {
	tok := p.tryConsume(typ)
	if tok == nil {
		return nil, fmt.Errorf("%w: %w at index %d", ErrCompile, ErrMissingToken, p.index)
	}
	return tok, nil
}

func (p *patternParser) flushPendingFixedValue() error {
	if p.pendingFixedValue == "" {
		return nil
	}
	encoded, err := p.callback(p.pendingFixedValue)
	if err != nil {
		return err
	}
	p.pendingFixedValue = ""
	p.parts = append(p.parts, part{typ: partFixedText, value: encoded, modifier: modifierNone})
	return nil
}

func (p *patternParser) addPart(prefix string, nameToken, regexpOrWildcardToken *token, suffix string, modifierToken *token) error {
	modifier := modifierNone
	if modifierToken != nil {
		switch modifierToken.value {
		case "?":
			modifier = modifierOptional
		case "*":
			modifier = modifierZeroOrMore
		case "+":
			modifier = modifierOneOrMore
		}
	}

	if nameToken == nil && regexpOrWildcardToken == nil && modifier == modifierNone {
		p.pendingFixedValue += prefix
		return nil
	}

	if err := p.flushPendingFixedValue(); err != nil {
		return err
	}

	if nameToken == nil && regexpOrWildcardToken == nil {
		if suffix != "" {
			return fmt.Errorf("%w: %w", ErrCompile, ErrDanglingSuffix)
		}
		if prefix == "" {
			return nil
		}
		encoded, err := p.callback(prefix)
		if err != nil {
			return err
		}
		p.parts = append(p.parts, part{typ: partFixedText, value: encoded, modifier: modifier})
		return nil
	}

	regexpValue := ""
	switch {
	case regexpOrWildcardToken == nil:
		regexpValue = p.segmentWildcardRegexp
	case regexpOrWildcardToken.typ == tokenAsterisk:
		regexpValue = fullWildcardRegexpValue
	default:
		regexpValue = regexpOrWildcardToken.value
	}

	typ := partRegexp
	switch regexpValue {
	case p.segmentWildcardRegexp:
		typ = partSegmentWildcard
		regexpValue = ""
	case fullWildcardRegexpValue:
		typ = partFullWildcard
		regexpValue = ""
	}

	name := ""
	if nameToken != nil {
		name = nameToken.value
	} else if regexpOrWildcardToken != nil {
		name = strconv.Itoa(p.nextNumericName)
		p.nextNumericName++
	}
	if p.isDuplicateName(name) {
		return fmt.Errorf("%w: %w %q", ErrCompile, ErrDuplicateName, name)
	}

	encodedPrefix, err := p.callback(prefix)
	if err != nil {
		return err
	}
	encodedSuffix, err := p.callback(suffix)
	if err != nil {
		return err
	}
	p.parts = append(p.parts, part{
		typ:      typ,
		value:    regexpValue,
		modifier: modifier,
		name:     name,
		prefix:   encodedPrefix,
		suffix:   encodedSuffix,
	})
	return nil
}

func (p *patternParser) isDuplicateName(name string) bool {
	for _, part := range p.parts {
		if part.name == name {
			return true
		}
	}
	return false
}

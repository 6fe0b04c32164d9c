// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"strconv"
	"strings"

	"github.com/tigerwill90/wurl/internal/bytesconv"
	"github.com/tigerwill90/wurl/internal/stringutil"
	"golang.org/x/net/idna"
)

type hostKind uint8

const (
	hostNone hostKind = iota
	hostEmpty
	hostDomain
	hostIPv4
	hostIPv6
	hostOpaque
)

// host is the parsed authority host. The value is always the serialized
// form: a lowercased ascii domain, dot-decimal for ipv4, a bracketed and
// compressed hex form for ipv6, or a percent-encoded opaque string.
type host struct {
	value string
	kind  hostKind
}

func (h host) isNull() bool {
	return h.kind == hostNone
}

func (h host) isEmpty() bool {
	return h.kind == hostEmpty || h.kind != hostNone && h.value == ""
}

// lookupProfile follows the WHATWG domain-to-ascii definition with
// beStrict set to false: UTS-46 mapping without DNS length verification.
var lookupProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

var transitionalProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(true),
)

// parseHost parses input into a host per https://url.spec.whatwg.org/#host-parsing.
// The input must already be free of tabs and newlines. For special scheme
// urls notSpecial is false and the domain path applies, otherwise the host
// stays opaque.
func parseHost(input string, notSpecial bool, transitional bool) (host, error) {
	if len(input) > 0 && input[0] == '[' {
		if !strings.HasSuffix(input, "]") {
			return host{}, ErrInvalidIPv6
		}
		address, err := parseIPv6(input[1 : len(input)-1])
		if err != nil {
			return host{}, err
		}
		return host{kind: hostIPv6, value: "[" + serializeIPv6(address) + "]"}, nil
	}

	if notSpecial {
		return parseOpaqueHost(input)
	}
	if input == "" {
		return host{}, ErrMissingHost
	}

	domain := percentDecode(input, strings.IndexByte(input, '%'))
	asciiDomain, err := domainToASCII(domain, transitional)
	if err != nil {
		return host{}, err
	}
	if asciiDomain == "" {
		return host{}, ErrInvalidHost
	}
	for i := 0; i < len(asciiDomain); i++ {
		if isForbiddenDomainByte(asciiDomain[i]) {
			return host{}, ErrInvalidHost
		}
	}

	if endsInNumber(asciiDomain) {
		ipv4, err := parseIPv4(asciiDomain)
		if err != nil {
			return host{}, err
		}
		return host{kind: hostIPv4, value: serializeIPv4(ipv4)}, nil
	}
	return host{kind: hostDomain, value: asciiDomain}, nil
}

// parseOpaqueHost validates input against the forbidden host code points
// ('%' stays allowed) and percent-encodes it with the C0 control set.
func parseOpaqueHost(input string) (host, error) {
	for i := 0; i < len(input); i++ {
		if input[i] != '%' && isForbiddenHostByte(input[i]) {
			return host{}, ErrInvalidHost
		}
	}
	if input == "" {
		return host{kind: hostEmpty}, nil
	}
	return host{kind: hostOpaque, value: percentEncode(input, &c0ControlSet)}, nil
}

// domainToASCII converts domain to its ascii form. Pure ascii domains that
// do not embed a punycode label take a fast lowercasing path, everything
// else goes through the UTS-46 table of x/net/idna.
func domainToASCII(domain string, transitional bool) (string, error) {
	ascii := true
	for i := 0; i < len(domain); i++ {
		if domain[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii && !strings.Contains(domain, "xn--") && !strings.Contains(domain, "XN--") {
		buf := make([]byte, len(domain))
		for i := 0; i < len(domain); i++ {
			buf[i] = stringutil.ToLowerASCII(domain[i])
		}
		return bytesconv.String(buf), nil
	}

	profile := lookupProfile
	if transitional {
		profile = transitionalProfile
	}
	out, err := profile.ToASCII(domain)
	if err != nil {
		return "", ErrInvalidHost
	}
	return out, nil
}

// endsInNumber reports whether the last dot-separated label of the domain
// parses as an ipv4 number, which forces the whole host through the ipv4
// parser per https://url.spec.whatwg.org/#ends-in-a-number-checker.
func endsInNumber(domain string) bool {
	last := domain
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		if i == len(domain)-1 {
			trimmed := domain[:i]
			if j := strings.LastIndexByte(trimmed, '.'); j >= 0 {
				last = trimmed[j+1:]
			} else if trimmed == "" {
				return false
			} else {
				last = trimmed
			}
		} else {
			last = domain[i+1:]
		}
	}
	if last == "" {
		return false
	}

	digits := true
	for i := 0; i < len(last); i++ {
		if !isASCIIDigit(last[i]) {
			digits = false
			break
		}
	}
	if digits {
		return true
	}
	_, err := parseIPv4Number(last)
	return err == nil
}

// parseIPv4 parses the domain as a dot-separated ipv4 address where each
// part may be decimal, octal (leading 0) or hexadecimal (0x prefix).
func parseIPv4(input string) (uint32, error) {
	parts := strings.Split(input, ".")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 4 {
		return 0, ErrInvalidIPv4
	}

	numbers := make([]uint64, 0, 4)
	for _, part := range parts {
		n, err := parseIPv4Number(part)
		if err != nil {
			return 0, ErrInvalidIPv4
		}
		numbers = append(numbers, n)
	}
	for _, n := range numbers[:len(numbers)-1] {
		if n > 255 {
			return 0, ErrInvalidIPv4
		}
	}
	last := numbers[len(numbers)-1]
	if last >= uint64(1)<<(8*(5-len(numbers))) {
		return 0, ErrInvalidIPv4
	}

	ipv4 := uint32(last)
	for i, n := range numbers[:len(numbers)-1] {
		ipv4 += uint32(n) << (8 * (3 - i))
	}
	return ipv4, nil
}

func parseIPv4Number(input string) (uint64, error) {
	if input == "" {
		return 0, ErrInvalidIPv4
	}
	radix := 10
	if len(input) >= 2 && input[0] == '0' && (input[1]|0x20) == 'x' {
		input = input[2:]
		radix = 16
	} else if len(input) >= 2 && input[0] == '0' {
		input = input[1:]
		radix = 8
	}
	if input == "" {
		return 0, nil
	}
	for i := 0; i < len(input); i++ {
		b := input[i]
		switch radix {
		case 16:
			if !isASCIIHexDigit(b) {
				return 0, ErrInvalidIPv4
			}
		case 8:
			if b < '0' || b > '7' {
				return 0, ErrInvalidIPv4
			}
		default:
			if !isASCIIDigit(b) {
				return 0, ErrInvalidIPv4
			}
		}
	}
	n, err := strconv.ParseUint(input, radix, 64)
	if err != nil {
		return 0, ErrInvalidIPv4
	}
	if n > 1<<32-1 {
		return 0, ErrInvalidIPv4
	}
	return n, nil
}

func serializeIPv4(address uint32) string {
	buf := make([]byte, 0, 15)
	for i := 3; i >= 0; i-- {
		buf = strconv.AppendUint(buf, uint64(address>>(8*i))&0xff, 10)
		if i > 0 {
			buf = append(buf, '.')
		}
	}
	return bytesconv.String(buf)
}

// parseIPv6 parses the address between brackets per
// https://url.spec.whatwg.org/#concept-ipv6-parser.
func parseIPv6(input string) ([8]uint16, error) {
	var address [8]uint16
	pieceIndex := 0
	compress := -1
	pointer := 0

	if len(input) > 0 && input[0] == ':' {
		if !strings.HasPrefix(input, "::") {
			return address, ErrInvalidIPv6
		}
		pointer = 2
		pieceIndex = 1
		compress = pieceIndex
	}

	for pointer < len(input) {
		if pieceIndex == 8 {
			return address, ErrInvalidIPv6
		}
		if input[pointer] == ':' {
			if compress >= 0 {
				return address, ErrInvalidIPv6
			}
			pointer++
			pieceIndex++
			compress = pieceIndex
			continue
		}

		value, length := 0, 0
		for length < 4 && pointer < len(input) && isASCIIHexDigit(input[pointer]) {
			value = value<<4 | unhex(input[pointer])
			pointer++
			length++
		}

		if pointer < len(input) && input[pointer] == '.' {
			if length == 0 {
				return address, ErrInvalidIPv6
			}
			pointer -= length
			if pieceIndex > 6 {
				return address, ErrInvalidIPv6
			}
			numbersSeen := 0
			for pointer < len(input) {
				ipv4Piece := -1
				if numbersSeen > 0 {
					if input[pointer] == '.' && numbersSeen < 4 {
						pointer++
					} else {
						return address, ErrInvalidIPv6
					}
				}
				if pointer == len(input) || !isASCIIDigit(input[pointer]) {
					return address, ErrInvalidIPv6
				}
				for pointer < len(input) && isASCIIDigit(input[pointer]) {
					digit := int(input[pointer] - '0')
					switch {
					case ipv4Piece < 0:
						ipv4Piece = digit
					case ipv4Piece == 0:
						return address, ErrInvalidIPv6
					default:
						ipv4Piece = ipv4Piece*10 + digit
					}
					if ipv4Piece > 255 {
						return address, ErrInvalidIPv6
					}
					pointer++
				}
				address[pieceIndex] = address[pieceIndex]<<8 | uint16(ipv4Piece)
				numbersSeen++
				if numbersSeen == 2 || numbersSeen == 4 {
					pieceIndex++
				}
			}
			if numbersSeen != 4 {
				return address, ErrInvalidIPv6
			}
			break
		}

		if pointer < len(input) && input[pointer] == ':' {
			pointer++
			if pointer == len(input) {
				return address, ErrInvalidIPv6
			}
		} else if pointer < len(input) {
			return address, ErrInvalidIPv6
		}
		address[pieceIndex] = uint16(value)
		pieceIndex++
	}

	if compress >= 0 {
		swaps := pieceIndex - compress
		pieceIndex = 7
		for pieceIndex != 0 && swaps > 0 {
			address[pieceIndex], address[compress+swaps-1] = address[compress+swaps-1], address[pieceIndex]
			pieceIndex--
			swaps--
		}
	} else if pieceIndex != 8 {
		return address, ErrInvalidIPv6
	}
	return address, nil
}

// serializeIPv6 compresses the longest run of zero pieces per
// https://url.spec.whatwg.org/#concept-ipv6-serializer. Brackets are not
// included.
func serializeIPv6(address [8]uint16) string {
	compress, compressLen := -1, 1
	for i := 0; i < 8; i++ {
		if address[i] != 0 {
			continue
		}
		length := 0
		for j := i; j < 8 && address[j] == 0; j++ {
			length++
		}
		if length > compressLen {
			compress, compressLen = i, length
		}
	}

	buf := make([]byte, 0, 41)
	ignore0 := false
	for pieceIndex := 0; pieceIndex < 8; pieceIndex++ {
		if ignore0 && address[pieceIndex] == 0 {
			continue
		}
		ignore0 = false
		if pieceIndex == compress {
			if pieceIndex == 0 {
				buf = append(buf, "::"...)
			} else {
				buf = append(buf, ':')
			}
			ignore0 = true
			continue
		}
		buf = strconv.AppendUint(buf, uint64(address[pieceIndex]), 16)
		if pieceIndex != 7 {
			buf = append(buf, ':')
		}
	}
	return bytesconv.String(buf)
}

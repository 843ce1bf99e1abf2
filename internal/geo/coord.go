package geo

import (
	"regexp"
	"strings"

	"github.com/paulmach/orb"
)

const num = `\d+(?:\.\d+)?`

var (
	reUnsigned     = regexp.MustCompile(`^` + num + `$`)
	reSignedHead   = regexp.MustCompile(`^[+-]\d+`)
	reSignedTail   = regexp.MustCompile(`[+-]\d+$`)
	reAdjoinedPair = regexp.MustCompile(`^([+-]` + num + `)([+-]` + num + `)$`)
	reHemiPair     = regexp.MustCompile(`(?i)^([+-]?` + num + `)([NS])[,/\s]+([+-]?` + num + `)([EW])$`)
	rePlainPair    = regexp.MustCompile(`^([+-]?` + num + `)[,\s]+([+-]?` + num + `)$`)
)

// DecodeScalar converts one coordinate component to signed decimal degrees.
// Accepted forms are plain degrees (32.5), degrees-minutes (3230.0) and
// degrees-minutes-seconds (323000), with an optional leading sign and an
// optional trailing hemisphere letter. A hemisphere letter wins over a sign.
func DecodeScalar(token string) (float64, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	var hemisphere byte
	switch last := token[len(token)-1]; last {
	case 'N', 'S', 'E', 'W', 'n', 's', 'e', 'w':
		hemisphere = last &^ 0x20 // upper case
		token = token[:len(token)-1]
	}

	sign := 1.0
	if token != "" && (token[0] == '+' || token[0] == '-') {
		if token[0] == '-' {
			sign = -1
		}
		token = token[1:]
	}

	switch hemisphere {
	case 'S', 'W':
		sign = -1
	case 'N', 'E':
		sign = 1
	}

	if !reUnsigned.MatchString(token) {
		return 0, false
	}

	whole, fraction, _ := strings.Cut(token, ".")
	v, ok := angleFromDigits(whole, fraction)
	if !ok {
		return 0, false
	}

	return sign * v, true
}

// DecodePair converts a latitude/longitude token pair into a lon/lat point.
// Grammars are tried in order and the first one that decodes wins:
//
//	+323000-1163000         adjoined signed pair, split at the second sign
//	+32.5-116.5             adjoined signed pair, regular expression
//	323000N 1163000W        hemisphere pair, separated by comma, slash or space
//	32.5, -116.5            plain pair, separated by comma or space
//
// Latitude always comes first in the source text.
func DecodePair(text string) (orb.Point, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return orb.Point{}, false
	}

	if p, ok := decodeAdjoined(text); ok {
		return p, true
	}

	if m := reAdjoinedPair.FindStringSubmatch(text); m != nil {
		return decodeLatLon(m[1], m[2])
	}

	if m := reHemiPair.FindStringSubmatch(text); m != nil {
		return decodeLatLon(m[1]+m[2], m[3]+m[4])
	}

	if m := rePlainPair.FindStringSubmatch(text); m != nil {
		return decodeLatLon(m[1], m[2])
	}

	return orb.Point{}, false
}

// decodeAdjoined splits "+DDMMSS-DDDMMSS" style text at the second sign.
// The split point is the first '-' after position 0 when it comes before
// the first '+', otherwise the first '+'. This is a positional heuristic:
// text with stray signs in the middle splits at the earliest one.
func decodeAdjoined(text string) (orb.Point, bool) {
	if !reSignedHead.MatchString(text) || !reSignedTail.MatchString(text) {
		return orb.Point{}, false
	}

	var split int
	plus := strings.IndexByte(text[1:], '+')
	minus := strings.IndexByte(text[1:], '-')
	switch {
	case plus < 0:
		split = minus
	case minus >= 0 && minus < plus:
		split = minus
	default:
		split = plus
	}
	if split < 0 {
		return orb.Point{}, false
	}
	split++ // offset of text[1:]

	return decodeLatLon(text[:split], text[split:])
}

func decodeLatLon(latToken, lonToken string) (orb.Point, bool) {
	lat, ok := DecodeScalar(latToken)
	if !ok {
		return orb.Point{}, false
	}
	lon, ok := DecodeScalar(lonToken)
	if !ok {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}

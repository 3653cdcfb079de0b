package tonapi

import "strings"

// isRawHex reports whether s is a 64-character hex workchain address body
func isRawHex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Normalize rewrites a TON address into a form the API can decode.
// User-friendly EQ/UQ addresses pass through; raw 64-hex bodies get the
// required "0:" workchain prefix (the API cannot decode bare hex). Unclear
// formats are returned as-is and left to the API to reject.
func Normalize(address string) string {
	if strings.HasPrefix(address, "EQ") || strings.HasPrefix(address, "UQ") {
		return address
	}

	hex := strings.TrimPrefix(address, "0:")
	if isRawHex(hex) {
		return "0:" + hex
	}
	return address
}

// CandidateForms returns the address formats to try against the API, in
// order. Wallet v4 and v5 accounts sometimes resolve under one form but not
// another, so callers walk the list until a lookup succeeds.
func CandidateForms(address string) []string {
	var forms []string
	add := func(a string) {
		for _, existing := range forms {
			if existing == a {
				return
			}
		}
		forms = append(forms, a)
	}

	if isRawHex(address) {
		add("0:" + address)
	}
	add(Normalize(address))
	add(address)
	return forms
}

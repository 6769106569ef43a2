package util

// Byte classifiers shared by the assembler's symbol scanner.

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsSymbolPunct reports the punctuation a hack symbol may contain: _ . $ :
func IsSymbolPunct(b byte) bool {
	return b == '_' || b == '.' || b == '$' || b == ':'
}

func IsSymbolStart(b byte) bool {
	return IsLetter(b) || IsSymbolPunct(b)
}

func IsSymbolChar(b byte) bool {
	return IsSymbolStart(b) || IsNumber(b)
}

// IsSymbol reports whether s is a valid symbol: a non-digit start followed by
// letters, digits or symbol punctuation.
func IsSymbol(s string) bool {
	if len(s) == 0 || !IsSymbolStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsSymbolChar(s[i]) {
			return false
		}
	}
	return true
}

// IsDecimal reports whether s is an optionally negative run of digits.
func IsDecimal(s string) bool {
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNumber(s[i]) {
			return false
		}
	}
	return true
}

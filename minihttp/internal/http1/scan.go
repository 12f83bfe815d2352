package http1

import "strings"

// isSeparator reports whether c ends a word on the request line. A bare '\n'
// is accepted as a line terminator alongside the space.
func isSeparator(c byte) bool {
	return c == ' ' || c == '\n'
}

// NextWord splits s at its first separator. word is everything before the
// separator and rest everything after it; the separator itself is dropped.
// ok is false when s contains no separator at all, including when s is empty.
//
// A '\r' is an ordinary byte here, so "HTTP/1.1\r\n" yields the word
// "HTTP/1.1\r". Use NextWordCRLF to treat "\r\n" as one terminator.
//
// Separators are ASCII, and in UTF-8 an ASCII byte never occurs inside a
// multi-byte sequence, so both slice bounds always fall on rune boundaries.
func NextWord(s string) (word, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		if isSeparator(s[i]) {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// NextWordCRLF is NextWord, except that a word ended by '\n' loses one
// trailing '\r'. A '\r' anywhere else stays part of the word.
func NextWordCRLF(s string) (word, rest string, ok bool) {
	word, rest, ok = NextWord(s)
	if ok && s[len(word)] == '\n' {
		word = strings.TrimSuffix(word, "\r")
	}
	return word, rest, ok
}

package http1

import "testing"

type nextWordCase struct {
	name string
	in   string
	word string
	rest string
	ok   bool
}

func runNextWord(t *testing.T, fn func(string) (string, string, bool), cases []nextWordCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			word, rest, ok := fn(tc.in)
			if ok != tc.ok || word != tc.word || rest != tc.rest {
				t.Fatalf("(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tc.in, word, rest, ok, tc.word, tc.rest, tc.ok)
			}
		})
	}
}

func TestNextWord(t *testing.T) {
	runNextWord(t, NextWord, []nextWordCase{
		{name: "empty", in: "", ok: false},
		{name: "no separator", in: "GET", ok: false},
		{name: "space", in: "GET / HTTP/1.1", word: "GET", rest: "/ HTTP/1.1", ok: true},
		{name: "newline", in: "HTTP/1.1\nHost: x", word: "HTTP/1.1", rest: "Host: x", ok: true},
		{name: "crlf keeps cr", in: "HTTP/1.1\r\nHost: x", word: "HTTP/1.1\r", rest: "Host: x", ok: true},
		{name: "cr is not a separator", in: "/a\rb HTTP/1.1", word: "/a\rb", rest: "HTTP/1.1", ok: true},
		{name: "cr only", in: "GET\r", ok: false},
		{name: "leading separator", in: " GET", word: "", rest: "GET", ok: true},
		{name: "separator only", in: "\n", word: "", rest: "", ok: true},
		{name: "trailing separator", in: "GET ", word: "GET", rest: "", ok: true},
		{name: "multibyte", in: "/café HTTP/1.1", word: "/café", rest: "HTTP/1.1", ok: true},
		{name: "multibyte no separator", in: "日本語", ok: false},
	})
}

func TestNextWordCRLF(t *testing.T) {
	runNextWord(t, NextWordCRLF, []nextWordCase{
		{name: "empty", in: "", ok: false},
		{name: "crlf", in: "HTTP/1.1\r\nHost: x", word: "HTTP/1.1", rest: "Host: x", ok: true},
		{name: "bare newline", in: "HTTP/1.1\nHost: x", word: "HTTP/1.1", rest: "Host: x", ok: true},
		{name: "cr before space kept", in: "/a\r b", word: "/a\r", rest: "b", ok: true},
		{name: "inner cr kept", in: "/a\rb HTTP/1.1", word: "/a\rb", rest: "HTTP/1.1", ok: true},
		{name: "only one cr dropped", in: "x\r\r\n", word: "x\r", rest: "", ok: true},
		{name: "lone crlf", in: "\r\n", word: "", rest: "", ok: true},
	})
}

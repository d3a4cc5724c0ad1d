package fuzztests

import (
	"testing"
)

const (
	maxFuzzInput = 1 << 16
	maxSeedBytes = 4 << 10
)

// languageSeeds cover every construct of the surface language.
var languageSeeds = []string{
	"",
	"1 + 2 * 3",
	"val x = 1\nvar y: F64 = 2.0\ny = y * 2.0",
	"fun add(a: I32, b: I32): I32 = a + b\nadd(1, 2)",
	"fun pick(c: Bool): String { if c { \"yes\" } else { \"no\" } }",
	"var i = 0\nwhile i < 10 { i = i + 1; if i == 5 { break } }",
	"val z = { val t = 3; t * 2 }",
	"val w = { if true { break 10 }; 20 }",
	"fun f(n: I32): I32 { if n > 0 { return n }; 0 }",
	"@[builtin] fun println(s: String)\nfun main() { println(\"a\\n\\t\\\"\\\\\") }",
	"// line\n/* block */ val s = \"x\" + i32_to_string(-1 % 3)",
	"!true && false || 1 != 2 && 3 >= 4",
	"fun main(): I32 { val a = f64_to_i32(i32_to_f64(3) / 2.0); a }",
}

// malformedSeeds stress error recovery.
var malformedSeeds = []string{
	"val = 1",
	"fun (",
	"fun f(a: I32 { a }",
	"{ { { { } } }",
	"\"unterminated",
	"/* open comment",
	"val x = 99999999999",
	"while { break 1 }",
	"return 1",
	"x = ",
	"@[",
	"val é = 1\nval é = 2",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add(clampSeed([]byte(s)))
	}
	for _, s := range malformedSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

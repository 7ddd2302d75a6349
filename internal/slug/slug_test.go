package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ascii words", input: "Hello World", expected: "hello-world"},
		{name: "punctuation removed", input: "Hello, World!", expected: "hello-world"},
		{name: "cyrillic preserved", input: "Пельмени по-сибирски", expected: "пельмени-по-сибирски"},
		{name: "accents preserved", input: "Crème Brûlée", expected: "crème-brûlée"},
		{name: "compatibility forms normalized", input: "ﬁsh soup", expected: "fish-soup"},
		{name: "runs collapsed", input: "a  -- b", expected: "a-b"},
		{name: "edges trimmed", input: " _-salt-_ ", expected: "salt"},
		{name: "digits kept", input: "10% milk", expected: "10-milk"},
		{name: "inner underscore kept", input: "sea_salt", expected: "sea_salt"},
		{name: "only symbols", input: "!!!", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}

func TestMakeIsIdempotent(t *testing.T) {
	for _, input := range []string{"Борщ зелёный", "Apple Pie", "a--b"} {
		once := Make(input)
		assert.Equal(t, once, Make(once), "slug of slug should not change for %q", input)
	}
}

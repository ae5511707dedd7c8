package textmatch

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"keeps case", "The Cat sat.", []string{"The", "Cat", "sat"}},
		{"contraction stays whole", "I don't know", []string{"I", "don't", "know"}},
		{"typographic apostrophe", "I’m here!", []string{"I’m", "here"}},
		{"duplicates kept", "the cat sat on the mat", []string{"the", "cat", "sat", "on", "the", "mat"}},
		{"markup removed", "**Big** deal", []string{"Big", "deal"}},
		{"zero width splits", "a\u200bb", []string{"a", "b"}},
		{"interior punctuation stays attached", "Hello, world", []string{"Hello,", "world"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

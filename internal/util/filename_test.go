package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Favourites", "Favourites"},
		{"  My\nList\r  ", "MyList"},
		{`Say "hi"`, "Say -hi-"},
		{"a/b\\c", "a-b-c"},
		{"\n\n", "untitled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}

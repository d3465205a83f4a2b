package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileSafeDefault(t *testing.T) {
	for _, s := range []string{"hello world", "hello?world", "hello:world", "hello$world"} {
		t.Run(s, func(t *testing.T) {
			assert.Equal(t, "hello-world", FileSafeDefault(s))
		})
	}
}

func TestFileSafe_Replacement(t *testing.T) {
	tests := []struct {
		s, replacement, want string
	}{
		{"hello world", "_", "hello_world"},
		{"hello world", "", "helloworld"},
		{"hello?world", "_", "hello_world"},
		{"hello:world", "", "helloworld"},
		{"hello^world", "-", "hello-world"},
		{"hello world", " ", "hello world"},
		{"HELLO", "-", "hello"},
		{"fMRIPrep", "-", "fmriprep"},
		{"Structural Masking", "-", "structural-masking"},
		{"keep_under-score", "-", "keep_under-score"},
		{"Région été", "-", "région-été"},
		{"step٣", "-", "step٣"},
		{"a.b/c", "-", "a-b-c"},
	}

	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.replacement, func(t *testing.T) {
			assert.Equal(t, tt.want, FileSafe(tt.s, tt.replacement))
		})
	}
}

func TestB64URLSafeHash(t *testing.T) {
	for _, s := range []string{"", "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", " \t\n\r\x0b\x0c"} {
		h := B64URLSafeHash(s)
		assert.NotContains(t, h, "=")
		assert.NotContains(t, h, "+")
		assert.NotContains(t, h, "/")
		// 20-byte SHA-1 -> 27 unpadded base64 characters.
		assert.Len(t, h, 27)
	}
}

func TestB64URLSafeHash_KnownValue(t *testing.T) {
	// sha1("") = da39a3ee5e6b4b0d3255bfef95601890afd80709
	assert.Equal(t, "2jmj7l5rSw0yVb_vlWAYkK_YBwk", B64URLSafeHash(""))
	assert.False(t, strings.HasSuffix(B64URLSafeHash("abc"), "="))
}

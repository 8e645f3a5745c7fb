package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "standard email", input: "john@gmail.com", want: "j***@gmail.com"},
		{name: "single char local part", input: "j@example.com", want: "j***@example.com"},
		{name: "empty string", input: "", want: ""},
		{name: "no at sign", input: "invalidemail", want: "***"},
		{name: "empty local part", input: "@domain.com", want: "***@domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactEmail(tt.input))
		})
	}
}

func TestRedactAll(t *testing.T) {
	got := RedactAll([]string{"ann@example.com", "bob@example.com"})
	assert.Equal(t, []string{"a***@example.com", "b***@example.com"}, got)
}

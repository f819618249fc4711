package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type extraction struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	tests := []struct {
		name string
		raw  string
		want extraction
	}{
		{
			name: "bare object",
			raw:  `{"name":"Ada","email":"ada@example.com"}`,
			want: extraction{Name: "Ada", Email: "ada@example.com"},
		},
		{
			name: "fenced object",
			raw:  "```json\n{\"name\":\"Ada\",\"email\":\"ada@example.com\"}\n```",
			want: extraction{Name: "Ada", Email: "ada@example.com"},
		},
		{
			name: "prose around object",
			raw:  "Here is the extraction:\n{\"name\":\"Ada\",\"email\":\"ada@example.com\"}\nLet me know if you need more.",
			want: extraction{Name: "Ada", Email: "ada@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got extraction
			require.NoError(t, DecodeJSON(tt.raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSONInvalid(t *testing.T) {
	var v map[string]any
	err := DecodeJSON("the model refused to answer", &v)
	require.Error(t, err)
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLocation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"landkreis", "Landkreise Musterkreis", "Musterkreis"},
		{"landkreis in sentence", "Polizei für die Landkreise Harburg und Stade", "Harburg"},
		{"comma", "Berlin, Deutschland", "Berlin"},
		{"slash", "Neustadt/Weinstraße", "Neustadt"},
		{"dash", "Garmisch-Partenkirchen", "Garmisch"},
		{"frankfurt special case", "Frankfurt/Main", "Frankfurt am Main"},
		{"plain", "Hamburg", "Hamburg"},
		{"whitespace", "  München  ", "München"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLocation(tt.raw))
		})
	}
}

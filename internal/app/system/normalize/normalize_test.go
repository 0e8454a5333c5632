package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalars(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"email", Email, "  Ana@Example.COM\t", "ana@example.com"},
		{"email blank", Email, "   ", ""},
		{"name keeps case", Name, "  Ana Souza  ", "Ana Souza"},
		{"auth method", AuthMethod, " Google ", "google"},
		{"status", Status, "ACCEPTED", "accepted"},
		{"role", Role, " Editor", "editor"},
		{"currency", Currency, " eur ", "EUR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestTags(t *testing.T) {
	assert.Equal(t,
		[]string{"lisbon", "food", "street art"},
		Tags([]string{" Lisbon", "food", "", "LISBON", "  ", "Street Art", "food"}))

	got := Tags(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

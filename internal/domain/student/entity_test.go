package student

import (
	"strings"
	"testing"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(1, "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, &Student{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"}, s)
}

func TestNew_NameBounds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"too short", "A", true},
		{"min length", "Al", false},
		{"max length", strings.Repeat("a", NameMaxLength), false},
		{"too long", strings.Repeat("a", NameMaxLength+1), true},
		{"multibyte counted as characters", "Жё", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(1, tt.input, "x@example.com")
			if tt.wantErr {
				assert.True(t, shared.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_EmailRequired(t *testing.T) {
	_, err := New(1, "Ada", "  ")
	assert.True(t, shared.IsValidation(err))
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, shared.IsNotFound(ErrStudentNotFound))
	assert.True(t, shared.IsAlreadyExists(ErrDuplicateID))
	assert.True(t, shared.IsAlreadyExists(ErrDuplicateEmail))
}

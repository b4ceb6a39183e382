package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"anna@example.com", "Anna.Muster+fix@zug.ch", "  a@b.io "}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{"not-an-email", "a@b", "@example.com", "anna@@example.com", "anna..m@example.com", "anna@exa mple.com"}
	for _, email := range invalid {
		assert.ErrorIs(t, ValidateEmail(email), ErrInvalidEmail, email)
	}

	assert.ErrorIs(t, ValidateEmail("   "), ErrRequired)
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone(""))
	assert.NoError(t, ValidatePhone("+41 41 123 45 67"))
	assert.NoError(t, ValidatePhone("041/123.45.67"))
	assert.ErrorIs(t, ValidatePhone("call me"), ErrInvalidPhone)
	assert.ErrorIs(t, ValidatePhone("+41 41 123 45 67 89 12 34 56 78 90"), ErrTooLong)
}

func TestValidateName(t *testing.T) {
	assert.ErrorIs(t, ValidateName("имя", "  "), ErrRequired)
	assert.NoError(t, ValidateName("имя", "Anna"))

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'ä'
	}
	assert.ErrorIs(t, ValidateName("имя", string(long)), ErrTooLong)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "Grüe", TruncateRunes("Grüezi", 4))
	assert.Equal(t, "Grüezi", TruncateRunes("Grüezi", 10))
	assert.Equal(t, "Grüezi", TruncateRunes("Grüezi", 0))
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("Sicheres1Passwort"))
	assert.ErrorIs(t, ValidatePassword("Kurz1"), ErrTooShort)
	assert.Error(t, ValidatePassword("alleskleinundlang1"))
}

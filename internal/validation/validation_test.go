package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writex/internal/models"
)

func messageOf(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))
	return err.Error()
}

func TestStruct_Login(t *testing.T) {
	assert.NoError(t, Struct(models.LoginRequest{Email: "user@x.com", Password: "secret"}))
	assert.Equal(t, "Email is required", messageOf(t, Struct(models.LoginRequest{Password: "secret"})))
	assert.Equal(t, "Email must be a valid email", messageOf(t, Struct(models.LoginRequest{Email: "nope", Password: "secret"})))
	assert.Equal(t, "Password is required", messageOf(t, Struct(models.LoginRequest{Email: "user@x.com"})))
}

func TestStruct_RegisterForm(t *testing.T) {
	valid := models.RegisterForm{Username: "alice", Email: "alice@x.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, Struct(valid))

	mismatch := valid
	mismatch.ConfirmPassword = "secret2"
	assert.Equal(t, "Passwords do not match", messageOf(t, Struct(mismatch)))

	short := valid
	short.Password, short.ConfirmPassword = "abc", "abc"
	assert.Equal(t, "Password must be at least 6 characters", messageOf(t, Struct(short)))

	badName := valid
	badName.Username = "al"
	assert.Equal(t, "Username must be at least 3 characters long", messageOf(t, Struct(badName)))
}

func TestStruct_NoteInput(t *testing.T) {
	ok := models.NoteInput{Title: "t", Content: "c", Tags: []string{"go"}}
	assert.NoError(t, Struct(ok))

	longTag := ok
	longTag.Tags = []string{"go", strings.Repeat("x", 51)}
	assert.Equal(t, "Tag must be at most 50 characters", messageOf(t, Struct(longTag)))

	noTitle := ok
	noTitle.Title = ""
	assert.Equal(t, "Title is required", messageOf(t, Struct(noTitle)))
}

func TestStruct_ProfileUpdate(t *testing.T) {
	assert.NoError(t, Struct(models.ProfileUpdate{Bio: "hi"}))
	assert.NoError(t, Struct(models.ProfileUpdate{Avatar: "https://img.example.com/a.png"}))
	assert.Equal(t, "Avatar must be a valid URL", messageOf(t, Struct(models.ProfileUpdate{Avatar: "not a url"})))
	assert.Equal(t, "Bio must be at most 500 characters", messageOf(t, Struct(models.ProfileUpdate{Bio: strings.Repeat("b", 501)})))
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

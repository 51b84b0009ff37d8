package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	assert.Empty(t, ValidateLogin("test@example.com", "password123"))

	errs := ValidateLogin("", "")
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Password is required", errs["password"])

	errs = ValidateLogin("not-an-email", "password123")
	assert.Equal(t, "Invalid email", errs["email"])
}

func TestValidateRegistration(t *testing.T) {
	valid := RegisterRequest{
		Name:                 "Test User",
		Username:             "testuser",
		Email:                "test@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	assert.Empty(t, ValidateRegistration(valid))

	short := valid
	short.Password = "short"
	short.PasswordConfirmation = "short"
	errs := ValidateRegistration(short)
	assert.Equal(t, "Password must be at least 8 characters", errs["password"])

	mismatch := valid
	mismatch.PasswordConfirmation = "different1"
	errs = ValidateRegistration(mismatch)
	assert.Equal(t, "Passwords must match", errs["password_confirmation"])

	errs = ValidateRegistration(RegisterRequest{})
	assert.Len(t, errs, 5)
}

func TestValidateProfile(t *testing.T) {
	valid := ProfileRequest{Name: "Test User", Username: "testuser", Email: "test@example.com"}
	assert.Empty(t, ValidateProfile(valid))

	long := valid
	long.Name = strings.Repeat("x", MaxTitleLen+1)
	errs := ValidateProfile(long)
	assert.Equal(t, "Name too long", errs["name"])

	errs = ValidateProfile(ProfileRequest{Email: "bad"})
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Username is required", errs["username"])
	assert.Equal(t, "Invalid email", errs["email"])
}

func TestValidateListForm(t *testing.T) {
	assert.Empty(t, ValidateListForm("Groceries", "weekly shop"))

	errs := ValidateListForm("  ", "")
	assert.Equal(t, "Title is required", errs["title"])

	errs = ValidateListForm(strings.Repeat("x", MaxTitleLen+1), "")
	assert.Equal(t, "Title too long", errs["title"])

	errs = ValidateListForm("Fine", strings.Repeat("x", MaxDescriptionLen+1))
	assert.Equal(t, "Description too long", errs["description"])

	// Boundary lengths pass.
	assert.Empty(t, ValidateListForm(strings.Repeat("x", MaxTitleLen), strings.Repeat("y", MaxDescriptionLen)))
}

func TestTaskListTaskCount(t *testing.T) {
	five := 5

	loaded := TaskList{Tasks: []Task{{ID: 1}, {ID: 2}}, TasksCount: &five}
	assert.Equal(t, 2, loaded.TaskCount())

	counted := TaskList{TasksCount: &five}
	assert.Equal(t, 5, counted.TaskCount())

	assert.Zero(t, TaskList{}.TaskCount())
}

func TestTaskListCompletedTaskCount(t *testing.T) {
	l := TaskList{Tasks: []Task{
		{ID: 1, IsCompleted: true},
		{ID: 2},
		{ID: 3, IsCompleted: true},
	}}
	assert.Equal(t, 2, l.CompletedTaskCount())

	five := 5
	unloaded := TaskList{TasksCount: &five}
	assert.Zero(t, unloaded.CompletedTaskCount())
}

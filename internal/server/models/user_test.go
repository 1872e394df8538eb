package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Bob B", (&User{Username: "bob", FullName: "Bob B"}).DisplayName())
	assert.Equal(t, "bob", (&User{Username: "bob"}).DisplayName())
}

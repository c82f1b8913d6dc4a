// pkg/password/password_test.go
package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, h.Check("correct horse battery staple", hash))
	assert.False(t, h.Check("wrong password", hash))
	assert.False(t, h.Check("correct horse battery staple", "not a hash"))
}

func TestBcryptHasherDefaultCost(t *testing.T) {
	h := NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestHashesAreSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same password")
	assert.NoError(t, err)
	b, err := h.Hash("same password")
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}

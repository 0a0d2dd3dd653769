package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miniblog/miniblog/models"
)

func TestCanMutate(t *testing.T) {
	owner := &models.User{ID: 1, Username: "alice"}
	other := &models.User{ID: 2, Username: "bob"}
	post := &models.Post{ID: 10, UserID: 1}

	assert.True(t, CanMutate(owner, post))
	assert.False(t, CanMutate(other, post))
	assert.False(t, CanMutate(nil, post), "anonymous caller may not mutate")
	assert.False(t, CanMutate(owner, nil))
}

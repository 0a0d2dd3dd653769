package auth

import "github.com/miniblog/miniblog/models"

// CanMutate reports whether user may update or delete post: the caller must
// be authenticated and own the post. Pure; callers load both entities first.
func CanMutate(user *models.User, post *models.Post) bool {
	return user != nil && post != nil && user.ID == post.UserID
}

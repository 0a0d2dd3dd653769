package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miniblog/miniblog/auth"
	"github.com/miniblog/miniblog/store"
	"github.com/miniblog/miniblog/utils"
)

// PostController manages CRUD operations for posts.
type PostController struct {
	posts        store.PostStore
	feedPageSize int
}

// NewPostController creates a new PostController instance. feedPageSize is
// the default page size for listings when the client does not ask for one.
func NewPostController(posts store.PostStore, feedPageSize int) *PostController {
	if feedPageSize <= 0 {
		feedPageSize = 5
	}
	return &PostController{posts: posts, feedPageSize: feedPageSize}
}

// ListPosts returns the paginated feed, newest first, including author information.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), p.feedPageSize)

	cacheKey := fmt.Sprintf("cache:posts:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, hasMore, err := p.posts.ListRecent(ctx.Request.Context(), page, pageSize)
	if err != nil {
		utils.Sugar.Errorf("list posts failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := gin.H{
		"items": posts,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"has_more":  hasMore,
		},
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}

	cacheKey := "cache:post:detail:" + strconv.FormatUint(uint64(id), 10)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Sugar.Errorf("load post failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	payload := gin.H{"post": post}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// ListUserPosts returns posts created by a specific user (public).
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	userID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid user id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), p.feedPageSize)

	cacheKey := fmt.Sprintf("cache:user:%d:posts:page=%d:size=%d", userID, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, hasMore, err := p.posts.ListByUser(ctx.Request.Context(), userID, page, pageSize)
	if err != nil {
		utils.Sugar.Errorf("list user posts failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list user posts")
		return
	}

	payload := gin.H{
		"items": posts,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"has_more":  hasMore,
		},
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required,min=1"`
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title and content are required")
		return
	}

	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "login required")
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			utils.Error(ctx, http.StatusBadRequest, 40021, "title and content are required")
			return
		}
		utils.Sugar.Errorf("create post failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	p.invalidateCaches(post.ID, post.UserID)
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost allows the author to update their post. Owner, id and the
// creation timestamp never change.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required,min=1"`
		Content string `json:"content" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "title and content are required")
		return
	}

	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}

	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Sugar.Errorf("load post failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "login required")
		return
	}
	if !auth.CanMutate(user, post) {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own posts")
		return
	}

	updated, err := p.posts.Update(ctx.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrValidation):
			utils.Error(ctx, http.StatusBadRequest, 40025, "title and content are required")
		case errors.Is(err, store.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		default:
			utils.Sugar.Errorf("update post failed: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		}
		return
	}

	p.invalidateCaches(id, post.UserID)
	utils.Success(ctx, gin.H{"post": updated})
}

// DeletePost allows the author to delete their post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid post id")
		return
	}

	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Sugar.Errorf("load post failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	user, ok := currentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "login required")
		return
	}
	if !auth.CanMutate(user, post) {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own posts")
		return
	}

	if err := p.posts.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Sugar.Errorf("delete post failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	p.invalidateCaches(id, post.UserID)
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

func (p *PostController) invalidateCaches(postID, userID uint) {
	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.FormatUint(uint64(postID), 10))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:%d:posts:", userID))
}

func parsePagination(pageStr, sizeStr string, defaultSize int) (int, int) {
	page := 1
	pageSize := defaultSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

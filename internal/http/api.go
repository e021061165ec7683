package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"chirp/internal/domain"
	"chirp/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	posts   service.PostService
	follows service.FollowService
	search  service.SearchService
	feed    service.FeedService
}

func NewHandler(
	auth service.AuthService,
	posts service.PostService,
	follows service.FollowService,
	search service.SearchService,
	feed service.FeedService,
) *Handler {
	return &Handler{
		auth:    auth,
		posts:   posts,
		follows: follows,
		search:  search,
		feed:    feed,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/auth/signup", h.signup)
		api.POST("/auth/login", h.login)

		authed := api.Group("", h.requireAuth())
		{
			authed.POST("/posts", h.createPost)
			authed.GET("/posts/:id", h.getPost)
			authed.GET("/posts/:id/stats", h.getPostStats)
			authed.DELETE("/posts/:id", h.deletePost)
			authed.PUT("/posts/:id/favorite", h.favoritePost)
			authed.DELETE("/posts/:id/favorite", h.unfavoritePost)
			authed.PUT("/posts/:id/repost", h.repostPost)
			authed.DELETE("/posts/:id/repost", h.unrepostPost)

			authed.PUT("/users/:id/follow", h.followUser)
			authed.DELETE("/users/:id/follow", h.unfollowUser)
			authed.GET("/users/:id/followers", h.listFollowers)
			authed.GET("/users/:id", h.getProfile)
			authed.GET("/users/:id/favorites", h.listFavorites)

			authed.GET("/timeline", h.getTimeline)
			authed.GET("/search/users", h.searchUsers)
			authed.GET("/search/posts", h.searchPosts)
			authed.PUT("/me/avatar", h.setAvatar)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const userIDKey = "userID"

func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, err := h.auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// writeError maps the domain failure taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateHandle),
		errors.Is(err, domain.ErrSelfFollow),
		errors.Is(err, domain.ErrAlreadyFollowing),
		errors.Is(err, domain.ErrNotFollowing),
		errors.Is(err, domain.ErrAlreadyFavorited),
		errors.Is(err, domain.ErrNotFavorited),
		errors.Is(err, domain.ErrAlreadyReposted),
		errors.Is(err, domain.ErrNotReposted):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

type signupRequest struct {
	Handle      string `json:"handle" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Handle, req.DisplayName, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(*user))
}

type loginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Handle, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(*session))
}

type createPostRequest struct {
	Body         string `json:"body" binding:"required"`
	ParentPostID *int64 `json:"parent_post_id"`
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUserID(c), req.Body, req.ParentPostID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) getPostStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stats, err := h.posts.Stats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PostStatsResponse{
		Replies:   stats.Replies,
		Favorites: stats.Favorites,
		Reposts:   stats.Reposts,
	})
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) favoritePost(c *gin.Context) {
	h.postReaction(c, h.posts.Favorite)
}

func (h *Handler) unfavoritePost(c *gin.Context) {
	h.postReaction(c, h.posts.Unfavorite)
}

func (h *Handler) repostPost(c *gin.Context) {
	h.postReaction(c, h.posts.Repost)
}

func (h *Handler) unrepostPost(c *gin.Context) {
	h.postReaction(c, h.posts.Unrepost)
}

func (h *Handler) postReaction(c *gin.Context, op func(ctx context.Context, userID, postID int64) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), currentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_id": id})
}

func (h *Handler) followUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.follows.Follow(c.Request.Context(), currentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": id})
}

func (h *Handler) unfollowUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.follows.Unfollow(c.Request.Context(), currentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unfollowed": id})
}

func (h *Handler) listFollowers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	followers, err := h.follows.Followers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]UserResponse, len(followers))
	for i := range followers {
		resp[i] = userToResponse(followers[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	profile, err := h.feed.Profile(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileToResponse(profile))
}

func (h *Handler) listFavorites(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.feed.Favorites(c.Request.Context(), id, c.Query("cursor"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := FavoritesPageResponse{
		Posts:      make([]FavoritedPostResponse, len(page.Posts)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Posts {
		resp.Posts[i] = FavoritedPostResponse{
			PostResponse: postToResponse(page.Posts[i].Post),
			FavoritedAt:  page.Posts[i].FavoritedAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTimeline(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	includeSelf, err := strconv.ParseBool(c.DefaultQuery("include_self", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag include_self"})
		return
	}

	page, err := h.feed.Timeline(c.Request.Context(), currentUserID(c), c.Query("cursor"), limit, includeSelf)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := TimelineResponse{
		Posts:      make([]PostResponse, len(page.Posts)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Posts {
		resp.Posts[i] = postToResponse(page.Posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchUsers(c *gin.Context) {
	users, err := h.search.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchPosts(c *gin.Context) {
	posts, err := h.search.SearchPosts(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) setAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.feed.SetAvatar(c.Request.Context(), currentUserID(c), file, fileHeader.Size, contentType); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": "avatar"})
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("limit", "0")
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return 0, false
	}
	return limit, true
}

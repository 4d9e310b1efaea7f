package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/application/content"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
)

// ContentHandler serves blog posts and portfolio projects
type ContentHandler struct {
	BaseHandler
	service *content.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service *content.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// ListPosts handles GET /posts?page&page_size&tag. Drafts and scheduled posts are hidden.
//
// @ID          listPosts
// @Summary     List published posts
// @Tags        posts
// @Produce     json
// @Param       page query int false "Page number, from 1"
// @Param       page_size query int false "Items per page"
// @Param       tag query string false "Only posts with this tag"
// @Param       search query string false "Title or summary search"
// @Success     200 {object} APIResponse[[]content.PostSummary]
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /posts [get]
func (h *ContentHandler) ListPosts(c *gin.Context) {
	var q content.PostListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, total, filter, err := h.service.ListPublishedPosts(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Paginated(c, items, total, filter.Page, filter.PageSize)
}

// GetPost handles GET /posts/:slug
//
// @ID          getPostBySlug
// @Summary     Get a published post
// @Tags        posts
// @Produce     json
// @Param       slug path string true "URL slug"
// @Success     200 {object} APIResponse[content.PostResponse]
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /posts/{slug} [get]
func (h *ContentHandler) GetPost(c *gin.Context) {
	post, err := h.service.GetPublishedPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, post, "")
}

// ListProjects handles GET /projects; ?featured=true narrows to featured ones
//
// @ID          listProjects
// @Summary     List portfolio projects
// @Tags        projects
// @Produce     json
// @Param       featured query bool false "Only featured projects"
// @Success     200 {object} APIResponse[[]content.ProjectResponse]
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /projects [get]
func (h *ContentHandler) ListProjects(c *gin.Context) {
	var q struct {
		Featured bool `form:"featured"`
	}
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.service.ListProjects(c.Request.Context(), q.Featured)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, items, "")
}

// GetProject handles GET /projects/:slug
//
// @ID          getProjectBySlug
// @Summary     Get a project
// @Tags        projects
// @Produce     json
// @Param       slug path string true "URL slug"
// @Success     200 {object} APIResponse[content.ProjectResponse]
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /projects/{slug} [get]
func (h *ContentHandler) GetProject(c *gin.Context) {
	project, err := h.service.GetProject(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, project, "")
}

// AdminListPosts handles GET /admin/posts, drafts included
//
// @ID          adminListPosts
// @Summary     List all posts, drafts included
// @Tags        admin-posts
// @Produce     json
// @Param       page query int false "Page number, from 1"
// @Param       page_size query int false "Items per page"
// @Param       tag query string false "Only posts with this tag"
// @Param       search query string false "Title or summary search"
// @Success     200 {object} APIResponse[[]content.PostSummary]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/posts [get]
func (h *ContentHandler) AdminListPosts(c *gin.Context) {
	var q content.PostListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, total, filter, err := h.service.ListAllPosts(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Paginated(c, items, total, filter.Page, filter.PageSize)
}

// AdminGetPost handles GET /admin/posts/:id
//
// @ID          adminGetPost
// @Summary     Get a post by ID
// @Tags        admin-posts
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     200 {object} APIResponse[content.PostResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/posts/{id} [get]
func (h *ContentHandler) AdminGetPost(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	post, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, post, "")
}

// CreatePost handles POST /admin/posts
//
// @ID          createPost
// @Summary     Create a post
// @Tags        admin-posts
// @Accept      json
// @Produce     json
// @Param       request body content.CreatePostRequest true "Request body"
// @Success     201 {object} APIResponse[content.PostResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/posts [post]
func (h *ContentHandler) CreatePost(c *gin.Context) {
	var req content.CreatePostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Created(c, post, "Post created")
}

// UpdatePost handles PUT /admin/posts/:id
//
// @ID          updatePost
// @Summary     Update a post
// @Tags        admin-posts
// @Accept      json
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Param       request body content.UpdatePostRequest true "Request body"
// @Success     200 {object} APIResponse[content.PostResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/posts/{id} [put]
func (h *ContentHandler) UpdatePost(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req content.UpdatePostRequest
	if !h.BindJSON(c, &req) {
		return
	}
	post, err := h.service.UpdatePost(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, post, "Post updated")
}

// DeletePost handles DELETE /admin/posts/:id
//
// @ID          deletePost
// @Summary     Delete a post
// @Tags        admin-posts
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     204
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/posts/{id} [delete]
func (h *ContentHandler) DeletePost(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	dto.NoContent(c)
}

// CreateProject handles POST /admin/projects
//
// @ID          createProject
// @Summary     Create a project
// @Tags        admin-projects
// @Accept      json
// @Produce     json
// @Param       request body content.CreateProjectRequest true "Request body"
// @Success     201 {object} APIResponse[content.ProjectResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/projects [post]
func (h *ContentHandler) CreateProject(c *gin.Context) {
	var req content.CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	project, err := h.service.CreateProject(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Created(c, project, "Project created")
}

// UpdateProject handles PUT /admin/projects/:id
//
// @ID          updateProject
// @Summary     Update a project
// @Tags        admin-projects
// @Accept      json
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Param       request body content.UpdateProjectRequest true "Request body"
// @Success     200 {object} APIResponse[content.ProjectResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/projects/{id} [put]
func (h *ContentHandler) UpdateProject(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req content.UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	project, err := h.service.UpdateProject(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, project, "Project updated")
}

// DeleteProject handles DELETE /admin/projects/:id
//
// @ID          deleteProject
// @Summary     Delete a project
// @Tags        admin-projects
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     204
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/projects/{id} [delete]
func (h *ContentHandler) DeleteProject(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProject(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	dto.NoContent(c)
}

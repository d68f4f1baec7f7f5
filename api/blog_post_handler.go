package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/errs"
	"github.com/chiaview/site-backend/models"
	"github.com/chiaview/site-backend/services"
)

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		blogPostRepo: blogPostRepo,
	}
}

type blogPostRequest struct {
	Title     string    `json:"title" validate:"notblank"`
	Category  string    `json:"category"`
	Excerpt   string    `json:"excerpt" validate:"notblank"`
	Content   string    `json:"content" validate:"notblank"`
	ImageURL  *string   `json:"image_url"`
	Featured  *jsonBool `json:"featured"`
	Published *jsonBool `json:"published"`
}

type blogPostPatch struct {
	Title     *string          `json:"title"`
	Category  *string          `json:"category"`
	Excerpt   *string          `json:"excerpt"`
	Content   *string          `json:"content"`
	ImageURL  optional[string] `json:"image_url"`
	Featured  *jsonBool        `json:"featured"`
	Published *jsonBool        `json:"published"`
}

type BlogPostResponse struct {
	Success bool             `json:"success"`
	Post    *models.BlogPost `json:"post"`
}

type BlogPostCollection struct {
	Success bool              `json:"success"`
	Posts   []models.BlogPost `json:"posts"`
	Total   int64             `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
}

// getAllBlogPosts lists posts newest first
// @Summary List blog posts
// @Description Searches title and excerpt; category "All" means no category filter
// @Tags Blog Posts
// @Produce json
// @Param query query string false "Search text"
// @Param category query string false "Category"
// @Param published query string false "true or false"
// @Param featured query string false "true or false"
// @Param limit query int false "Page size (1-100, default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} BlogPostCollection
// @Failure 500 {object} ErrorResponse "Failed to load blog posts"
// @Router /api/blogposts [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pageParams(r, 20)
		filter := database.BlogPostFilter{
			Query:     strings.TrimSpace(strings.ReplaceAll(stringParam(r, "query"), ",", " ")),
			Published: boolParam(r, "published"),
			Featured:  boolParam(r, "featured"),
		}
		if category := stringParam(r, "category"); category != "All" {
			filter.Category = category
		}

		posts, total, err := h.blogPostRepo.List(r.Context(), filter, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "blog posts", err))
			return
		}

		h.responder.WriteJSON(w, BlogPostCollection{
			Success: true,
			Posts:   posts,
			Total:   total,
			Offset:  page.Offset,
			Limit:   page.Limit,
		})
	}
}

// getBlogPost retrieves a post by id. A missing post is reported as a load failure.
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param id path string true "Blog Post ID" format(uuid)
// @Success 200 {object} BlogPostResponse
// @Failure 500 {object} ErrorResponse "Failed to load blog post"
// @Router /api/blogposts/{id} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.blogPostRepo.FindByKey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, BlogPostResponse{Success: true, Post: post})
	}
}

// createBlogPost creates a new blog post
// @Summary Create blog post
// @Description Title, excerpt and content are required. Text fields are sanitized.
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param blogPost body blogPostRequest true "Blog post data"
// @Success 201 {object} BlogPostResponse
// @Failure 400 {object} ErrorResponse "Missing required fields: title, excerpt, content"
// @Failure 500 {object} ErrorResponse "Failed to create blog post"
// @Router /api/blogposts [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blogPostRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		req.Title = strings.TrimSpace(req.Title)
		req.Excerpt = strings.TrimSpace(req.Excerpt)
		req.Content = strings.TrimSpace(req.Content)
		if err := validateRequest(req, errs.NewMissingFieldsError("title", "excerpt", "content")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.BlogPost{
			Title:     services.Sanitize(req.Title),
			Category:  services.Sanitize(strings.TrimSpace(orDefault(req.Category, "Testimonies"))),
			Excerpt:   services.Sanitize(req.Excerpt),
			Content:   services.Sanitize(req.Content),
			ImageURL:  imageURL(req.ImageURL),
			Featured:  boolOr(req.Featured, false),
			Published: boolOr(req.Published, false),
		}
		if err := h.blogPostRepo.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "blog post", err))
			return
		}

		h.logger.Info().Str("postID", post.ID.String()).Msg("blog post created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, BlogPostResponse{Success: true, Post: &post})
	}
}

// updateBlogPost applies a partial update; only fields present in the body change.
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blogPostPatch
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]any{"updated_at": time.Now()}
		setSanitized(fields, "title", req.Title)
		setSanitized(fields, "category", req.Category)
		setSanitized(fields, "excerpt", req.Excerpt)
		setSanitized(fields, "content", req.Content)
		if req.ImageURL.Set {
			var url *string
			if req.ImageURL.Value != nil {
				trimmed := strings.TrimSpace(*req.ImageURL.Value)
				url = &trimmed
			}
			fields["image_url"] = url
		}
		if req.Featured != nil {
			fields["featured"] = bool(*req.Featured)
		}
		if req.Published != nil {
			fields["published"] = bool(*req.Published)
		}

		post, err := h.blogPostRepo.Update(r.Context(), chi.URLParam(r, "id"), fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, BlogPostResponse{Success: true, Post: post})
	}
}

func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.blogPostRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, DeletedResponse{Success: true})
	}
}

// imageURL keeps the trimmed URL, falling back to the raw value, then to null.
func imageURL(raw *string) *string {
	if t := trimmedOrNil(raw); t != nil {
		return t
	}
	if raw != nil && *raw != "" {
		return raw
	}
	return nil
}

// setSanitized stores the trimmed, sanitized value under column when it was supplied.
func setSanitized(fields map[string]any, column string, value *string) {
	if value != nil {
		fields[column] = services.Sanitize(strings.TrimSpace(*value))
	}
}

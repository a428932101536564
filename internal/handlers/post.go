package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/forms"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
)

// Slug resolves the /{slug} route: category slugs win over post slugs,
// and anything that matches neither is an explicit 404.
func (b *Blog) Slug(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	category, err := b.categoryStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find category by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category != nil {
		b.categoryPage(w, r, category)
		return
	}

	post, err := b.postStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find post by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		b.renderer.NotFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		b.submitComment(w, r, post)
		return
	}
	b.detail(w, r, post, nil)
}

// categoryPage lists all posts in a category.
func (b *Blog) categoryPage(w http.ResponseWriter, r *http.Request, category *models.Category) {
	posts, err := b.postStore.ListByCategorySlug(category.Slug)
	if err != nil {
		slog.Error("list category posts failed", "error", err, "category", category.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	b.renderer.Page(w, r, "category", &render.PageData{
		Title:   category.Name,
		Section: "home",
		Data: map[string]any{
			"Category": category,
			"Posts":    posts,
			"Sidebar":  b.sidebar(r.Context()),
		},
	})
}

// detail renders a post's detail view. Side effect: an authenticated
// visitor is recorded in the post's view set, at most once regardless
// of repeat visits. formErrors carries comment validation failures when
// re-rendering after a rejected submission.
func (b *Blog) detail(w http.ResponseWriter, r *http.Request, post *models.Post, formErrors forms.Errors) {
	sess := middleware.SessionFromCtx(r.Context())

	if sess != nil {
		if err := b.postStore.RecordView(post.ID, sess.UserID); err != nil {
			slog.Error("record view failed", "error", err, "post", post.Slug)
		}
	}

	views, err := b.postStore.ViewCount(post.ID)
	if err != nil {
		slog.Error("view count failed", "error", err, "post", post.Slug)
	}
	likes, err := b.postStore.LikeCount(post.ID)
	if err != nil {
		slog.Error("like count failed", "error", err, "post", post.Slug)
	}

	var isLiked, isSaved bool
	if sess != nil {
		isLiked, _ = b.postStore.IsLiked(post.ID, sess.UserID)
		isSaved, _ = b.postStore.IsSaved(post.ID, sess.UserID)
	}

	comments, err := b.commentStore.ListByPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "post", post.Slug)
	}

	status := http.StatusOK
	if len(formErrors) > 0 {
		status = http.StatusUnprocessableEntity
	}

	b.renderer.PageWithStatus(w, r, status, "post_view", &render.PageData{
		Title:   post.Title,
		Section: "home",
		Errors:  formErrors,
		Data: map[string]any{
			"Post":     post,
			"ViewsNum": views,
			"LikesNum": likes,
			"IsLiked":  isLiked,
			"IsSaved":  isSaved,
			"Comments": comments,
			"ImageURL": b.imageURL(post.ImageKey),
			"Sidebar":  b.sidebar(r.Context()),
		},
	})
}

// submitComment handles the POST mode of the detail route: validate,
// create the comment attributed to the current user, and redirect back
// to the post. Invalid input re-renders the detail view with errors.
func (b *Blog) submitComment(w http.ResponseWriter, r *http.Request, post *models.Post) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login?redirect_to=/"+post.Slug, http.StatusSeeOther)
		return
	}

	form := forms.CommentForm{Content: r.FormValue("content")}
	if errs := form.Validate(); !errs.Valid() {
		b.detail(w, r, post, errs)
		return
	}

	if _, err := b.commentStore.Create(post.ID, sess.UserID, form.Content); err != nil {
		slog.Error("create comment failed", "error", err, "post", post.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/"+post.Slug, http.StatusSeeOther)
}

// Like flips the current user's membership in a post's like set and
// redirects to the post's canonical URL.
func (b *Blog) Like(w http.ResponseWriter, r *http.Request) {
	b.toggle(w, r, b.postStore.ToggleLike)
}

// Save flips the current user's membership in a post's save set and
// redirects to the post's canonical URL.
func (b *Blog) Save(w http.ResponseWriter, r *http.Request) {
	b.toggle(w, r, b.postStore.ToggleSave)
}

// toggle resolves the post id, applies the membership flip, and
// redirects back to the post. Unresolvable ids are 404s.
func (b *Blog) toggle(w http.ResponseWriter, r *http.Request, flip func(postID, userID uuid.UUID) (bool, error)) {
	sess := middleware.SessionFromCtx(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		b.renderer.NotFound(w, r)
		return
	}

	post, err := b.postStore.FindByID(postID)
	if err != nil {
		slog.Error("find post by id failed", "error", err, "id", postID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		b.renderer.NotFound(w, r)
		return
	}

	if _, err := flip(post.ID, sess.UserID); err != nil {
		slog.Error("toggle failed", "error", err, "post", post.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/"+post.Slug, http.StatusSeeOther)
}

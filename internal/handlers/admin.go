package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/forms"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/session"
	"inkpress/internal/slug"
	"inkpress/internal/storage"
	"inkpress/internal/store"
)

// Admin groups the content management handlers: dashboard, posts,
// categories, and users.
type Admin struct {
	renderer      *render.Renderer
	sessions      *session.Store
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	userStore     *store.UserStore
	sidebarCache  *cache.SidebarCache
	storageClient *storage.Client
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, postStore *store.PostStore, categoryStore *store.CategoryStore, userStore *store.UserStore, sidebarCache *cache.SidebarCache, storageClient *storage.Client) *Admin {
	return &Admin{
		renderer:      renderer,
		sessions:      sessions,
		postStore:     postStore,
		categoryStore: categoryStore,
		userStore:     userStore,
		sidebarCache:  sidebarCache,
		storageClient: storageClient,
	}
}

// Dashboard shows content counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	posts, err := a.postStore.ListAll()
	if err != nil {
		slog.Error("dashboard post list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("dashboard category list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin_dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "admin",
		Data: map[string]any{
			"PostCount":     len(posts),
			"CategoryCount": len(categories),
		},
	})
}

// Posts lists all posts for management.
func (a *Admin) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.postStore.ListAll()
	if err != nil {
		slog.Error("admin post list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin_posts", &render.PageData{
		Title:   "Posts",
		Section: "admin",
		Data:    map[string]any{"Posts": posts},
	})
}

// NewPost renders an empty post form.
func (a *Admin) NewPost(w http.ResponseWriter, r *http.Request) {
	a.renderPostForm(w, r, http.StatusOK, &models.Post{}, "/admin/posts", nil)
}

// CreatePost handles the new-post submission.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	post := &models.Post{}
	errs := a.bindPostForm(w, r, post)
	if errs == nil {
		return
	}
	if !errs.Valid() {
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, post, "/admin/posts", errs)
		return
	}

	created, err := a.postStore.Create(post)
	if err != nil {
		slog.Error("create post failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sidebarCache.Invalidate(r.Context())
	a.sessions.AddFlash(r.Context(), w, r, "success", "Post created: "+created.Title)
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// EditPost renders the form pre-filled with an existing post.
func (a *Admin) EditPost(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}
	a.renderPostForm(w, r, http.StatusOK, post, "/admin/posts/"+post.ID.String(), nil)
}

// UpdatePost handles the edit-post submission.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	errs := a.bindPostForm(w, r, post)
	if errs == nil {
		return
	}
	if !errs.Valid() {
		a.renderPostForm(w, r, http.StatusUnprocessableEntity, post, "/admin/posts/"+post.ID.String(), errs)
		return
	}

	if err := a.postStore.Update(post); err != nil {
		slog.Error("update post failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sidebarCache.Invalidate(r.Context())
	a.sessions.AddFlash(r.Context(), w, r, "success", "Post updated: "+post.Title)
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// DeletePost removes a post and its attached image, if any.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	if err := a.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err, "post_id", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if post.ImageKey != nil && a.storageClient != nil {
		if err := a.storageClient.Delete(r.Context(), *post.ImageKey); err != nil {
			slog.Warn("post image delete failed", "error", err, "key", *post.ImageKey)
		}
	}

	a.sidebarCache.Invalidate(r.Context())
	a.sessions.AddFlash(r.Context(), w, r, "success", "Post deleted.")
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// Categories lists categories with an inline add form.
func (a *Admin) Categories(w http.ResponseWriter, r *http.Request) {
	a.renderCategories(w, r, http.StatusOK, "", nil)
}

// CreateCategory handles the add-category submission.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	name, catSlug, errs := a.bindCategoryForm(w, r, uuid.Nil)
	if errs == nil {
		return
	}
	if !errs.Valid() {
		a.renderCategories(w, r, http.StatusUnprocessableEntity, name, errs)
		return
	}

	if _, err := a.categoryStore.Create(&models.Category{Name: name, Slug: catSlug}); err != nil {
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sidebarCache.Invalidate(r.Context())
	a.sessions.AddFlash(r.Context(), w, r, "success", "Category created: "+name)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// EditCategory renders the rename form for an existing category.
func (a *Admin) EditCategory(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}
	a.renderCategoryForm(w, r, http.StatusOK, category, nil)
}

// UpdateCategory handles the rename submission.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}

	name, catSlug, errs := a.bindCategoryForm(w, r, category.ID)
	if errs == nil {
		return
	}
	if !errs.Valid() {
		category.Name = r.FormValue("name")
		category.Slug = r.FormValue("slug")
		a.renderCategoryForm(w, r, http.StatusUnprocessableEntity, category, errs)
		return
	}

	category.Name = name
	category.Slug = catSlug
	if err := a.categoryStore.Update(category); err != nil {
		slog.Error("update category failed", "error", err, "category_id", category.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sidebarCache.Invalidate(r.Context())
	a.sessions.AddFlash(r.Context(), w, r, "success", "Category updated: "+name)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// DeleteCategory removes a category; its posts go with it.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}

	if err := a.categoryStore.Delete(category.ID); err != nil {
		slog.Error("delete category failed", "error", err, "category_id", category.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.sidebarCache.Invalidate(r.Context())
	a.sessions.AddFlash(r.Context(), w, r, "success", "Category deleted: "+category.Name)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// findPost resolves the "id" URL param to a post, writing the error
// response itself and returning nil when that fails.
func (a *Admin) findPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.renderer.NotFound(w, r)
		return nil
	}
	post, err := a.postStore.FindByID(id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		a.renderer.NotFound(w, r)
		return nil
	}
	return post
}

// findCategory resolves the "id" URL param to a category, writing the
// error response itself and returning nil when that fails.
func (a *Admin) findCategory(w http.ResponseWriter, r *http.Request) *models.Category {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.renderer.NotFound(w, r)
		return nil
	}
	category, err := a.categoryStore.FindByID(id)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if category == nil {
		a.renderer.NotFound(w, r)
		return nil
	}
	return category
}

// bindCategoryForm validates the category name and slug from the form.
// selfID excludes the category being edited from the uniqueness check;
// uuid.Nil means a create. Returns a nil errs map when it already wrote
// a response.
func (a *Admin) bindCategoryForm(w http.ResponseWriter, r *http.Request, selfID uuid.UUID) (name, catSlug string, errs forms.Errors) {
	name = strings.TrimSpace(r.FormValue("name"))
	catSlug = strings.TrimSpace(r.FormValue("slug"))

	errs = forms.Errors{}
	if name == "" {
		errs["name"] = "Name is required."
	}
	if catSlug == "" {
		catSlug = slug.Generate(name)
	}
	if catSlug == "" || !slug.IsValid(catSlug) {
		errs["slug"] = "Slug must be lowercase letters, digits, and hyphens."
	}

	if errs.Valid() {
		existing, err := a.categoryStore.FindBySlug(catSlug)
		if err != nil {
			slog.Error("category slug lookup failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return "", "", nil
		}
		if existing != nil && existing.ID != selfID {
			errs["slug"] = "That slug is already in use."
		}
	}
	return name, catSlug, errs
}

// UsersList renders the user management table.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "admin_users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users},
	})
}

// UserResetTwoFA clears another admin's authenticator, forcing re-setup
// on their next login.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}

	// Resetting your own 2FA would lock you out of this very page.
	if targetID == sess.UserID {
		http.Error(w, "Cannot reset your own 2FA", http.StatusForbidden)
		return
	}

	if err := a.userStore.ResetTOTP(targetID); err != nil {
		slog.Error("reset 2fa failed", "error", err, "target_user", targetID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("2fa reset by admin", "admin", sess.Username, "target_user", targetID)
	a.sessions.AddFlash(r.Context(), w, r, "success", "Two-factor authentication reset.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserDelete removes an account; their comments, messages, and profile
// go with it.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.renderer.NotFound(w, r)
		return
	}

	if targetID == sess.UserID {
		http.Error(w, "Cannot delete your own account", http.StatusForbidden)
		return
	}

	if err := a.userStore.Delete(targetID); err != nil {
		slog.Error("delete user failed", "error", err, "target_user", targetID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user deleted by admin", "admin", sess.Username, "target_user", targetID)
	a.sessions.AddFlash(r.Context(), w, r, "success", "User deleted.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// bindPostForm reads the multipart post form into post, handling the
// optional image upload. Returns nil when it already wrote a response.
func (a *Admin) bindPostForm(w http.ResponseWriter, r *http.Request, post *models.Post) forms.Errors {
	if err := r.ParseMultipartForm(forms.MaxAvatarBytes); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil
	}

	post.Title = strings.TrimSpace(r.FormValue("title"))
	post.Body = r.FormValue("body")
	postSlug := strings.TrimSpace(r.FormValue("slug"))

	errs := forms.Errors{}
	if post.Title == "" {
		errs["title"] = "Title is required."
	}
	if strings.TrimSpace(post.Body) == "" {
		errs["body"] = "Body is required."
	}

	if postSlug == "" {
		postSlug = slug.Generate(post.Title)
	}
	if postSlug == "" || !slug.IsValid(postSlug) {
		errs["slug"] = "Slug must be lowercase letters, digits, and hyphens."
	} else if existing, err := a.postStore.FindBySlug(postSlug); err != nil {
		slog.Error("post slug lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	} else if existing != nil && existing.ID != post.ID {
		errs["slug"] = "That slug is already in use."
	}
	post.Slug = postSlug

	categoryID, err := uuid.Parse(r.FormValue("category_id"))
	if err != nil {
		errs["category"] = "Pick a category."
	} else if category, lerr := a.categoryStore.FindByID(categoryID); lerr != nil {
		slog.Error("category lookup failed", "error", lerr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	} else if category == nil {
		errs["category"] = "Pick a category."
	} else {
		post.CategoryID = categoryID
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		switch {
		case a.storageClient == nil:
			errs["image"] = "Image uploads are not available right now."
		case !forms.AllowedAvatarType(contentType):
			errs["image"] = "Image must be a JPEG, PNG, GIF, or WebP."
		}

		if errs.Valid() {
			key := postImageKey(header.Filename)
			if uerr := a.storageClient.Upload(r.Context(), key, contentType, file, header.Size); uerr != nil {
				slog.Error("post image upload failed", "error", uerr)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return nil
			}
			if post.ImageKey != nil && *post.ImageKey != key {
				if derr := a.storageClient.Delete(r.Context(), *post.ImageKey); derr != nil {
					slog.Warn("old post image delete failed", "error", derr, "key", *post.ImageKey)
				}
			}
			post.ImageKey = &key
		}
	} else if err != http.ErrMissingFile {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil
	}

	return errs
}

func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, action string, errs forms.Errors) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("category list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := "New Post"
	data := map[string]any{
		"Action":     action,
		"Categories": categories,
		"Title":      post.Title,
		"Slug":       post.Slug,
		"Body":       post.Body,
		"CategoryID": "",
	}
	if post.CategoryID != uuid.Nil {
		data["CategoryID"] = post.CategoryID.String()
	}
	if post.ID != uuid.Nil {
		title = "Edit Post"
		data["Post"] = post
	}

	a.renderer.PageWithStatus(w, r, status, "admin_post_form", &render.PageData{
		Title:   title,
		Section: "admin",
		Errors:  errs,
		Data:    data,
	})
}

func (a *Admin) renderCategories(w http.ResponseWriter, r *http.Request, status int, name string, errs forms.Errors) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("category list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.PageWithStatus(w, r, status, "admin_categories", &render.PageData{
		Title:   "Categories",
		Section: "admin",
		Errors:  errs,
		Data: map[string]any{
			"Categories": categories,
			"Name":       name,
		},
	})
}

func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, category *models.Category, errs forms.Errors) {
	a.renderer.PageWithStatus(w, r, status, "admin_category_form", &render.PageData{
		Title:   "Edit Category",
		Section: "admin",
		Errors:  errs,
		Data: map[string]any{
			"Category": category,
		},
	})
}

// postImageKey builds a fresh object key per upload so replaced images
// never collide.
func postImageKey(filename string) string {
	return fmt.Sprintf("posts/%s%s", uuid.NewString(), path.Ext(filename))
}

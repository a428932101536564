// Package handlers contains the HTTP handlers for the public site, the
// chat subsystem, and the admin area. Handler groups are plain structs
// holding their dependencies, wired up in main.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"inkpress/internal/cache"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/session"
	"inkpress/internal/storage"
	"inkpress/internal/store"
)

// Blog groups the post listing, search, detail, and toggle handlers.
type Blog struct {
	renderer      *render.Renderer
	sessions      *session.Store
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	commentStore  *store.CommentStore
	sidebarCache  *cache.SidebarCache
	storageClient *storage.Client
}

// NewBlog creates a new Blog handler group. storageClient may be nil
// when S3 is not configured; post images simply don't render then.
func NewBlog(
	renderer *render.Renderer,
	sessions *session.Store,
	postStore *store.PostStore,
	categoryStore *store.CategoryStore,
	commentStore *store.CommentStore,
	sidebarCache *cache.SidebarCache,
	storageClient *storage.Client,
) *Blog {
	return &Blog{
		renderer:      renderer,
		sessions:      sessions,
		postStore:     postStore,
		categoryStore: categoryStore,
		commentStore:  commentStore,
		sidebarCache:  sidebarCache,
		storageClient: storageClient,
	}
}

// Home renders the main listing: posts filtered by the optional
// `searchpost` query (case-insensitive title substring), paginated at
// four per page. Bad page numbers never error — they clamp.
func (b *Blog) Home(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("searchpost")
	page := parsePage(r.URL.Query().Get("page"))

	postPage, err := b.postStore.ListPage(query, page)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Posts":      postPage.Posts,
		"Page":       postPage,
		"SlidePosts": b.slidePosts(),
		"Sidebar":    b.sidebar(r.Context()),
	}
	if query != "" {
		data["SearchQuery"] = query
	}

	b.renderer.Page(w, r, "blog_main", &render.PageData{
		Title:   "Home",
		Section: "home",
		Data:    data,
	})
}

// Search handles the navbar's POST search form. Matching is the same
// case-insensitive substring as Home, but the result is unpaginated.
func (b *Blog) Search(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("searchpost")

	var posts []models.Post
	if query != "" {
		var err error
		posts, err = b.postStore.Search(query)
		if err != nil {
			slog.Error("search posts failed", "error", err, "query", query)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	b.renderer.Page(w, r, "blog_main", &render.PageData{
		Title:   "Search",
		Section: "home",
		Data: map[string]any{
			"Posts":       posts,
			"SlidePosts":  b.slidePosts(),
			"Sidebar":     b.sidebar(r.Context()),
			"SearchQuery": query,
		},
	})
}

// Saved lists the current user's saved posts with the same pagination
// as the main listing.
func (b *Blog) Saved(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	page := parsePage(r.URL.Query().Get("page"))

	postPage, err := b.postStore.ListSavedPage(sess.UserID, page)
	if err != nil {
		slog.Error("list saved posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	b.renderer.Page(w, r, "blog_main", &render.PageData{
		Title:   "Saved posts",
		Section: "saved",
		Data: map[string]any{
			"Posts":      postPage.Posts,
			"Page":       postPage,
			"SlidePosts": b.slidePosts(),
			"Sidebar":    b.sidebar(r.Context()),
		},
	})
}

// slidePosts returns every post for the carousel strip above the
// listing. The listing views all show the full set regardless of the
// current page or filter.
func (b *Blog) slidePosts() []models.Post {
	posts, err := b.postStore.ListAll()
	if err != nil {
		slog.Error("list slide posts failed", "error", err)
		return nil
	}
	return posts
}

// sidebar returns the category list for the sidebar, trying the Valkey
// cache first and falling back to the database.
func (b *Blog) sidebar(ctx context.Context) []models.Category {
	if cats, ok := b.sidebarCache.Get(ctx); ok {
		return cats
	}

	cats, err := b.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		return nil
	}
	b.sidebarCache.Set(ctx, cats)
	return cats
}

// imageURL resolves a stored object key to a public URL, or "" when no
// key is set or storage is not configured.
func (b *Blog) imageURL(key *string) string {
	if key == nil || *key == "" || b.storageClient == nil {
		return ""
	}
	return b.storageClient.FileURL(*key)
}

// parsePage reads a page number from its query-string form. Anything
// that isn't a positive integer falls back to page 1; clamping against
// the last page happens in the store, which knows the total.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

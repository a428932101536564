package store

import "testing"

func TestCommentStoreCreateAndList(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)

	cat := makeCategory(t, db, "Comments", "store-test-comments")
	post := makePost(t, db, cat, "Commented Post", "store-test-comments-post")
	user := makeUser(t, db, "store-test-commenter")

	first, err := s.Create(post.ID, user.ID, "first comment")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(post.ID, user.ID, "second comment"); err != nil {
		t.Fatalf("Create (second): %v", err)
	}

	comments, err := s.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comment count: got %d, want 2", len(comments))
	}

	// Oldest first.
	if comments[0].ID != first.ID {
		t.Error("comments not in chronological order")
	}
	if comments[0].AuthorName != "store-test-commenter" {
		t.Errorf("author name: got %q", comments[0].AuthorName)
	}
}

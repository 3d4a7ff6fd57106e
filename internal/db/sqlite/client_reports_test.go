package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pborman/uuid"

	"github.com/murmurhq/murmur/internal/db"
	errs "github.com/murmurhq/murmur/internal/errors"
)

func seedPost(t *testing.T, client *sqliteClient, id string) {
	t.Helper()
	err := client.CreatePost(context.Background(), &db.Post{
		ID:        id,
		ActorID:   "author-1",
		Content:   "seeded content",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
}

func TestDuplicateReportIsRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	seedPost(t, client, "post-1")

	report := &db.Report{
		ID:         uuid.New(),
		PostID:     "post-1",
		ReporterID: "reporter-1",
		Reason:     "spam",
		CreatedAt:  time.Now().UTC(),
	}
	if err := client.CreateReport(ctx, report); err != nil {
		t.Fatalf("create report: %v", err)
	}

	dup := &db.Report{
		ID:         uuid.New(),
		PostID:     "post-1",
		ReporterID: "reporter-1",
		Reason:     "still spam",
		CreatedAt:  time.Now().UTC(),
	}
	if err := client.CreateReport(ctx, dup); !errors.Is(err, errs.ErrAlreadyReported) {
		t.Fatalf("err = %v, want ErrAlreadyReported", err)
	}

	has, err := client.HasReport(ctx, "post-1", "reporter-1")
	if err != nil {
		t.Fatalf("has report: %v", err)
	}
	if !has {
		t.Error("expected report to exist")
	}
}

func TestMarkPostRemovedOnlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	seedPost(t, client, "post-2")

	for i := 0; i < 3; i++ {
		if _, err := client.IncrementReportCount(ctx, "post-2"); err != nil {
			t.Fatalf("increment %d: %v", i+1, err)
		}
	}

	first, err := client.MarkPostRemoved(ctx, "post-2")
	if err != nil {
		t.Fatalf("first removal: %v", err)
	}
	if !first {
		t.Fatal("first removal should report true")
	}

	second, err := client.MarkPostRemoved(ctx, "post-2")
	if err != nil {
		t.Fatalf("second removal: %v", err)
	}
	if second {
		t.Error("second removal must report false")
	}

	post, err := client.GetPost(ctx, "post-2")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if !post.Removed || !post.Hidden {
		t.Errorf("post = %+v, want removed and hidden", post)
	}
	if post.ReportCount != 3 {
		t.Errorf("report count = %d, want 3", post.ReportCount)
	}
}

func TestCountPostEngagementIncludesComments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	seedPost(t, client, "post-3")

	for i := 0; i < 2; i++ {
		err := client.CreateComment(ctx, &db.Comment{
			ID:        uuid.New(),
			PostID:    "post-3",
			ActorID:   "commenter",
			Content:   "reply",
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("create comment %d: %v", i+1, err)
		}
	}

	total, err := client.CountPostEngagement(ctx, "post-3")
	if err != nil {
		t.Fatalf("count engagement: %v", err)
	}
	if total != 2 {
		t.Errorf("engagement = %d, want 2", total)
	}

	if _, err := client.CountPostEngagement(ctx, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

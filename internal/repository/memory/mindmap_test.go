package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
)

func newRepo() *MindmapRepository {
	return NewMindmapRepository(slog.New(slog.NewTextHandler(io.Discard, nil))).(*MindmapRepository)
}

func doc(id, user string, created time.Time) *mindmap.Mindmap {
	return &mindmap.Mindmap{
		ID:     id,
		UserID: user,
		Data: mindmap.Data{Title: "T", Nodes: []mindmap.Node{
			{ID: "main-0", Text: "A", Children: []mindmap.Node{{ID: "sub-0-0", Text: "a"}}},
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCreateGetIsolation(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	m := doc("m1", "u1", time.Now())

	if err := r.Create(ctx, m); err != nil {
		t.Fatal(err)
	}
	m.Data.Nodes[0].Text = "mutated after create"

	got, err := r.GetByID(ctx, "m1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Data.Nodes[0].Text != "A" {
		t.Error("store shares memory with caller")
	}

	got.Data.Nodes[0].Children[0].Text = "mutated after get"
	again, _ := r.GetByID(ctx, "m1", "u1")
	if again.Data.Nodes[0].Children[0].Text != "a" {
		t.Error("GetByID returned shared memory")
	}

	if err := r.Create(ctx, doc("m1", "u1", time.Now())); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Create error = %v, want conflict", err)
	}
}

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	_ = r.Create(ctx, doc("m1", "alice", time.Now()))

	if _, err := r.GetByID(ctx, "m1", "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID other user error = %v", err)
	}
	if err := r.Delete(ctx, "m1", "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete other user error = %v", err)
	}
	if list, _ := r.List(ctx, "bob"); len(list) != 0 {
		t.Errorf("List other user = %v", list)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = r.Create(ctx, doc("old", "u", base))
	_ = r.Create(ctx, doc("new", "u", base.Add(time.Hour)))

	list, err := r.List(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
		t.Errorf("List = %+v", list)
	}
	if list[0].NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", list[0].NodeCount)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	_ = r.Create(ctx, doc("m1", "u", time.Now()))

	boom := errors.New("boom")
	_, err := r.Update(ctx, "m1", "u", func(m *mindmap.Mindmap) error {
		m.Data.Title = "should not persist"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v", err)
	}
	got, _ := r.GetByID(ctx, "m1", "u")
	if got.Data.Title != "T" {
		t.Error("failed update was persisted")
	}

	updated, err := r.Update(ctx, "m1", "u", func(m *mindmap.Mindmap) error {
		m.Data.SetNodeText("sub-0-0", "edited")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Data.Nodes[0].Children[0].Text != "edited" {
		t.Error("Update result missing edit")
	}
	got, _ = r.GetByID(ctx, "m1", "u")
	if got.Data.Nodes[0].Children[0].Text != "edited" {
		t.Error("edit not persisted")
	}

	if _, err := r.Update(ctx, "missing", "u", func(*mindmap.Mindmap) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update missing error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	_ = r.Create(ctx, doc("m1", "u", time.Now()))

	if err := r.Delete(ctx, "m1", "u"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetByID(ctx, "m1", "u"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID after delete error = %v", err)
	}
}

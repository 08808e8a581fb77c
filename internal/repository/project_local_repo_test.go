package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	domainprofile "cockpityara/internal/domain/profile"
	"cockpityara/internal/domain/project"
)

func setupLocalDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:local_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&project.Project{}, &domainprofile.CarpenterProfile{}, &domainprofile.CreditTransaction{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func TestLocalAddAssignsLocalIDAndTimestamps(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))
	ctx := context.Background()

	rec := project.Project{Name: "Ana", Status: project.StatusLead}
	list, err := repo.Add(ctx, &rec)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if !project.IsLocalID(rec.ID) {
		t.Fatalf("expected local-prefixed id, got %q", rec.ID)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
	if len(list) != 1 {
		t.Fatalf("expected refreshed list of 1, got %d", len(list))
	}
}

func TestLocalGetByIDNotFoundReturnsNil(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))

	rec, err := repo.GetByID(context.Background(), "local-missing")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestLocalUpdateMergesPartialFields(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))
	ctx := context.Background()

	rec := project.Project{Name: "Carlos", Phone: "111", Status: project.StatusLead}
	if _, err := repo.Add(ctx, &rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	before := rec.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	status := project.StatusProducao
	value := 1500.0
	updated, err := repo.Update(ctx, rec.ID, PartialUpdate{Status: &status, EstimatedValue: &value})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Name != "Carlos" || updated.Phone != "111" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if updated.Status != project.StatusProducao || updated.EstimatedValue != 1500 {
		t.Fatalf("partial fields not merged: %+v", updated)
	}
	if !updated.UpdatedAt.After(before) {
		t.Fatal("expected updated_at to be refreshed")
	}
}

func TestLocalUpdateUnknownIDReturnsNil(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))

	name := "nobody"
	updated, err := repo.Update(context.Background(), "local-missing", PartialUpdate{Name: &name})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil for unknown id, got %+v", updated)
	}
}

func TestLocalGetAllSortedByUpdatedAtDesc(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))
	ctx := context.Background()

	first := project.Project{Name: "first"}
	if _, err := repo.Add(ctx, &first); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second := project.Project{Name: "second"}
	if _, err := repo.Add(ctx, &second); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	list, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].Name != "second" || list[1].Name != "first" {
		t.Fatalf("expected newest first, got %s then %s", list[0].Name, list[1].Name)
	}
}

func TestLocalRemoveReturnsRefreshedList(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))
	ctx := context.Background()

	rec := project.Project{Name: "gone"}
	if _, err := repo.Add(ctx, &rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	list, err := repo.Remove(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after remove, got %d", len(list))
	}
}

func TestLocalMessagesRoundTrip(t *testing.T) {
	repo := NewProjectLocalRepository(setupLocalDB(t))
	ctx := context.Background()

	rec := project.Project{
		Name: "chatty",
		Messages: project.MessageList{
			project.NewMessage(project.FromAssistant, project.MessageText, project.WelcomeText, ""),
		},
	}
	if _, err := repo.Add(ctx, &rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, err := repo.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got.Messages))
	}
	if got.Messages[0].Text != project.WelcomeText {
		t.Fatalf("message text mangled: %q", got.Messages[0].Text)
	}
}

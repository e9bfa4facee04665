package audit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/nerrad567/fleetwan-core/migrations"

	"github.com/nerrad567/fleetwan-core/internal/infrastructure/database"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db.DB
}

func TestCreateAndList(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	entries := []*AuditLog{
		{Action: ActionCreate, EntityType: "network", EntityID: "net-1", UserID: "u-1", Source: SourceAPI},
		{Action: ActionPull, EntityType: "network", EntityID: "net-1", Source: SourceSync,
			Details: map[string]any{"devices": float64(12)}},
		{Action: ActionDelete, EntityType: "device", EntityID: "dev-9", UserID: "u-1", Source: SourceAPI},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create(%s %s) error = %v", e.Action, e.EntityType, err)
		}
		if e.ID == "" {
			t.Error("Create() should assign an ID")
		}
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if len(result.Logs) != 3 {
		t.Fatalf("len(Logs) = %d, want 3", len(result.Logs))
	}
}

func TestListFilters(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	seed := []*AuditLog{
		{Action: ActionCreate, EntityType: "network", EntityID: "net-1", Source: SourceAPI},
		{Action: ActionUpdate, EntityType: "network", EntityID: "net-2", Source: SourceAPI},
		{Action: ActionCreate, EntityType: "application", EntityID: "app-1", Source: SourceAPI},
		{Action: ActionPush, EntityType: "network", EntityID: "net-1", Source: SourceSync},
	}
	for _, e := range seed {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by action", Filter{Action: ActionCreate}, 2},
		{"by entity type", Filter{EntityType: "network"}, 3},
		{"by entity id", Filter{EntityType: "network", EntityID: "net-1"}, 2},
		{"no match", Filter{Action: ActionDelete}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.Total != tt.want {
				t.Errorf("Total = %d, want %d", result.Total, tt.want)
			}
		})
	}
}

func TestListPagination(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for range 5 {
		if err := repo.Create(ctx, &AuditLog{
			Action: ActionCreate, EntityType: "device", Source: SourceAPI,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := repo.List(ctx, Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if len(result.Logs) != 1 {
		t.Errorf("len(Logs) = %d, want 1 (last page)", len(result.Logs))
	}

	// A zero limit falls back to the default page size.
	result, err = repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Limit != 50 {
		t.Errorf("Limit = %d, want default 50", result.Limit)
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &AuditLog{
		Action:     ActionPull,
		EntityType: "network",
		EntityID:   "net-1",
		Source:     SourceSync,
		Details:    map[string]any{"applications": float64(3), "skipped": float64(1)},
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := repo.List(ctx, Filter{EntityID: "net-1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Logs) != 1 {
		t.Fatalf("len(Logs) = %d, want 1", len(result.Logs))
	}
	got := result.Logs[0]
	if got.Details["applications"] != float64(3) {
		t.Errorf("Details[applications] = %v, want 3", got.Details["applications"])
	}
	if got.Details["skipped"] != float64(1) {
		t.Errorf("Details[skipped] = %v, want 1", got.Details["skipped"])
	}
}

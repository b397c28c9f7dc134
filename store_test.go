package birdblog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetSpecies(t *testing.T) {
	s := setupTestStore(t)

	sp := Species{Name: "Northern Cardinal"}
	if err := s.CreateSpecies(&sp); err != nil {
		t.Fatalf("CreateSpecies failed: %v", err)
	}
	if sp.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	got, err := s.GetSpecies(sp.ID)
	if err != nil {
		t.Fatalf("GetSpecies failed: %v", err)
	}
	if got.Name != "Northern Cardinal" {
		t.Errorf("Name = %q, want %q", got.Name, "Northern Cardinal")
	}

	byName, err := s.SpeciesByName("Northern Cardinal")
	if err != nil {
		t.Fatalf("SpeciesByName failed: %v", err)
	}
	if byName.ID != sp.ID {
		t.Errorf("SpeciesByName id = %d, want %d", byName.ID, sp.ID)
	}
}

func TestSpeciesByNameNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.SpeciesByName("Dodo")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestRenameSpecies(t *testing.T) {
	s := setupTestStore(t)

	sp := Species{Name: "Blue Jay"}
	if err := s.CreateSpecies(&sp); err != nil {
		t.Fatalf("CreateSpecies failed: %v", err)
	}
	if err := s.RenameSpecies(sp.ID, "Steller's Jay"); err != nil {
		t.Fatalf("RenameSpecies failed: %v", err)
	}
	got, err := s.GetSpecies(sp.ID)
	if err != nil {
		t.Fatalf("GetSpecies failed: %v", err)
	}
	if got.Name != "Steller's Jay" {
		t.Errorf("Name = %q, want %q", got.Name, "Steller's Jay")
	}
}

func TestListSpeciesOrderedByName(t *testing.T) {
	s := setupTestStore(t)

	for _, name := range []string{"Wren", "Chickadee", "Osprey"} {
		if err := s.CreateSpecies(&Species{Name: name}); err != nil {
			t.Fatalf("CreateSpecies failed: %v", err)
		}
	}
	list, err := s.ListSpecies()
	if err != nil {
		t.Fatalf("ListSpecies failed: %v", err)
	}
	want := []string{"Chickadee", "Osprey", "Wren"}
	if len(list) != len(want) {
		t.Fatalf("got %d species, want %d", len(list), len(want))
	}
	for i := range want {
		if list[i].Name != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Name, want[i])
		}
	}
}

func TestAnimalLookupKeyIsPerSpecies(t *testing.T) {
	s := setupTestStore(t)

	owls := Species{Name: "Barred Owl"}
	crows := Species{Name: "American Crow"}
	for _, sp := range []*Species{&owls, &crows} {
		if err := s.CreateSpecies(sp); err != nil {
			t.Fatalf("CreateSpecies failed: %v", err)
		}
	}
	if err := s.CreateAnimal(&Animal{Name: "Hoots", SpeciesID: owls.ID}); err != nil {
		t.Fatalf("CreateAnimal failed: %v", err)
	}

	if _, err := s.AnimalByName(owls.ID, "Hoots"); err != nil {
		t.Errorf("expected Hoots under owls, got %v", err)
	}
	// The same name under a different species is free.
	if _, err := s.AnimalByName(crows.ID, "Hoots"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected not-found under crows, got %v", err)
	}
	if err := s.CreateAnimal(&Animal{Name: "Hoots", SpeciesID: crows.ID}); err != nil {
		t.Errorf("same name under another species should insert: %v", err)
	}
}

func TestListPostsOrderAndFilter(t *testing.T) {
	s := setupTestStore(t)

	herons := Species{Name: "Great Blue Heron"}
	finches := Species{Name: "House Finch"}
	for _, sp := range []*Species{&herons, &finches} {
		if err := s.CreateSpecies(sp); err != nil {
			t.Fatalf("CreateSpecies failed: %v", err)
		}
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []Post{
		{Caption: "oldest", ImageFilename: "a.jpg", SpeciesID: herons.ID, CreatedAt: base},
		{Caption: "middle", ImageFilename: "b.jpg", SpeciesID: finches.ID, CreatedAt: base.Add(time.Hour)},
		{Caption: "newest", ImageFilename: "c.jpg", SpeciesID: herons.ID, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range posts {
		if err := s.CreatePost(&posts[i]); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	all, err := s.ListPosts(0, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d posts, want 3", len(all))
	}
	if all[0].Caption != "newest" || all[2].Caption != "oldest" {
		t.Errorf("posts not ordered newest-first: %q ... %q", all[0].Caption, all[2].Caption)
	}
	if all[0].Species.Name != "Great Blue Heron" {
		t.Errorf("species not preloaded: %q", all[0].Species.Name)
	}

	filtered, err := s.ListPosts(herons.ID, 0)
	if err != nil {
		t.Fatalf("ListPosts filtered failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("got %d heron posts, want 2", len(filtered))
	}

	limited, err := s.ListPosts(0, 1)
	if err != nil {
		t.Fatalf("ListPosts limited failed: %v", err)
	}
	if len(limited) != 1 || limited[0].Caption != "newest" {
		t.Errorf("limit 1 should return only the newest post, got %v", limited)
	}
}

func TestGetPostPreloadsUser(t *testing.T) {
	s := setupTestStore(t)

	sp := Species{Name: "Mallard"}
	if err := s.CreateSpecies(&sp); err != nil {
		t.Fatalf("CreateSpecies failed: %v", err)
	}
	u := User{Name: "Margaret", Bio: "Backyard birder"}
	if err := s.CreateUser(&u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	p := Post{Caption: "pond visit", ImageFilename: "m.jpg", SpeciesID: sp.ID, UserID: &u.ID}
	if err := s.CreatePost(&p); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	got, err := s.GetPost(p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.User == nil || got.User.Name != "Margaret" {
		t.Errorf("user not preloaded: %+v", got.User)
	}
	if got.Species.Name != "Mallard" {
		t.Errorf("species not preloaded: %q", got.Species.Name)
	}
}

func TestDeleteSpeciesRemovesPostsAndAnimals(t *testing.T) {
	s := setupTestStore(t)

	sp := Species{Name: "Pileated Woodpecker"}
	if err := s.CreateSpecies(&sp); err != nil {
		t.Fatalf("CreateSpecies failed: %v", err)
	}
	if err := s.CreateAnimal(&Animal{Name: "Woody", SpeciesID: sp.ID}); err != nil {
		t.Fatalf("CreateAnimal failed: %v", err)
	}
	for _, cap := range []string{"one", "two"} {
		if err := s.CreatePost(&Post{Caption: cap, ImageFilename: cap + ".jpg", SpeciesID: sp.ID}); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	if err := s.DeleteSpecies(sp.ID); err != nil {
		t.Fatalf("DeleteSpecies failed: %v", err)
	}

	if _, err := s.GetSpecies(sp.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("species should be gone, got %v", err)
	}
	posts, err := s.ListPosts(sp.ID, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts left, got %d", len(posts))
	}
	animals, err := s.AnimalsBySpecies(sp.ID)
	if err != nil {
		t.Fatalf("AnimalsBySpecies failed: %v", err)
	}
	if len(animals) != 0 {
		t.Errorf("expected no animals left, got %d", len(animals))
	}
}

func TestMigrateAddsMissingUserIDColumn(t *testing.T) {
	s, err := NewStore("", filepath.Join(t.TempDir(), "drift.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Simulate a database created before uploader support existed.
	if err := s.db.Exec(`CREATE TABLE posts (
		id integer PRIMARY KEY AUTOINCREMENT,
		caption text NOT NULL,
		animal_name text,
		notes text,
		image_filename text NOT NULL,
		created_at datetime NOT NULL,
		species_id integer NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if !s.db.Migrator().HasColumn(&Post{}, "UserID") {
		t.Error("expected user_id column after Migrate")
	}

	// The patched table must accept posts with and without an uploader.
	sp := Species{Name: "Tufted Titmouse"}
	if err := s.CreateSpecies(&sp); err != nil {
		t.Fatalf("CreateSpecies failed: %v", err)
	}
	u := User{Name: "Ray"}
	if err := s.CreateUser(&u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreatePost(&Post{Caption: "no uploader", ImageFilename: "x.jpg", SpeciesID: sp.ID}); err != nil {
		t.Errorf("post without uploader: %v", err)
	}
	if err := s.CreatePost(&Post{Caption: "with uploader", ImageFilename: "y.jpg", SpeciesID: sp.ID, UserID: &u.ID}); err != nil {
		t.Errorf("post with uploader: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestWaitForDB(t *testing.T) {
	s := setupTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.WaitForDB(ctx, time.Second, 10*time.Millisecond); err != nil {
		t.Fatalf("WaitForDB failed on a live database: %v", err)
	}
}

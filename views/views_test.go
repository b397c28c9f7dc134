package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
)

var testCfg = SiteConfig{Name: "Test Gallery", URL: "http://localhost:3000"}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func TestHomeEscapesUserContent(t *testing.T) {
	posts := []PostItem{{
		ID:            1,
		Caption:       `<script>alert("x")</script>`,
		ImageFilename: "x.jpg",
		SpeciesID:     1,
		SpeciesName:   "Crow & Raven",
		CreatedAt:     time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC),
	}}
	out := render(t, Home(testCfg, nil, nil, posts, "", false))

	if strings.Contains(out, `<script>alert`) {
		t.Error("caption was not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("expected escaped caption in output")
	}
	if !strings.Contains(out, "Crow &amp; Raven") {
		t.Errorf("expected escaped species name, got:\n%s", out)
	}
}

func TestHomeShowsDeleteOnlyForEditor(t *testing.T) {
	posts := []PostItem{{ID: 7, Caption: "c", ImageFilename: "c.jpg", SpeciesID: 1, SpeciesName: "Wren"}}

	visitor := render(t, Home(testCfg, nil, nil, posts, "", false))
	if strings.Contains(visitor, "/post/7/delete") {
		t.Error("visitor page should not carry the delete form")
	}
	editor := render(t, Home(testCfg, nil, nil, posts, "", true))
	if !strings.Contains(editor, "/post/7/delete") {
		t.Error("editor page should carry the delete form")
	}
}

func TestPageRendersFlashes(t *testing.T) {
	flashes := []Flash{{Category: "success", Message: "Species added."}}
	out := render(t, Home(testCfg, flashes, nil, nil, "", false))

	if !strings.Contains(out, `class="flash flash-success"`) {
		t.Error("expected flash category class")
	}
	if !strings.Contains(out, "Species added.") {
		t.Error("expected flash message")
	}
}

func TestLoginCarriesNextTarget(t *testing.T) {
	out := render(t, Login(testCfg, nil, "/species/new"))

	if !strings.Contains(out, `name="next" value="/species/new"`) {
		t.Errorf("expected hidden next field, got:\n%s", out)
	}
	if !strings.Contains(out, `name="remember"`) {
		t.Error("expected remember checkbox")
	}
}

func TestSpeciesFormNewVersusEdit(t *testing.T) {
	created := render(t, SpeciesForm(testCfg, nil, nil))
	if !strings.Contains(created, `action="/species/new"`) {
		t.Error("nil species should render the create form")
	}

	sp := SpeciesItem{ID: 3, Name: "Osprey"}
	edited := render(t, SpeciesForm(testCfg, nil, &sp))
	if !strings.Contains(edited, `action="/species/3/edit"`) {
		t.Error("expected edit action")
	}
	if !strings.Contains(edited, `value="Osprey"`) {
		t.Error("expected current name prefilled")
	}
}

func TestNotFoundLinksHome(t *testing.T) {
	out := render(t, NotFound(testCfg))
	if !strings.Contains(out, "404") || !strings.Contains(out, `href="/"`) {
		t.Errorf("unexpected 404 page:\n%s", out)
	}
}

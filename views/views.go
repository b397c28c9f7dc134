// Package views renders the gallery's HTML pages as templ components. The
// markup is deliberately skeletal and built programmatically; pages exist to
// carry forms, flashes, and image listings, not design.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func esc(s string) string { return html.EscapeString(s) }

// page wraps body markup in the shared layout: title, nav, queued flashes.
func page(cfg SiteConfig, title string, flashes []Flash, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		fmt.Fprintf(&b, `<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s — %s</title></head><body>`, esc(title), esc(cfg.Name))
		fmt.Fprintf(&b, `<header><h1><a href="/">%s</a></h1>`, esc(cfg.Name))
		b.WriteString(`<nav><a href="/species">Species</a> <a href="/users">Users</a> <a href="/post/new">New post</a> <a href="/login">Editor</a></nav></header>`)
		for _, f := range flashes {
			fmt.Fprintf(&b, `<p class="flash flash-%s">%s</p>`, esc(f.Category), esc(f.Message))
		}
		b.WriteString("<main>")
		body(&b)
		b.WriteString("</main></body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writePost(b *strings.Builder, p PostItem, editor bool) {
	fmt.Fprintf(b, `<figure id="post-%d">`, p.ID)
	fmt.Fprintf(b, `<img src="/uploads/%s" alt="%s" loading="lazy">`, esc(p.ImageFilename), esc(p.Caption))
	fmt.Fprintf(b, `<figcaption>%s`, esc(p.Caption))
	fmt.Fprintf(b, ` — <a href="/species/%d">%s</a>`, p.SpeciesID, esc(p.SpeciesName))
	if p.AnimalName != "" {
		fmt.Fprintf(b, ` <em>(%s)</em>`, esc(p.AnimalName))
	}
	if p.UserName != "" {
		fmt.Fprintf(b, ` by %s`, esc(p.UserName))
	}
	if p.Notes != "" {
		fmt.Fprintf(b, `<br><small>%s</small>`, esc(p.Notes))
	}
	fmt.Fprintf(b, `<br><time>%s</time>`, p.CreatedAt.Format("2006-01-02 15:04"))
	if editor {
		fmt.Fprintf(b, `<form method="post" action="/post/%d/delete"><button>Delete</button></form>`, p.ID)
	}
	b.WriteString(`</figcaption></figure>`)
}

// Home is the index page: species filter plus the newest posts.
func Home(cfg SiteConfig, flashes []Flash, species []SpeciesItem, posts []PostItem, selected string, editor bool) templ.Component {
	return page(cfg, "Latest photos", flashes, func(b *strings.Builder) {
		b.WriteString(`<form method="get" action="/"><select name="species_id"><option value="">All species</option>`)
		for _, sp := range species {
			sel := ""
			if selected == fmt.Sprint(sp.ID) {
				sel = ` selected`
			}
			fmt.Fprintf(b, `<option value="%d"%s>%s</option>`, sp.ID, sel, esc(sp.Name))
		}
		b.WriteString(`</select><button>Filter</button></form>`)
		if len(posts) == 0 {
			b.WriteString(`<p>No posts yet.</p>`)
		}
		for _, p := range posts {
			writePost(b, p, editor)
		}
	})
}

// Login renders the editor login form, carrying the post-login target.
func Login(cfg SiteConfig, flashes []Flash, next string) templ.Component {
	return page(cfg, "Editor login", flashes, func(b *strings.Builder) {
		b.WriteString(`<form method="post" action="/login">`)
		fmt.Fprintf(b, `<input type="hidden" name="next" value="%s">`, esc(next))
		b.WriteString(`<label>Username <input name="username" required></label>`)
		b.WriteString(`<label>Password <input type="password" name="password" required></label>`)
		b.WriteString(`<label><input type="checkbox" name="remember" value="1"> Remember me</label>`)
		b.WriteString(`<button>Log in</button></form>`)
	})
}

// SpeciesList renders all species with links to their profiles.
func SpeciesList(cfg SiteConfig, flashes []Flash, species []SpeciesItem) templ.Component {
	return page(cfg, "Species", flashes, func(b *strings.Builder) {
		b.WriteString(`<ul>`)
		for _, sp := range species {
			fmt.Fprintf(b, `<li><a href="/species/%d">%s</a></li>`, sp.ID, esc(sp.Name))
		}
		b.WriteString(`</ul><p><a href="/species/new">Add species</a></p>`)
	})
}

// SpeciesProfile renders one species with its posts and named animals.
func SpeciesProfile(cfg SiteConfig, flashes []Flash, sp SpeciesItem, posts []PostItem, animals []AnimalItem, editor bool) templ.Component {
	return page(cfg, sp.Name, flashes, func(b *strings.Builder) {
		fmt.Fprintf(b, `<h2>%s</h2>`, esc(sp.Name))
		if editor {
			fmt.Fprintf(b, `<p><a href="/species/%d/edit">Edit</a> <a href="/post/new?species_id=%d">New post</a></p>`, sp.ID, sp.ID)
			fmt.Fprintf(b, `<form method="post" action="/species/%d/delete"><button>Delete species and all posts</button></form>`, sp.ID)
		}
		if len(animals) > 0 {
			b.WriteString(`<h3>Known animals</h3><ul>`)
			for _, an := range animals {
				fmt.Fprintf(b, `<li>%s`, esc(an.Name))
				if editor {
					fmt.Fprintf(b, ` <a href="/animals/%d/edit">edit</a>`, an.ID)
				}
				b.WriteString(`</li>`)
			}
			b.WriteString(`</ul>`)
		}
		if editor {
			fmt.Fprintf(b, `<form method="post" action="/species/%d/animals/new"><input name="name" placeholder="Animal name"><button>Add animal</button></form>`, sp.ID)
		}
		for _, p := range posts {
			writePost(b, p, editor)
		}
	})
}

// SpeciesForm renders the create form when sp is nil, the edit form otherwise.
func SpeciesForm(cfg SiteConfig, flashes []Flash, sp *SpeciesItem) templ.Component {
	title := "New species"
	action := "/species/new"
	name := ""
	if sp != nil {
		title = "Edit species"
		action = fmt.Sprintf("/species/%d/edit", sp.ID)
		name = sp.Name
	}
	return page(cfg, title, flashes, func(b *strings.Builder) {
		fmt.Fprintf(b, `<form method="post" action="%s">`, action)
		fmt.Fprintf(b, `<label>Name <input name="name" value="%s" required></label>`, esc(name))
		b.WriteString(`<button>Save</button></form>`)
	})
}

// AnimalForm renders the rename form for one animal.
func AnimalForm(cfg SiteConfig, flashes []Flash, an AnimalItem) templ.Component {
	return page(cfg, "Edit animal", flashes, func(b *strings.Builder) {
		fmt.Fprintf(b, `<form method="post" action="/animals/%d/edit">`, an.ID)
		fmt.Fprintf(b, `<label>Name <input name="name" value="%s" required></label>`, esc(an.Name))
		b.WriteString(`<button>Save</button></form>`)
	})
}

// PostForm renders the photo submission form.
func PostForm(cfg SiteConfig, flashes []Flash, species []SpeciesItem, users []UserItem, selected string) templ.Component {
	return page(cfg, "New post", flashes, func(b *strings.Builder) {
		b.WriteString(`<form method="post" action="/post/new" enctype="multipart/form-data">`)
		b.WriteString(`<label>Caption <input name="caption" maxlength="300" required></label>`)
		b.WriteString(`<label>Species <select name="species"><option value="">Choose…</option>`)
		for _, sp := range species {
			sel := ""
			if selected == fmt.Sprint(sp.ID) {
				sel = ` selected`
			}
			fmt.Fprintf(b, `<option value="%d"%s>%s</option>`, sp.ID, sel, esc(sp.Name))
		}
		b.WriteString(`</select></label>`)
		b.WriteString(`<label>Animal name <input name="animal_name" maxlength="100"></label>`)
		b.WriteString(`<input type="hidden" name="existing_animal" value="">`)
		b.WriteString(`<label>Notes <textarea name="notes"></textarea></label>`)
		b.WriteString(`<label>User <select name="user_id"><option value="">None</option>`)
		for _, u := range users {
			fmt.Fprintf(b, `<option value="%d">%s</option>`, u.ID, esc(u.Name))
		}
		b.WriteString(`</select></label>`)
		b.WriteString(`<label>Image <input type="file" name="image" required></label>`)
		b.WriteString(`<button>Create post</button></form>`)
	})
}

// Users lists uploader profiles.
func Users(cfg SiteConfig, flashes []Flash, users []UserItem) templ.Component {
	return page(cfg, "Users", flashes, func(b *strings.Builder) {
		b.WriteString(`<ul>`)
		for _, u := range users {
			fmt.Fprintf(b, `<li>%s`, esc(u.Name))
			if u.Bio != "" {
				fmt.Fprintf(b, ` — <small>%s</small>`, esc(u.Bio))
			}
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul><p><a href="/users/new">Add user</a></p>`)
	})
}

// UserForm renders the uploader creation form.
func UserForm(cfg SiteConfig, flashes []Flash) templ.Component {
	return page(cfg, "New user", flashes, func(b *strings.Builder) {
		b.WriteString(`<form method="post" action="/users/new">`)
		b.WriteString(`<label>Name <input name="name" required></label>`)
		b.WriteString(`<label>Bio <textarea name="bio"></textarea></label>`)
		b.WriteString(`<button>Save</button></form>`)
	})
}

// NotFound is the styled 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return page(cfg, "Not found", nil, func(b *strings.Builder) {
		b.WriteString(`<h2>404</h2><p>That page does not exist. <a href="/">Back to the gallery.</a></p>`)
	})
}

// ServerError is the styled 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return page(cfg, "Something went wrong", nil, func(b *strings.Builder) {
		b.WriteString(`<h2>500</h2><p>Something went wrong on our end. <a href="/">Back to the gallery.</a></p>`)
	})
}

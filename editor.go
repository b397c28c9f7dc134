package birdblog

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rhit-weinrea/moms-bird-blog/views"
)

// Editor-gated handlers. The shared flow is validate, flash, redirect: bad
// input never renders an error page, it bounces back to the originating form
// with a one-shot message.

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Remember string `form:"remember"`
	Next     string `form:"next"`
}

type speciesForm struct {
	Name string `form:"name" validate:"required,max=128"`
}

type userForm struct {
	Name string `form:"name" validate:"required,max=128"`
	Bio  string `form:"bio"`
}

type postForm struct {
	Caption        string `form:"caption" validate:"required,max=300"`
	AnimalName     string `form:"animal_name" validate:"max=100"`
	ExistingAnimal string `form:"existing_animal"`
	Notes          string `form:"notes"`
	Species        string `form:"species"`
	UserID         string `form:"user_id"`
}

// --- Login / logout ---

func (a *App) handleLoginForm(c echo.Context) error {
	a.ensureReady()
	return Render(c, views.Login(a.siteConfig(), takeFlashes(c), safeNext(c.QueryParam("next"))))
}

func (a *App) handleLogin(c echo.Context) error {
	a.ensureReady()
	var f loginForm
	if err := c.Bind(&f); err != nil {
		return err
	}
	next := safeNext(f.Next)
	if err := c.Validate(&f); err != nil || !a.checkEditorCredentials(f.Username, f.Password) {
		addFlash(c, "danger", "Invalid credentials.")
		return c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(next))
	}
	if err := a.setEditorSession(c, f.Remember != ""); err != nil {
		return err
	}
	addFlash(c, "success", "Logged in as editor.")
	return c.Redirect(http.StatusSeeOther, next)
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearEditorSession(c); err != nil {
		return err
	}
	addFlash(c, "info", "Logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// --- Species ---

func (a *App) handleNewSpeciesForm(c echo.Context) error {
	return Render(c, views.SpeciesForm(a.siteConfig(), takeFlashes(c), nil))
}

// handleNewSpecies creates a species. A duplicate name is not an error: the
// editor is redirected to the existing profile instead.
func (a *App) handleNewSpecies(c echo.Context) error {
	var f speciesForm
	if err := c.Bind(&f); err != nil {
		return err
	}
	f.Name = strings.TrimSpace(f.Name)
	if err := c.Validate(&f); err != nil {
		addFlash(c, "warning", "Species name cannot be empty.")
		return c.Redirect(http.StatusSeeOther, "/species/new")
	}
	existing, err := a.Store.SpeciesByName(f.Name)
	if err == nil {
		addFlash(c, "info", "Species already exists.")
		return c.Redirect(http.StatusSeeOther, speciesPath(existing.ID))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	sp := Species{Name: f.Name}
	if err := a.Store.CreateSpecies(&sp); err != nil {
		return err
	}
	addFlash(c, "success", fmt.Sprintf("Species %q added.", sp.Name))
	return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID))
}

func (a *App) handleEditSpeciesForm(c echo.Context) error {
	sp, err := a.lookupSpecies(c)
	if err != nil {
		return err
	}
	item := views.SpeciesItem{ID: sp.ID, Name: sp.Name}
	return Render(c, views.SpeciesForm(a.siteConfig(), takeFlashes(c), &item))
}

func (a *App) handleEditSpecies(c echo.Context) error {
	sp, err := a.lookupSpecies(c)
	if err != nil {
		return err
	}
	var f speciesForm
	if err := c.Bind(&f); err != nil {
		return err
	}
	f.Name = strings.TrimSpace(f.Name)
	if err := c.Validate(&f); err != nil {
		addFlash(c, "warning", "Species name cannot be empty.")
		return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID)+"/edit")
	}
	if err := a.Store.RenameSpecies(sp.ID, f.Name); err != nil {
		return err
	}
	addFlash(c, "success", "Species updated.")
	return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID))
}

// handleDeleteSpecies removes a species, its posts, and their image files.
// File removal happens first and is best-effort: a file that is already gone
// must not block the delete.
func (a *App) handleDeleteSpecies(c echo.Context) error {
	sp, err := a.lookupSpecies(c)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(sp.ID, 0)
	if err != nil {
		return err
	}
	for _, p := range posts {
		a.removeUpload(c, p.ImageFilename)
	}
	if err := a.Store.DeleteSpecies(sp.ID); err != nil {
		return err
	}
	addFlash(c, "info", "Species and its posts were deleted.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// --- Animals ---

// handleNewAnimal adds a named animal to a species, skipping duplicates
// within that species.
func (a *App) handleNewAnimal(c echo.Context) error {
	sp, err := a.lookupSpecies(c)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		addFlash(c, "warning", "Animal name cannot be empty.")
		return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID))
	}
	_, err = a.Store.AnimalByName(sp.ID, name)
	if err == nil {
		addFlash(c, "info", "Animal already exists for this species.")
		return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := a.Store.CreateAnimal(&Animal{Name: name, SpeciesID: sp.ID}); err != nil {
		return err
	}
	addFlash(c, "success", fmt.Sprintf("Animal %q added to %s.", name, sp.Name))
	return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID))
}

func (a *App) handleEditAnimalForm(c echo.Context) error {
	an, err := a.lookupAnimal(c)
	if err != nil {
		return err
	}
	return Render(c, views.AnimalForm(a.siteConfig(), takeFlashes(c), views.AnimalItem{ID: an.ID, Name: an.Name}))
}

func (a *App) handleEditAnimal(c echo.Context) error {
	an, err := a.lookupAnimal(c)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		addFlash(c, "warning", "Animal name cannot be empty.")
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/animals/%d/edit", an.ID))
	}
	if err := a.Store.RenameAnimal(an.ID, name); err != nil {
		return err
	}
	addFlash(c, "success", "Animal updated.")
	return c.Redirect(http.StatusSeeOther, speciesPath(an.SpeciesID))
}

func (a *App) lookupAnimal(c echo.Context) (Animal, error) {
	id, err := parseID(c)
	if err != nil {
		return Animal{}, err
	}
	an, err := a.Store.GetAnimal(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Animal{}, echo.NewHTTPError(http.StatusNotFound)
	}
	return an, err
}

// --- Posts ---

func (a *App) handleNewPostForm(c echo.Context) error {
	species, err := a.Store.ListSpecies()
	if err != nil {
		return err
	}
	users, err := a.Store.ListUsers()
	if err != nil {
		return err
	}
	return Render(c, views.PostForm(a.siteConfig(), takeFlashes(c),
		speciesItems(species), userItems(users), c.QueryParam("species_id")))
}

// handleNewPost creates a post. Caption, species selection and image are all
// required; references are validated before anything is written, so a
// rejected submission leaves neither a row nor a file behind.
func (a *App) handleNewPost(c echo.Context) error {
	var f postForm
	if err := c.Bind(&f); err != nil {
		return err
	}
	f.Caption = strings.TrimSpace(f.Caption)
	image, imageErr := c.FormFile("image")
	if err := c.Validate(&f); err != nil || f.Species == "" || imageErr != nil {
		addFlash(c, "warning", "Caption, species selection and image are required.")
		return c.Redirect(http.StatusSeeOther, "/post/new")
	}

	speciesID, err := strconv.ParseUint(f.Species, 10, 32)
	if err != nil {
		addFlash(c, "danger", "Invalid species selection.")
		return c.Redirect(http.StatusSeeOther, "/post/new")
	}
	sp, err := a.Store.GetSpecies(uint(speciesID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		addFlash(c, "danger", "Selected species not found.")
		return c.Redirect(http.StatusSeeOther, "/post/new")
	}
	if err != nil {
		return err
	}

	var userID *uint
	if f.UserID != "" {
		id, err := strconv.ParseUint(f.UserID, 10, 32)
		if err != nil {
			addFlash(c, "warning", "Invalid user selection.")
			return c.Redirect(http.StatusSeeOther, "/post/new")
		}
		if _, err := a.Store.GetUser(uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				addFlash(c, "warning", "Selected user not found.")
				return c.Redirect(http.StatusSeeOther, "/post/new")
			}
			return err
		}
		uid := uint(id)
		userID = &uid
	}

	// Prefer an explicitly typed animal name over the dropdown selection.
	animalName := strings.TrimSpace(f.AnimalName)
	if animalName == "" {
		animalName = strings.TrimSpace(f.ExistingAnimal)
	}

	filename, err := a.saveUpload(image)
	if err != nil {
		if errors.Is(err, errBadFilename) {
			addFlash(c, "danger", "Invalid image filename.")
			return c.Redirect(http.StatusSeeOther, "/post/new")
		}
		return err
	}

	post := Post{
		Caption:       f.Caption,
		AnimalName:    animalName,
		Notes:         strings.TrimSpace(f.Notes),
		ImageFilename: filename,
		SpeciesID:     sp.ID,
		UserID:        userID,
	}
	if err := a.Store.CreatePost(&post); err != nil {
		a.removeUpload(c, filename)
		return err
	}
	addFlash(c, "success", "Post created.")
	return c.Redirect(http.StatusSeeOther, speciesPath(sp.ID))
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	post, err := a.Store.GetPost(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	a.removeUpload(c, post.ImageFilename)
	if err := a.Store.DeletePost(post.ID); err != nil {
		return err
	}
	addFlash(c, "info", "Post deleted.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// --- Users ---

func (a *App) handleNewUserForm(c echo.Context) error {
	return Render(c, views.UserForm(a.siteConfig(), takeFlashes(c)))
}

func (a *App) handleNewUser(c echo.Context) error {
	var f userForm
	if err := c.Bind(&f); err != nil {
		return err
	}
	f.Name = strings.TrimSpace(f.Name)
	if err := c.Validate(&f); err != nil {
		addFlash(c, "warning", "Name is required.")
		return c.Redirect(http.StatusSeeOther, "/users/new")
	}
	u := User{Name: f.Name, Bio: strings.TrimSpace(f.Bio)}
	if err := a.Store.CreateUser(&u); err != nil {
		return err
	}
	addFlash(c, "success", "User created.")
	return c.Redirect(http.StatusSeeOther, "/users")
}

func speciesPath(id uint) string {
	return fmt.Sprintf("/species/%d", id)
}

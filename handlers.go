package birdblog

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rhit-weinrea/moms-bird-blog/views"
)

// handleHome serves the index: all species for the filter dropdown plus the
// 50 newest posts, optionally narrowed to one species. An unparsable
// species_id falls back to the unfiltered listing.
func (a *App) handleHome(c echo.Context) error {
	a.ensureReady()
	species, err := a.Store.ListSpecies()
	if err != nil {
		return err
	}
	selected := c.QueryParam("species_id")
	var speciesID uint
	if selected != "" {
		if id, err := strconv.ParseUint(selected, 10, 32); err == nil {
			speciesID = uint(id)
		} else {
			selected = ""
		}
	}
	posts, err := a.Store.ListPosts(speciesID, 50)
	if err != nil {
		return err
	}
	return Render(c, views.Home(a.siteConfig(), takeFlashes(c), speciesItems(species), postItems(posts), selected, isEditor(c)))
}

func (a *App) handleSpeciesList(c echo.Context) error {
	a.ensureReady()
	species, err := a.Store.ListSpecies()
	if err != nil {
		return err
	}
	return Render(c, views.SpeciesList(a.siteConfig(), takeFlashes(c), speciesItems(species)))
}

func (a *App) handleSpeciesProfile(c echo.Context) error {
	sp, err := a.lookupSpecies(c)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(sp.ID, 0)
	if err != nil {
		return err
	}
	animals, err := a.Store.AnimalsBySpecies(sp.ID)
	if err != nil {
		return err
	}
	return Render(c, views.SpeciesProfile(a.siteConfig(), takeFlashes(c),
		views.SpeciesItem{ID: sp.ID, Name: sp.Name}, postItems(posts), animalItems(animals), isEditor(c)))
}

// handleAnimalsForSpecies returns the named animals of a species as JSON,
// consumed by the new-post form.
func (a *App) handleAnimalsForSpecies(c echo.Context) error {
	sp, err := a.lookupSpecies(c)
	if err != nil {
		return err
	}
	animals, err := a.Store.AnimalsBySpecies(sp.ID)
	if err != nil {
		return err
	}
	type animalJSON struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	out := make([]animalJSON, 0, len(animals))
	for _, an := range animals {
		out = append(out, animalJSON{ID: an.ID, Name: an.Name})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleUsersList(c echo.Context) error {
	a.ensureReady()
	users, err := a.Store.ListUsers()
	if err != nil {
		return err
	}
	return Render(c, views.Users(a.siteConfig(), takeFlashes(c), userItems(users)))
}

// handleUploadedFile serves stored images. The parameter is reduced to its
// base name so crafted paths cannot escape the upload directory.
func (a *App) handleUploadedFile(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == string(filepath.Separator) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.File(filepath.Join(a.Config.UploadDir, name))
}

func (a *App) handleHealthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		c.Logger().Errorf("health check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"detail": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// httpErrorHandler renders styled 404/500 pages; anything else falls through
// to echo's default.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.siteConfig()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.siteConfig()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// --- Shared lookups ---

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return uint(id), nil
}

func (a *App) lookupSpecies(c echo.Context) (Species, error) {
	id, err := parseID(c)
	if err != nil {
		return Species{}, err
	}
	sp, err := a.Store.GetSpecies(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Species{}, echo.NewHTTPError(http.StatusNotFound)
	}
	return sp, err
}

// --- View model mapping ---

func speciesItems(list []Species) []views.SpeciesItem {
	out := make([]views.SpeciesItem, 0, len(list))
	for _, sp := range list {
		out = append(out, views.SpeciesItem{ID: sp.ID, Name: sp.Name})
	}
	return out
}

func postItems(list []Post) []views.PostItem {
	out := make([]views.PostItem, 0, len(list))
	for _, p := range list {
		item := views.PostItem{
			ID:            p.ID,
			Caption:       p.Caption,
			AnimalName:    p.AnimalName,
			Notes:         p.Notes,
			ImageFilename: p.ImageFilename,
			SpeciesID:     p.SpeciesID,
			SpeciesName:   p.Species.Name,
			CreatedAt:     p.CreatedAt,
		}
		if p.User != nil {
			item.UserName = p.User.Name
		}
		out = append(out, item)
	}
	return out
}

func userItems(list []User) []views.UserItem {
	out := make([]views.UserItem, 0, len(list))
	for _, u := range list {
		out = append(out, views.UserItem{ID: u.ID, Name: u.Name, Bio: u.Bio})
	}
	return out
}

func animalItems(list []Animal) []views.AnimalItem {
	out := make([]views.AnimalItem, 0, len(list))
	for _, an := range list {
		out = append(out, views.AnimalItem{ID: an.ID, Name: an.Name})
	}
	return out
}

package birdblog

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RSS feed of the newest posts. Items link to the species profile the post
// lives on.

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func (a *App) handleFeed(c echo.Context) error {
	a.ensureReady()
	posts, err := a.Store.ListPosts(0, 50)
	if err != nil {
		return err
	}
	base := a.Config.SiteURL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := fmt.Sprintf("%s/species/%d", base, p.SpeciesID)
		desc := p.Notes
		if desc == "" && p.AnimalName != "" {
			desc = p.AnimalName + " (" + p.Species.Name + ")"
		}
		items = append(items, rssItem{
			Title:       p.Caption,
			Link:        link,
			Description: desc,
			PubDate:     p.CreatedAt.Format(time.RFC1123Z),
			GUID:        fmt.Sprintf("%s#post-%d", link, p.ID),
		})
	}
	feed := rss{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.SiteName,
			Link:        base,
			Description: "Latest photos",
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}

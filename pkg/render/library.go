package render

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Listing is one statute shown on the library page.
type Listing struct {
	ID          string
	Title       string
	Description string
	Category    string
	Sections    int
}

// StatutePath returns the URL path of a statute's reader page.
func StatutePath(id string) string {
	return "/statutes/" + id
}

// LibraryPage builds the library index listing every statute.
func (r *Renderer) LibraryPage(listings []Listing) *html.Node {
	container := div("library-container",
		tagged(atom.H1, "lib-header", "Treatise Library"),
	)

	if len(listings) == 0 {
		container.AppendChild(tagged(atom.P, "empty-library", "No statutes have been added yet."))
	}

	for _, listing := range listings {
		entry := link(StatutePath(listing.ID), "statute-entry")
		entry.Attr = append(entry.Attr, attr("data-id", listing.ID))
		if listing.Category != "" {
			entry.AppendChild(tagged(atom.Div, "statute-meta", listing.Category))
		}
		entry.AppendChild(tagged(atom.H2, "", listing.Title))
		if listing.Description != "" {
			entry.AppendChild(tagged(atom.P, "", listing.Description))
		}
		if listing.Sections > 0 {
			entry.AppendChild(tagged(atom.Div, "statute-meta", fmt.Sprintf("%d sections", listing.Sections)))
		}
		container.AppendChild(entry)
	}

	return document("Treatise Library", container)
}

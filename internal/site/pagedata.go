package site

import "html/template"

// SiteInfo is the site-wide data every page template sees.
type SiteInfo struct {
	Title    string
	BaseURL  string
	Manifest string
	PostsDir string
}

// PostView is a post prepared for a template.
type PostView struct {
	Filename      string
	Title         string
	FormattedDate string
	Badge         string
	Structured    bool
	URL           string
	Body          template.HTML
}

// PageData is passed to each layout.
type PageData struct {
	Site      SiteInfo
	PageTitle string
	Active    string // "home" or "archive"
	Post      *PostView
	IsCurrent bool
	Archive   []PostView
	Recent    []PostView
	All       []PostView
	About     *About
	PostCount int
	Error     string
}

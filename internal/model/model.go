package model

import (
	"strings"
	"time"
)

// DefaultRecentLimit is how many posts the recent-posts sidebar shows.
const DefaultRecentLimit = 5

// PostType says how a post's content is turned into HTML.
type PostType string

const (
	// Structured posts are already HTML and are shown as-is.
	Structured PostType = "structured"
	// Plain posts are freeform text that goes through the text formatter.
	Plain PostType = "plain"
)

// TypeFor derives the post type from a file extension (without the dot).
func TypeFor(ext string) PostType {
	if strings.EqualFold(ext, "html") {
		return Structured
	}
	return Plain
}

// Badge is the short label shown next to a post of this type.
func (t PostType) Badge() string {
	if t == Structured {
		return "HTML"
	}
	return "TXT"
}

// Post represents a single blog entry loaded from the post directory.
type Post struct {
	Filename      string
	Title         string
	Date          time.Time
	DateValid     bool
	FormattedDate string
	Content       string
	Type          PostType
}

// Collection is the ordered, read-only result of one ingestion run.
// Element 0 is the current post and the rest form the archive.
type Collection struct {
	posts []Post
	index map[string]int
}

// NewCollection wraps posts, which must already be sorted. The slice is
// copied so later changes by the caller do not leak in.
func NewCollection(posts []Post) *Collection {
	c := &Collection{
		posts: append([]Post(nil), posts...),
		index: make(map[string]int, len(posts)),
	}
	for i, p := range c.posts {
		c.index[p.Filename] = i
	}
	return c
}

// Len returns the number of posts.
func (c *Collection) Len() int { return len(c.posts) }

// Posts returns a copy of all posts in display order.
func (c *Collection) Posts() []Post {
	return append([]Post(nil), c.posts...)
}

// Current returns the most recent post.
func (c *Collection) Current() (Post, bool) {
	if len(c.posts) == 0 {
		return Post{}, false
	}
	return c.posts[0], true
}

// Archive returns every post except the current one.
func (c *Collection) Archive() []Post {
	if len(c.posts) < 2 {
		return []Post{}
	}
	return append([]Post(nil), c.posts[1:]...)
}

// Recent returns up to limit posts from the top of the collection. A
// non-positive limit means DefaultRecentLimit.
func (c *Collection) Recent(limit int) []Post {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > len(c.posts) {
		limit = len(c.posts)
	}
	return append([]Post(nil), c.posts[:limit]...)
}

// Lookup finds a post by filename.
func (c *Collection) Lookup(filename string) (Post, bool) {
	i, ok := c.index[filename]
	if !ok {
		return Post{}, false
	}
	return c.posts[i], true
}

// IsCurrent reports whether filename names the current post.
func (c *Collection) IsCurrent(filename string) bool {
	i, ok := c.index[filename]
	return ok && i == 0
}

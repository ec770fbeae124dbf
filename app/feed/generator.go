package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/teamfeed/app/cfg"
	"github.com/lysyi3m/teamfeed/app/database"
)

const (
	channelTitle       = "Team Feed"
	channelDescription = "Latest posts from the team feed"
)

// Generator renders team feed posts as RSS 2.0.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders posts in the order given. authors maps user ids to display names; posts by
// unknown authors are written without an author element.
func (g *Generator) Run(posts []database.FeedPost, authors map[string]string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	baseURL := cfg.Get().PublicURL()

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", baseURL, 4)
	g.writeElement(&buf, "description", channelDescription, 4)

	selfLink := fmt.Sprintf("%s/feed.rss", baseURL)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if len(posts) > 0 && !posts[0].CreatedAt.IsZero() {
		lastBuildDate = posts[0].CreatedAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("TeamFeed/%s", cfg.Get().Version), 4)

	for _, post := range posts {
		g.writeItem(&buf, post, authors[post.AuthorID])
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, post database.FeedPost, author string) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(postGUID(post.ID)))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", post.Title, 6)
	g.writeElement(buf, "description", post.Content, 6)
	g.writeElement(buf, "pubDate", post.CreatedAt.In(time.Local).Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", author, 6)

	for _, tag := range post.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func postGUID(id int64) string {
	return fmt.Sprintf("post-%d", id)
}

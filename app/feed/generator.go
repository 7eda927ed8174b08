package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/putcast/app/cfg"
)

type Generator struct {
	version string
}

func NewGenerator() *Generator {
	return &Generator{version: cfg.GetVersion()}
}

func (g *Generator) Run(doc Document) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", doc.Title, 4)
	g.writeElement(&buf, "link", doc.Link, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Files from put.io for %s", doc.Title), 4)

	if doc.Link != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(doc.Link)))
	}

	g.writeElement(&buf, "lastBuildDate", g.lastBuildDate(doc).Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Putcast/%s", g.version), 4)

	for _, entry := range doc.Entries {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

// lastBuildDate is the newest entry publish time, or now for empty feeds.
func (g *Generator) lastBuildDate(doc Document) time.Time {
	var latest time.Time
	for _, entry := range doc.Entries {
		if entry.PublishedAt.After(latest) {
			latest = entry.PublishedAt
		}
	}
	if latest.IsZero() {
		return time.Now().In(time.Local)
	}
	return latest
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry Entry) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", entry.Title, 6)
	g.writeElement(buf, "link", entry.Link, 6)

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(fmt.Sprintf("putio:%d:%s", entry.FileID, entry.Kind)))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", entry.PubDate, 6)

	// RSS 2.0 requires url, length and type on enclosures
	buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
		html.EscapeString(entry.Link),
		entry.Size,
		html.EscapeString(entry.ContentType)))

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

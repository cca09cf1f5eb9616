package feed

import (
	"fmt"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/beevik/etree"
)

// ContentType is the media type of a rendered feed
const ContentType = "application/rss+xml; charset=utf-8"

// Builder renders topics as an RSS 2.0 document
type Builder struct {
	title       string
	description string
}

// NewBuilder creates a feed builder for the Daily Learning channel
func NewBuilder() *Builder {
	return &Builder{
		title:       "Daily Learning",
		description: "The latest topics to learn from",
	}
}

// Build renders topics, newest first, as an RSS channel. The channel's
// lastBuildDate is the creation time of the newest topic.
func (b *Builder) Build(topics []models.TopicDetails) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(b.title)
	channel.CreateElement("description").SetText(b.description)
	if len(topics) > 0 {
		channel.CreateElement("lastBuildDate").SetText(topics[0].CreatedAt.Format(time.RFC1123Z))
	}

	for _, t := range topics {
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(t.Title)
		item.CreateElement("description").SetText(t.Content)
		if t.CategoryName != "" {
			item.CreateElement("category").SetText(t.CategoryName)
		}
		guid := item.CreateElement("guid")
		guid.CreateAttr("isPermaLink", "false")
		guid.SetText(t.ID)
		item.CreateElement("pubDate").SetText(t.CreatedAt.Format(time.RFC1123Z))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render feed: %w", err)
	}
	return out, nil
}

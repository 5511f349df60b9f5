package render

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/markdown"
)

// rssFeed is an RSS 2.0 document.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category,omitempty"`
	Description string   `xml:"description,omitempty"`
}

// jsonFeed is a JSON Feed 1.1 document.
type jsonFeed struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	HomePageURL string         `json:"home_page_url"`
	FeedURL     string         `json:"feed_url"`
	Language    string         `json:"language,omitempty"`
	Items       []jsonFeedItem `json:"items"`
}

type jsonFeedItem struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	DatePublished string   `json:"date_published"`
	Tags          []string `json:"tags,omitempty"`
	ContentText   string   `json:"content_text,omitempty"`
}

// RSS renders the RSS 2.0 feed over the home-ordered document list.
func (r *Renderer) RSS(docs []content.Document) ([]byte, error) {
	description, _ := r.cfg.Params["description"].(string)
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       r.cfg.Title,
			Link:        r.cfg.BaseURL,
			Description: description,
			Language:    r.cfg.LanguageCode,
			Items:       make([]rssItem, 0, len(docs)),
		},
	}

	for _, doc := range docs {
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       doc.Title,
			Link:        AbsoluteURL(r.cfg.BaseURL, DocumentPath(doc)),
			GUID:        AbsoluteURL(r.cfg.BaseURL, DocumentPath(doc)),
			PubDate:     doc.Date.Format(time.RFC1123Z),
			Categories:  doc.Tags,
			Description: r.summaryText(doc),
		})
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss feed: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// JSONFeed renders the JSON Feed 1.1 over the home-ordered document list.
func (r *Renderer) JSONFeed(docs []content.Document) ([]byte, error) {
	feed := jsonFeed{
		Version:     "https://jsonfeed.org/version/1.1",
		Title:       r.cfg.Title,
		HomePageURL: r.cfg.BaseURL,
		FeedURL:     AbsoluteURL(r.cfg.BaseURL, JSONFeedPath),
		Language:    r.cfg.LanguageCode,
		Items:       make([]jsonFeedItem, 0, len(docs)),
	}

	for _, doc := range docs {
		feed.Items = append(feed.Items, jsonFeedItem{
			ID:            AbsoluteURL(r.cfg.BaseURL, DocumentPath(doc)),
			URL:           AbsoluteURL(r.cfg.BaseURL, DocumentPath(doc)),
			Title:         doc.Title,
			DatePublished: doc.Date.Format(time.RFC3339),
			Tags:          doc.Tags,
			ContentText:   r.summaryText(doc),
		})
	}

	out, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json feed: %w", err)
	}
	return append(out, '\n'), nil
}

// summaryText renders a document summary to plain text for feed consumption.
func (r *Renderer) summaryText(doc content.Document) string {
	rendered, err := markdown.Render(doc.Summary)
	if err != nil {
		return ""
	}
	return markdown.PlainText(rendered)
}

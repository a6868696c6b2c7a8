package spacetraveling

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/spacetraveling/post"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(d post.Detail, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, d.Link())
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": d.Title,
		"url":      postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if d.Subtitle != "" {
		data["description"] = d.Subtitle
	}
	if d.FirstPublicationDate != nil {
		data["datePublished"] = d.FirstPublicationDate.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if d.LastPublicationDate != nil {
		data["dateModified"] = d.LastPublicationDate.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if d.BannerURL != "" {
		data["image"] = d.BannerURL
	}
	if d.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  d.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// HomeMeta returns the head metadata of the post list.
func HomeMeta(cfg SiteConfig) PageMeta {
	return PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
	}
}

// PostMeta returns the head metadata of a post page.
func PostMeta(cfg SiteConfig, d post.Detail) PageMeta {
	title := d.Title
	if cfg.Name != "" {
		title += " | " + cfg.Name
	}
	return PageMeta{
		Title:       title,
		Description: d.Subtitle,
		URL:         BuildURL(cfg.URL, d.Link()),
		OGType:      "article",
		Image:       d.BannerURL,
	}
}

// Package scraper looks up candidate product images for the catalog
// admin tooling.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxResults = 6
	hardMaxResults    = 20
	minImageSize      = 300
)

var (
	vqdRe      = regexp.MustCompile(`vqd="([^"]+)"`)
	embedImgRe = regexp.MustCompile(`"(https?://[^"]+\.(?:jpg|jpeg|png|webp)[^"]*)"`)
	sizeArgRe  = regexp.MustCompile(`=w\d+-h\d+`)
)

type ImageScraper struct {
	client *http.Client
}

func NewImageScraper() *ImageScraper {
	return &ImageScraper{
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

// SearchImages returns candidate image URLs for a product, querying
// DuckDuckGo first and falling back to Google image search.
func (s *ImageScraper) SearchImages(ctx context.Context, productName, brand, category string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > hardMaxResults {
		maxResults = hardMaxResults
	}

	query := buildImageQuery(productName, brand, category)

	images, err := s.searchDuckDuckGo(ctx, query, maxResults)
	if err == nil && len(images) > 0 {
		log.Info().Str("query", query).Int("found", len(images)).Msg("images found via duckduckgo")
		return images, nil
	}
	log.Warn().Err(err).Str("query", query).Msg("duckduckgo image search failed, trying google")

	images, err = s.searchGoogleImages(ctx, query, maxResults)
	if err == nil && len(images) > 0 {
		log.Info().Str("query", query).Int("found", len(images)).Msg("images found via google")
		return images, nil
	}
	return nil, fmt.Errorf("no images found: %w", err)
}

func buildImageQuery(productName, brand, category string) string {
	parts := []string{}
	if brand = strings.TrimSpace(brand); brand != "" {
		parts = append(parts, brand)
	}
	if productName = strings.TrimSpace(productName); productName != "" {
		parts = append(parts, productName)
	}
	if category = strings.TrimSpace(category); category != "" {
		parts = append(parts, category)
	}
	parts = append(parts, "product packaging")
	return strings.Join(parts, " ")
}

// searchDuckDuckGo hits the unofficial image endpoint, which requires
// a vqd token extracted from the HTML search page first.
func (s *ImageScraper) searchDuckDuckGo(ctx context.Context, query string, maxResults int) ([]string, error) {
	searchURL := fmt.Sprintf("https://duckduckgo.com/?q=%s&iax=images&ia=images", url.QueryEscape(query))

	body, err := s.fetch(ctx, searchURL, "")
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return nil, err
	}

	m := vqdRe.FindStringSubmatch(string(raw))
	if len(m) < 2 {
		return nil, fmt.Errorf("vqd token not found")
	}

	imageURL := fmt.Sprintf("https://duckduckgo.com/i.js?q=%s&vqd=%s&o=json&p=1&s=0",
		url.QueryEscape(query), url.QueryEscape(m[1]))

	resp, err := s.fetch(ctx, imageURL, searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	var result struct {
		Results []struct {
			Image     string `json:"image"`
			Thumbnail string `json:"thumbnail"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode image results: %w", err)
	}

	images := []string{}
	for _, img := range result.Results {
		if img.Width < minImageSize || img.Height < minImageSize {
			continue
		}
		u := img.Image
		if u == "" {
			u = img.Thumbnail
		}
		if strings.HasPrefix(u, "http") {
			images = append(images, u)
			if len(images) >= maxResults {
				break
			}
		}
	}
	return images, nil
}

func (s *ImageScraper) searchGoogleImages(ctx context.Context, query string, maxResults int) ([]string, error) {
	searchURL := fmt.Sprintf("https://www.google.com/search?tbm=isch&q=%s&safe=active", url.QueryEscape(query))

	body, err := s.fetch(ctx, searchURL, "")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	images := []string{}
	keep := func(u string) bool {
		lower := strings.ToLower(u)
		return !strings.Contains(lower, "logo") &&
			!strings.Contains(lower, "icon") &&
			!strings.Contains(u, "gstatic.com")
	}

	doc.Find("img[data-src], img[src]").Each(func(_ int, sel *goquery.Selection) {
		if len(images) >= maxResults {
			return
		}
		u, ok := sel.Attr("data-src")
		if !ok || !strings.HasPrefix(u, "http") {
			u, ok = sel.Attr("src")
			if !ok || !strings.HasPrefix(u, "http") {
				return
			}
		}
		if strings.Contains(u, "googleusercontent.com") && strings.Contains(u, "=w") {
			u = sizeArgRe.ReplaceAllString(u, "=w800-h600")
		}
		if keep(u) {
			images = append(images, u)
		}
	})

	// Full-size URLs also hide in the embedded script JSON.
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if len(images) >= maxResults {
			return
		}
		for _, m := range embedImgRe.FindAllStringSubmatch(sel.Text(), -1) {
			if len(images) >= maxResults {
				break
			}
			if keep(m[1]) {
				images = append(images, m[1])
			}
		}
	})

	seen := map[string]bool{}
	unique := []string{}
	for _, u := range images {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
			if len(unique) >= maxResults {
				break
			}
		}
	}
	return unique, nil
}

func (s *ImageScraper) fetch(ctx context.Context, rawURL, referer string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

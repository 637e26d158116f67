package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/jonathan/playstore-scraper/internal/types"
)

const titleSuffix = " - Apps on Google Play"

// ParseError reports a details page the record could not be extracted from.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ParseDetails extracts an app record from a details page.
// Fields missing from the page are omitted from the record; only the title is required.
func ParseDetails(html string) (types.CatalogRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}

	record := types.CatalogRecord{}
	structured := structuredData(doc)
	app := lo.FindOrElse(structured, nil, func(item map[string]any) bool {
		t, _ := item["@type"].(string)
		return strings.EqualFold(t, "SoftwareApplication") || strings.EqualFold(t, "MobileApplication")
	})

	title := firstNonEmpty(
		stringField(app, "name"),
		cleanText(doc.Find(`h1[itemprop="name"]`).First().Text()),
		cleanText(doc.Find("h1").First().Text()),
		strings.TrimSuffix(metaContent(doc, `meta[property="og:title"]`), titleSuffix),
	)
	if title == "" {
		return nil, &ParseError{Message: "no app title on page"}
	}
	record["title"] = title

	setString(record, "summary", metaContent(doc, `meta[name="description"]`))
	setString(record, "description", firstNonEmpty(
		cleanText(doc.Find(`[data-g-id="description"]`).First().Text()),
		stringField(app, "description"),
		metaContent(doc, `meta[property="og:description"]`),
	))
	if descHTML, err := doc.Find(`[data-g-id="description"]`).First().Html(); err == nil {
		setString(record, "descriptionHTML", strings.TrimSpace(descHTML))
	}
	setString(record, "icon", firstNonEmpty(
		stringField(app, "image"),
		metaContent(doc, `meta[property="og:image"]`),
		attr(doc, `img[itemprop="image"]`, "src"),
	))
	setString(record, "headerImage", attr(doc, `img[alt="Cover art"]`, "src"))
	setString(record, "genre", stringField(app, "applicationCategory"))
	setString(record, "contentRating", stringField(app, "contentRating"))

	developerLink := doc.Find(`a[href*="/store/apps/dev"]`).First()
	author, _ := app["author"].(map[string]any)
	setString(record, "developer", firstNonEmpty(
		stringField(author, "name"),
		cleanText(developerLink.Text()),
	))
	if href, ok := developerLink.Attr("href"); ok {
		setString(record, "developerId", developerID(href))
	}
	setString(record, "developerWebsite", stringField(author, "url"))

	if rating, ok := app["aggregateRating"].(map[string]any); ok {
		if score, ok := number(rating["ratingValue"]); ok {
			record["score"] = score
		}
		if count, ok := number(rating["ratingCount"]); ok {
			record["ratings"] = int64(count)
		}
	}

	if offer := firstOffer(app["offers"]); offer != nil {
		if price, ok := number(offer["price"]); ok {
			record["price"] = price
			record["free"] = price == 0
		}
		setString(record, "currency", stringField(offer, "priceCurrency"))
	}

	screenshots := doc.Find(`img[data-screenshot-index], img[alt^="Screenshot"]`).Map(func(_ int, s *goquery.Selection) string {
		src, _ := s.Attr("src")
		return src
	})
	screenshots = lo.Uniq(lo.Compact(screenshots))
	if len(screenshots) > 0 {
		record["screenshots"] = screenshots
	}

	if len(structured) > 0 {
		record["structuredData"] = structured
	}

	return record, nil
}

// structuredData decodes every JSON-LD block on the page. Blocks that are not
// valid JSON objects are skipped.
func structuredData(doc *goquery.Document) []map[string]any {
	var items []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var item map[string]any
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return
		}
		items = append(items, item)
	})
	return items
}

func firstOffer(v any) map[string]any {
	switch offers := v.(type) {
	case map[string]any:
		return offers
	case []any:
		for _, o := range offers {
			if m, ok := o.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

// number accepts JSON numbers and numeric strings ("4.5", "1,234").
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		return f, err == nil
	}
	return 0, false
}

func developerID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("id")
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func metaContent(doc *goquery.Document, selector string) string {
	return attr(doc, selector, "content")
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func setString(record types.CatalogRecord, key, value string) {
	if value != "" {
		record[key] = value
	}
}

func firstNonEmpty(values ...string) string {
	v, _ := lo.Find(values, func(s string) bool { return s != "" })
	return v
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

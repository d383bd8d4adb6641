package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SheetProvider reads the catalog from a spreadsheet published as CSV.
type SheetProvider struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.Breaker
	log     logrus.FieldLogger
}

func NewSheetProvider(url string, client *http.Client, log logrus.FieldLogger) *SheetProvider {
	return &SheetProvider{
		url:     url,
		client:  client,
		breaker: circuitbreaker.New("catalog-sheet"),
		log:     log,
	}
}

func (p *SheetProvider) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	var c *domain.Catalog
	err := p.breaker.Do(func() error {
		var err error
		c, err = p.fetch(ctx)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	return c, err
}

func (p *SheetProvider) fetch(ctx context.Context) (*domain.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFeedUnavailable, resp.StatusCode)
	}

	return ParseCSV(resp.Body, p.log)
}

// column aliases, matched after lower-casing and dropping spaces, dashes
// and underscores
var columns = map[string][]string{
	"id":          {"id"},
	"category":    {"categoryid", "category"},
	"name":        {"name"},
	"price":       {"priceeur", "price"},
	"unit":        {"unitlabel", "unit"},
	"volume":      {"volumeliters", "volume", "liters"},
	"image":       {"image"},
	"description": {"description"},
	"active":      {"active"},
	"order":       {"order"},
}

var required = []string{"id", "name", "price"}

// ParseCSV reads a catalog feed. The first row is the header. Rows without
// an id, rows marked inactive and rows with an unreadable price or volume are
// skipped. Products are ordered by their "order" column; categories are
// listed in the order they first appear.
func ParseCSV(r io.Reader, log logrus.FieldLogger) (*domain.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty feed", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	idx := indexColumns(header)
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	products := []domain.Product{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id := field("id")
		if id == "" || !isActive(field("active")) {
			continue
		}

		price, err := parseDecimal(field("price"))
		if err != nil {
			log.WithFields(logrus.Fields{"line": line, "id": id}).WithError(err).Warn("skipping product with invalid price")
			continue
		}
		volume, err := parseDecimal(field("volume"))
		if err != nil {
			log.WithFields(logrus.Fields{"line": line, "id": id}).WithError(err).Warn("skipping product with invalid volume")
			continue
		}
		order, _ := strconv.Atoi(field("order"))

		products = append(products, domain.Product{
			ID:          id,
			Name:        field("name"),
			CategoryID:  field("category"),
			UnitLabel:   field("unit"),
			Price:       price,
			Volume:      volume,
			Image:       field("image"),
			Description: field("description"),
			Order:       order,
		})
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Order < products[j].Order
	})

	return &domain.Catalog{
		Categories: categoriesOf(products),
		Products:   products,
		Source:     SourceSheet,
	}, nil
}

func indexColumns(header []string) map[string]int {
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
		if _, dup := normalized[key]; !dup {
			normalized[key] = i
		}
	}

	idx := make(map[string]int, len(columns))
	for name, aliases := range columns {
		for _, alias := range aliases {
			if i, ok := normalized[alias]; ok {
				idx[name] = i
				break
			}
		}
	}
	return idx
}

func isActive(v string) bool {
	switch strings.ToLower(v) {
	case "no", "false":
		return false
	}
	return true
}

// parseDecimal accepts both "12.50" and "12,50". Empty means zero.
func parseDecimal(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.Replace(v, ",", ".", 1))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative value %q", v)
	}
	return d, nil
}

func categoriesOf(products []domain.Product) []domain.Category {
	seen := map[string]bool{}
	categories := []domain.Category{}
	for _, p := range products {
		if p.CategoryID == "" || seen[p.CategoryID] {
			continue
		}
		seen[p.CategoryID] = true
		categories = append(categories, domain.Category{ID: p.CategoryID, Name: p.CategoryID})
	}
	return categories
}

package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Marshallsbest/OrderSystem/internal/usecase"
)

// ImportReport summarizes one workbook import.
type ImportReport struct {
	RowsRead   int      `json:"rowsRead"`
	Added      int      `json:"added"`
	Skipped    int      `json:"skipped"`
	Normalized bool     `json:"normalized"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Importer turns an uploaded supplier workbook into catalog rows. The
// optional assistant pass normalizes free-form product names before
// the batch is appended.
type Importer struct {
	Catalog *usecase.CatalogUC
	AI      *openai.Client
}

func NewImporter(catalog *usecase.CatalogUC, apiKey string) *Importer {
	imp := &Importer{Catalog: catalog}
	if apiKey != "" {
		imp.AI = openai.NewClient(apiKey)
	}
	return imp
}

// ImportWorkbook reads the first sheet of an .xlsx stream. Columns are
// matched with the same alias rules as the catalog sheet, so supplier
// files with reasonable headers import without remapping.
func (imp *Importer) ImportWorkbook(ctx context.Context, r io.Reader, useAssist bool) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return &ImportReport{}, nil
	}

	hm := usecase.ResolveHeaderMap(rows[0])
	report := &ImportReport{RowsRead: len(rows) - 1}

	items := []usecase.NewProduct{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(hm.Cell(row, "name"))
		sku := strings.TrimSpace(hm.Cell(row, "sku"))
		if name == "" && sku == "" {
			report.Skipped++
			continue
		}
		price, perr := decimal.NewFromString(strings.Trim(strings.TrimSpace(hm.Cell(row, "price")), "$ "))
		if perr != nil {
			price = decimal.Zero
		}
		items = append(items, usecase.NewProduct{
			SKU:        sku,
			Ref:        strings.TrimSpace(hm.Cell(row, "ref")),
			Name:       name,
			Brand:      strings.TrimSpace(hm.Cell(row, "brand")),
			Category:   strings.TrimSpace(hm.Cell(row, "category")),
			Variation:  strings.TrimSpace(hm.Cell(row, "variation")),
			Variation2: strings.TrimSpace(hm.Cell(row, "variation2")),
			Price:      price,
			Inventory:  strings.TrimSpace(hm.Cell(row, "inventory")),
		})
	}

	if useAssist && imp.AI != nil {
		normalized, err := imp.normalize(ctx, items)
		if err != nil {
			log.Warn().Err(err).Msg("import normalization failed, using raw rows")
			report.Warnings = append(report.Warnings, "normalization failed: "+err.Error())
		} else {
			items = normalized
			report.Normalized = true
		}
	}

	added, err := imp.Catalog.AddProductBatch(ctx, items)
	if err != nil {
		return nil, err
	}
	report.Added = added
	report.Skipped = report.RowsRead - len(items)
	return report, nil
}

const normalizeBatchSize = 50

// normalize sends raw rows through the chat model in batches and maps
// cleaned names, brands and variations back by SKU or position.
func (imp *Importer) normalize(ctx context.Context, items []usecase.NewProduct) ([]usecase.NewProduct, error) {
	out := append([]usecase.NewProduct(nil), items...)

	for start := 0; start < len(out); start += normalizeBatchSize {
		end := start + normalizeBatchSize
		if end > len(out) {
			end = len(out)
		}
		batch := out[start:end]

		var lines []string
		for i, it := range batch {
			lines = append(lines, fmt.Sprintf("%d|%s|%s|%s", i, it.SKU, it.Name, it.Brand))
		}
		prompt := fmt.Sprintf(`Clean these product rows. For each input line "index|sku|name|brand"
return a JSON array of objects {"index":n,"name":"...","brand":"...","category":"...","variation":"..."}
with the product name normalized (brand removed from the name, size or strength moved into variation).
Return every index exactly once and nothing but the JSON array.

%s`, strings.Join(lines, "\n"))

		batchCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		resp, err := imp.AI.CreateChatCompletion(batchCtx, openai.ChatCompletionRequest{
			Model: openai.GPT4oMini,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: "You normalize wholesale product listings. Always return valid JSON."},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0,
			MaxTokens:   4000,
		})
		cancel()
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("empty completion")
		}

		content := resp.Choices[0].Message.Content
		content = strings.TrimPrefix(strings.TrimSpace(content), "```json")
		content = strings.Trim(strings.TrimSuffix(content, "```"), "` \n")

		var cleaned []struct {
			Index     int    `json:"index"`
			Name      string `json:"name"`
			Brand     string `json:"brand"`
			Category  string `json:"category"`
			Variation string `json:"variation"`
		}
		if err := json.Unmarshal([]byte(content), &cleaned); err != nil {
			return nil, fmt.Errorf("decode normalized batch: %w", err)
		}
		for _, c := range cleaned {
			if c.Index < 0 || c.Index >= len(batch) {
				continue
			}
			if c.Name != "" {
				batch[c.Index].Name = c.Name
			}
			if c.Brand != "" {
				batch[c.Index].Brand = c.Brand
			}
			if c.Category != "" {
				batch[c.Index].Category = c.Category
			}
			if c.Variation != "" && batch[c.Index].Variation == "" {
				batch[c.Index].Variation = c.Variation
			}
		}
		log.Info().Int("batch", start/normalizeBatchSize+1).Int("rows", len(batch)).Msg("import batch normalized")
	}
	return out, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

// DefaultLockWait bounds how long a commit waits for the ledger lock.
const DefaultLockWait = 30 * time.Second

// OrderUC owns the append-only order ledger. Commits are serialized by
// a single process-wide lock with a bounded wait; reads never take the
// lock. Invoice rendering runs after the append without the lock, so
// rendering work never serializes behind ledger writes.
type OrderUC struct {
	Grid     domain.Grid
	Catalog  *CatalogCache
	Clients  domain.ClientDirectory
	Renderer domain.InvoiceRenderer

	lock     *semaphore.Weighted
	lockWait time.Duration
}

func NewOrderUC(grid domain.Grid, catalog *CatalogCache, clients domain.ClientDirectory, renderer domain.InvoiceRenderer, lockWait time.Duration) *OrderUC {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &OrderUC{
		Grid:     grid,
		Catalog:  catalog,
		Clients:  clients,
		Renderer: renderer,
		lock:     semaphore.NewWeighted(1),
		lockWait: lockWait,
	}
}

// Commit prices the request against the current catalog snapshot and
// appends one ledger row under the exclusive lock. Edits of an existing
// invoice produce a Rev:N row with the same invoice id; the original
// row is never touched. The lock is released before the invoice
// artifact is rendered, so a slow render never blocks other commits.
func (uc *OrderUC) Commit(ctx context.Context, req domain.OrderRequest) (*domain.OrderRecord, error) {
	lockCtx, cancel := context.WithTimeout(ctx, uc.lockWait)
	defer cancel()
	if err := uc.lock.Acquire(lockCtx, 1); err != nil {
		return nil, domain.ErrBusy
	}
	rec, err := uc.commitLocked(ctx, req)
	uc.lock.Release(1)
	if err != nil {
		return nil, err
	}

	uc.renderArtifact(ctx, rec)
	return rec, nil
}

func (uc *OrderUC) commitLocked(ctx context.Context, req domain.OrderRequest) (*domain.OrderRecord, error) {
	client, err := uc.Clients.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("client %q: %w", req.ClientID, domain.ErrNotFound)
		}
		return nil, err
	}

	catalog, err := uc.Catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	bySKU := make(map[string]*domain.Product, len(catalog))
	for i := range catalog {
		if sku := strings.ToUpper(strings.TrimSpace(catalog[i].SKU)); sku != "" {
			if _, ok := bySKU[sku]; !ok {
				bySKU[sku] = &catalog[i]
			}
		}
	}

	var (
		items           []domain.LineItem
		totalAmount     = decimal.Zero
		totalCommission = decimal.Zero
		totalPieces     int
	)

	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			continue
		}
		product, ok := bySKU[strings.ToUpper(strings.TrimSpace(line.SKU))]
		if !ok {
			// Unknown SKUs are dropped from totals, not failed.
			log.Debug().Str("sku", line.SKU).Msg("order line skipped, sku not in catalog")
			continue
		}
		if !domain.ValidSKU(product.SKU) {
			log.Warn().Str("sku", product.SKU).Msg("order line skipped, sku unsafe for encoding")
			continue
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		units := decimal.NewFromInt(int64(product.UnitsPerCase))

		discounted := product.OnSale && product.SalePrice.IsPositive()
		price := product.Price
		rate := product.CommissionRate
		if discounted {
			price = product.SalePrice
			rate = product.SaleCommission
		}

		totalAmount = totalAmount.Add(price.Mul(qty))
		totalPieces += product.UnitsPerCase * line.Quantity
		totalCommission = totalCommission.Add(rate.Mul(qty).Mul(units))

		items = append(items, domain.LineItem{
			SKU:       product.SKU,
			Quantity:  line.Quantity,
			UnitPrice: price,
			WasOnSale: product.OnSale,
		})
	}

	if len(items) == 0 {
		return nil, domain.ErrValidation
	}

	label := domain.RevisionOriginal
	invoiceID := "ORD-" + strings.ToUpper(uuid.New().String()[:8])
	if req.EditOrderID != "" {
		base := domain.BaseInvoiceID(req.EditOrderID)
		maxRev, err := uc.maxRevision(ctx, base, req.EditOrderID)
		if err != nil {
			return nil, err
		}
		label = fmt.Sprintf("Rev:%d", maxRev+1)
		invoiceID = base
	}

	clientName := req.ClientName
	if clientName == "" {
		clientName = client.Name
	}
	if clientName == "" {
		clientName = "Unknown"
	}
	address := req.Address
	if address == "" {
		address = client.Address
	}

	rec := &domain.OrderRecord{
		RevisionLabel:   label,
		InvoiceID:       invoiceID,
		Timestamp:       time.Now(),
		TotalPieces:     totalPieces,
		TotalCommission: totalCommission,
		TotalAmount:     totalAmount,
		ClientName:      clientName,
		Comment:         req.Comment,
		Address:         address,
		Items:           items,
	}

	if err := uc.Grid.AppendRow(ctx, domain.SheetOrders, rec.Row()); err != nil {
		return nil, fmt.Errorf("append order row: %w", err)
	}

	log.Info().
		Str("invoice", rec.InvoiceID).
		Str("revision", rec.RevisionLabel).
		Int("lines", len(items)).
		Str("total", rec.TotalAmount.StringFixed(2)).
		Msg("order committed")

	return rec, nil
}

// renderArtifact produces the order document best-effort. Failures are
// logged and swallowed; they never alter the commit result.
func (uc *OrderUC) renderArtifact(ctx context.Context, rec *domain.OrderRecord) {
	if uc.Renderer == nil {
		return
	}
	url, err := uc.Renderer.Render(ctx, domain.Invoice{
		InvoiceID:     rec.InvoiceID,
		RevisionLabel: rec.RevisionLabel,
		ClientName:    rec.ClientName,
		Address:       rec.Address,
		Comment:       rec.Comment,
		Date:          rec.Timestamp,
		Total:         rec.TotalAmount,
		Items:         rec.Items,
	})
	if err != nil {
		log.Warn().Err(err).Str("invoice", rec.InvoiceID).Msg("invoice render failed")
		return
	}
	log.Debug().Str("invoice", rec.InvoiceID).Str("artifact", url).Msg("invoice rendered")
}

// maxRevision scans the ledger for the highest Rev:N already tied to
// the base invoice id.
func (uc *OrderUC) maxRevision(ctx context.Context, base, rawRef string) (int, error) {
	rows, err := uc.Grid.Rows(ctx, domain.SheetOrders)
	if err != nil {
		return 0, fmt.Errorf("scan revisions: %w", err)
	}
	maxRev := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) <= domain.ColInvoice {
			continue
		}
		invoice := strings.TrimSpace(row[domain.ColInvoice])
		if invoice != base && invoice != rawRef {
			continue
		}
		if n := domain.RevisionNumber(strings.TrimSpace(row[domain.ColRevision])); n > maxRev {
			maxRev = n
		}
	}
	return maxRev, nil
}

// GetByID finds one order row by invoice id, falling back to a scan of
// every cell when no invoice column matches. Undecodable item tokens
// are skipped.
func (uc *OrderUC) GetByID(ctx context.Context, id string) (*domain.OrderRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.Grid.Rows(ctx, domain.SheetOrders)
	if err != nil {
		return nil, err
	}

	var match []string
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) > domain.ColInvoice && strings.TrimSpace(row[domain.ColInvoice]) == id {
			match = row
			break
		}
	}
	if match == nil {
		for i := 1; i < len(rows); i++ {
			for _, cell := range rows[i] {
				if strings.TrimSpace(cell) == id {
					match = rows[i]
					break
				}
			}
			if match != nil {
				break
			}
		}
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}

	rec := decodeOrderRow(match)
	return &rec, nil
}

// GetByClient returns order records, optionally filtered by client name
// (case-insensitive), newest first. Malformed rows degrade instead of
// failing the listing.
func (uc *OrderUC) GetByClient(ctx context.Context, clientName string) ([]domain.OrderRecord, error) {
	rows, err := uc.Grid.Rows(ctx, domain.SheetOrders)
	if err != nil {
		log.Error().Err(err).Msg("order history scan failed")
		return []domain.OrderRecord{}, nil
	}

	filter := strings.ToLower(strings.TrimSpace(clientName))
	out := []domain.OrderRecord{}
	for i := 1; i < len(rows); i++ {
		rec := decodeOrderRow(rows[i])
		if rec.InvoiceID == "" && rec.ClientName == "" && rec.TotalAmount.IsZero() {
			continue
		}
		if filter != "" && strings.ToLower(rec.ClientName) != filter {
			continue
		}
		if rec.InvoiceID == "" {
			rec.InvoiceID = fmt.Sprintf("ROW-%d", i+1)
		}
		if rec.ClientName == "" {
			rec.ClientName = "Unknown"
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.After(out[b].Timestamp)
	})
	return out, nil
}

// decodeOrderRow rebuilds a record from a ledger row, parsing numeric
// and date cells defensively and skipping undecodable item tokens.
func decodeOrderRow(row []string) domain.OrderRecord {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	pieces, _ := strconv.Atoi(cell(domain.ColTotalPieces))

	rec := domain.OrderRecord{
		RevisionLabel:   cell(domain.ColRevision),
		InvoiceID:       cell(domain.ColInvoice),
		Timestamp:       parseTimestamp(cell(domain.ColTimestamp)),
		TotalPieces:     pieces,
		TotalCommission: parseMoney(cell(domain.ColTotalCommission), decimal.Zero),
		TotalAmount:     parseMoney(cell(domain.ColTotalAmount), decimal.Zero),
		ClientName:      cell(domain.ColClient),
		Comment:         cell(domain.ColComment),
		Address:         cell(domain.ColAddress),
	}

	for i := domain.ColItemsStart; i < len(row); i++ {
		if item, ok := domain.ParseLineItemToken(row[i]); ok {
			rec.Items = append(rec.Items, item)
		}
	}
	return rec
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

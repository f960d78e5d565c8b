package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// superNormalize collapses a header label to lowercase alphanumerics
// and drops a trailing plural 's', so "Client IDs", "client_id" and
// "ClientID" all meet at "clientid".
func superNormalize(s string) string {
	s = nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSuffix(s, "s")
}

var defaultSections = []string{"A", "B", "C", "D"}

// ClientUC reads the client directory sheet. The sheet carries two
// header rows: row 2 is authoritative, row 1 wins only for the
// SECTION_* permission columns whose second-row cells hold group
// labels instead of names.
type ClientUC struct {
	Grid domain.Grid
}

func NewClientUC(grid domain.Grid) *ClientUC {
	return &ClientUC{Grid: grid}
}

type clientColumns struct {
	id       int
	name     int
	address  int
	sections map[string]int
	headers  []string
}

func resolveClientColumns(rows [][]string) clientColumns {
	cols := clientColumns{id: -1, name: -1, address: -1, sections: map[string]int{}}
	if len(rows) < 2 {
		return cols
	}
	row1, row2 := rows[0], rows[1]

	width := len(row2)
	if len(row1) > width {
		width = len(row1)
	}
	cols.headers = make([]string, width)
	for i := 0; i < width; i++ {
		top := ""
		if i < len(row1) {
			top = strings.TrimSpace(row1[i])
		}
		label := ""
		if i < len(row2) {
			label = strings.TrimSpace(row2[i])
		}
		if upper := strings.ToUpper(top); strings.HasPrefix(upper, "SECTION") {
			label = top
			suffix := strings.TrimLeft(strings.TrimPrefix(upper, "SECTION"), "_ -")
			if suffix != "" {
				cols.sections[suffix[:1]] = i
			}
		}
		cols.headers[i] = label

		switch superNormalize(label) {
		case "clientid", "id", "customerid", "accountid":
			if cols.id < 0 {
				cols.id = i
			}
		case "companyname", "name", "client", "clientname", "company", "customer":
			if cols.name < 0 {
				cols.name = i
			}
		case "addres", "shippingaddres", "deliveryaddres", "location":
			if cols.address < 0 {
				cols.address = i
			}
		}
	}
	return cols
}

func (uc *ClientUC) load(ctx context.Context) ([]domain.Client, error) {
	rows, err := uc.Grid.Rows(ctx, domain.SheetClients)
	if err != nil {
		return nil, fmt.Errorf("read client sheet: %w", err)
	}
	cols := resolveClientColumns(rows)
	if cols.id < 0 {
		log.Warn().Msg("client sheet has no recognizable id column")
		return []domain.Client{}, nil
	}

	cell := func(row []string, idx int) string {
		if idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []domain.Client{}
	for i := 2; i < len(rows); i++ {
		row := rows[i]
		id := cell(row, cols.id)
		if id == "" {
			continue
		}
		c := domain.Client{
			ID:      id,
			Name:    cell(row, cols.name),
			Address: cell(row, cols.address),
			Fields:  map[string]string{},
		}
		for j, label := range cols.headers {
			if label == "" {
				continue
			}
			if v := cell(row, j); v != "" {
				c.Fields[label] = v
			}
		}
		for _, sec := range defaultSections {
			if idx, ok := cols.sections[sec]; ok && isTruthy(cell(row, idx)) {
				c.AllowedSections = append(c.AllowedSections, sec)
			}
		}
		// only explicitly granted sections count; a client with none
		// falls back to full access
		if len(c.AllowedSections) == 0 {
			c.AllowedSections = append([]string(nil), defaultSections...)
		}
		out = append(out, c)
	}
	return out, nil
}

func (uc *ClientUC) List(ctx context.Context) ([]domain.Client, error) {
	return uc.load(ctx)
}

func (uc *ClientUC) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	clients, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if strings.EqualFold(clients[i].ID, id) {
			return &clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marshallsbest/OrderSystem/internal/adapters/grid/memgrid"
	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

func seedClientSheet(rows [][]string) *ClientUC {
	store := memgrid.New()
	store.Seed(domain.SheetClients, rows)
	return NewClientUC(store)
}

func TestSuperNormalize(t *testing.T) {
	assert.Equal(t, "clientid", superNormalize("Client ID"))
	assert.Equal(t, "clientid", superNormalize("client_ids"))
	assert.Equal(t, "clientid", superNormalize("CLIENT-ID"))
	assert.Equal(t, "companyname", superNormalize("Company Names"))
	assert.Equal(t, "", superNormalize("  "))
}

func TestClientList(t *testing.T) {
	uc := seedClientSheet([][]string{
		{"", "", "", "SECTION_A", "SECTION_B", "SECTION_C", "SECTION_D"},
		{"Client IDs", "Company Name", "Shipping Address", "A", "B", "C", "D"},
		{"C-1", "Corner Store", "12 Bay Rd", "TRUE", "", "1", ""},
		{"C-2", "Main St Deli", "1 Main St", "", "", "", ""},
		{"", "orphan row without id", "", "", "", "", ""},
	})

	clients, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)

	c1 := clients[0]
	assert.Equal(t, "C-1", c1.ID)
	assert.Equal(t, "Corner Store", c1.Name)
	assert.Equal(t, "12 Bay Rd", c1.Address)
	assert.Equal(t, []string{"A", "C"}, c1.AllowedSections)

	// explicit section columns all blank means no access was granted,
	// so the defaults kick in
	c2 := clients[1]
	assert.Equal(t, []string{"A", "B", "C", "D"}, c2.AllowedSections)
}

func TestClientSectionsDefaultWhenColumnsMissing(t *testing.T) {
	uc := seedClientSheet([][]string{
		{"", ""},
		{"Client ID", "Name"},
		{"C-9", "No Sections Shop"},
	})

	client, err := uc.GetByID(context.Background(), "C-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, client.AllowedSections)
}

func TestClientSectionsPartialColumns(t *testing.T) {
	uc := seedClientSheet([][]string{
		{"", "", "SECTION_A", "SECTION_B"},
		{"Client ID", "Name", "A", "B"},
		{"C-1", "Corner Store", "TRUE", ""},
		{"C-2", "Main St Deli", "", ""},
	})
	ctx := context.Background()

	// absent section columns grant nothing; only the explicit TRUE counts
	c1, err := uc.GetByID(ctx, "C-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, c1.AllowedSections)

	c2, err := uc.GetByID(ctx, "C-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, c2.AllowedSections)
}

func TestClientGetByID(t *testing.T) {
	uc := seedClientSheet([][]string{
		{"", "", ""},
		{"Client ID", "Company Name", "Address"},
		{"C-1", "Corner Store", "12 Bay Rd"},
	})
	ctx := context.Background()

	client, err := uc.GetByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Corner Store", client.Name)

	_, err = uc.GetByID(ctx, "C-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetByID(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientExtraFieldsPreserved(t *testing.T) {
	uc := seedClientSheet([][]string{
		{"", "", "", ""},
		{"Client ID", "Company Name", "Phone", "Rep"},
		{"C-1", "Corner Store", "555-0101", "Dana"},
	})

	client, err := uc.GetByID(context.Background(), "C-1")
	require.NoError(t, err)
	assert.Equal(t, "555-0101", client.Fields["Phone"])
	assert.Equal(t, "Dana", client.Fields["Rep"])
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Marshallsbest/OrderSystem/internal/adapters/grid/memgrid"
	"github.com/Marshallsbest/OrderSystem/internal/adapters/grid/postgresgrid"
	"github.com/Marshallsbest/OrderSystem/internal/adapters/grid/xlsxgrid"
	"github.com/Marshallsbest/OrderSystem/internal/adapters/httpserver"
	"github.com/Marshallsbest/OrderSystem/internal/adapters/render"
	"github.com/Marshallsbest/OrderSystem/internal/adapters/scraper"
	"github.com/Marshallsbest/OrderSystem/internal/domain"
	"github.com/Marshallsbest/OrderSystem/internal/usecase"
)

type App struct {
	Grid        domain.Grid
	CatalogUC   *usecase.CatalogUC
	OrderUC     *usecase.OrderUC
	ClientUC    *usecase.ClientUC
	AnalyticsUC *usecase.AnalyticsUC
	OAuthConfig *oauth2.Config

	importer *httpserver.Importer
	images   *scraper.ImageScraper
	closeFn  func() error
}

func NewApp() (*App, error) {
	grid, closeFn, err := openGrid()
	if err != nil {
		return nil, err
	}

	ttl := envInt("CATALOG_TTL_SECONDS", 300)
	lockWait := time.Duration(envInt("ORDER_LOCK_TIMEOUT_MS", 30_000)) * time.Millisecond

	artifactDir := os.Getenv("ARTIFACT_DIR")
	if artifactDir == "" {
		artifactDir = "artifacts"
	}
	renderer, err := render.NewHTMLRenderer(artifactDir)
	if err != nil {
		return nil, err
	}

	catalogUC := usecase.NewCatalogUC(grid, ttl)
	clientUC := usecase.NewClientUC(grid)
	orderUC := usecase.NewOrderUC(grid, catalogUC.Cache, clientUC, renderer, lockWait)
	analyticsUC := usecase.NewAnalyticsUC(orderUC)

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	app := &App{
		Grid:        grid,
		CatalogUC:   catalogUC,
		OrderUC:     orderUC,
		ClientUC:    clientUC,
		AnalyticsUC: analyticsUC,
		OAuthConfig: oauthCfg,
		importer:    httpserver.NewImporter(catalogUC, os.Getenv("OPENAI_API_KEY")),
		images:      scraper.NewImageScraper(),
		closeFn:     closeFn,
	}

	app.checkLedgerHeaders()
	return app, nil
}

func openGrid() (domain.Grid, func() error, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("GRID_BACKEND")))
	switch backend {
	case "", "xlsx":
		path := os.Getenv("WORKBOOK_PATH")
		if path == "" {
			path = "ordersystem.xlsx"
		}
		wb, err := xlsxgrid.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("xlsx grid: %w", err)
		}
		log.Info().Str("backend", "xlsx").Str("path", path).Msg("grid opened")
		return wb, wb.Close, nil
	case "postgres":
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			dsn = buildDSN()
		}
		store, err := postgresgrid.Open(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres grid: %w", err)
		}
		log.Info().Str("backend", "postgres").Msg("grid opened")
		return store, func() error { return nil }, nil
	case "memory":
		log.Warn().Msg("in-memory grid selected, data is not persisted")
		store := memgrid.New()
		_ = store.AppendRow(context.Background(), domain.SheetOrders, domain.OrdersHeader)
		return store, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown GRID_BACKEND %q", backend)
	}
}

func buildDSN() string {
	host := envStr("DB_HOST", "localhost")
	port := envStr("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	if user == "" {
		user = envStr("POSTGRES_USER", "postgres")
	}
	pass := os.Getenv("DB_PASSWORD")
	if pass == "" {
		pass = envStr("POSTGRES_PASSWORD", "postgres")
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = envStr("POSTGRES_DB", "ordersystem")
	}
	ssl := envStr("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

// checkLedgerHeaders warns when the ledger header drifted from the
// expected layout. Log-only: a renamed column must never block boot.
func (a *App) checkLedgerHeaders() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := a.Grid.Rows(ctx, domain.SheetOrders)
	if err != nil || len(rows) == 0 {
		log.Warn().Err(err).Msg("ledger header check skipped")
		return
	}
	header := rows[0]
	for i, want := range domain.OrdersHeader {
		got := ""
		if i < len(header) {
			got = strings.TrimSpace(header[i])
		}
		if !strings.EqualFold(got, want) {
			log.Warn().Int("column", i).Str("want", want).Str("got", got).Msg("ledger header mismatch")
		}
	}
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Catalog:   a.CatalogUC,
		Orders:    a.OrderUC,
		Clients:   a.ClientUC,
		Analytics: a.AnalyticsUC,
		Importer:  a.importer,
		Images:    a.images.SearchImages,
		OAuth:     a.OAuthConfig,
	})
}

func (a *App) Close() error {
	if a.closeFn != nil {
		return a.closeFn()
	}
	return nil
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Package httpserver exposes the catalog, ledger and directory over a
// JSON API plus the admin auth endpoints.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
	"github.com/Marshallsbest/OrderSystem/internal/usecase"
)

// ImageSearchFunc looks up candidate product image URLs.
type ImageSearchFunc func(ctx context.Context, productName, brand, category string, maxResults int) ([]string, error)

type Server struct {
	mux       *http.ServeMux
	catalog   *usecase.CatalogUC
	orders    *usecase.OrderUC
	clients   *usecase.ClientUC
	analytics *usecase.AnalyticsUC
	importer  *Importer
	images    ImageSearchFunc
	oauthCfg  *oauth2.Config

	adminAllowed map[string]struct{}
	adminSecret  []byte
}

type Deps struct {
	Catalog   *usecase.CatalogUC
	Orders    *usecase.OrderUC
	Clients   *usecase.ClientUC
	Analytics *usecase.AnalyticsUC
	Importer  *Importer
	Images    ImageSearchFunc
	OAuth     *oauth2.Config
}

func New(d Deps) http.Handler {
	s := &Server{
		mux:       http.NewServeMux(),
		catalog:   d.Catalog,
		orders:    d.Orders,
		clients:   d.Clients,
		analytics: d.Analytics,
		importer:  d.Importer,
		images:    d.Images,
		oauthCfg:  d.OAuth,
	}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed

	sec := os.Getenv("ADMIN_SECRET")
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/catalog", s.apiCatalog)
	s.mux.HandleFunc("/api/catalog/invalidate", s.apiCatalogInvalidate)

	s.mux.HandleFunc("/api/products", s.apiProductBatch)
	s.mux.HandleFunc("/api/products/group", s.apiProductGroup)
	s.mux.HandleFunc("/api/products/archive", s.apiProductArchive)
	s.mux.HandleFunc("/api/products/import", s.apiProductImport)
	s.mux.HandleFunc("/api/products/images", s.apiProductImages)

	s.mux.HandleFunc("/api/orders", s.apiOrders)
	s.mux.HandleFunc("/api/orders/", s.apiOrderByID)

	s.mux.HandleFunc("/api/clients", s.apiClients)
	s.mux.HandleFunc("/api/clients/", s.apiClientByID)

	s.mux.HandleFunc("/api/dashboard", s.apiDashboard)

	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found"})
	case errors.Is(err, domain.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "ledger_busy", "message": "another order is being saved, try again"})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "no_priceable_items"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	products, err := s.catalog.Catalog(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	section := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("section")))
	if clientID := strings.TrimSpace(r.URL.Query().Get("client")); clientID != "" && section != "" {
		client, err := s.clients.GetByID(r.Context(), clientID)
		if err != nil {
			writeErr(w, err)
			return
		}
		allowed := false
		for _, sec := range client.AllowedSections {
			if sec == section {
				allowed = true
				break
			}
		}
		if !allowed {
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "section_not_allowed"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

func (s *Server) apiCatalogInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	s.catalog.Cache.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) apiProductBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	var req struct {
		Items []usecase.NewProduct `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	added, err := s.catalog.AddProductBatch(r.Context(), req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"added": added})
}

func (s *Server) apiProductGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	var req struct {
		OriginalName string               `json:"originalName"`
		Base         usecase.GroupBase    `json:"base"`
		Variants     []usecase.NewProduct `json:"variants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	if strings.TrimSpace(req.OriginalName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "original_name_required"})
		return
	}
	updated, added, err := s.catalog.UpdateProductGroup(r.Context(), req.OriginalName, req.Base, req.Variants)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": updated, "added": added})
}

func (s *Server) apiProductArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	var req struct {
		SKUs []string `json:"skus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.SKUs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "skus_required"})
		return
	}
	archived, err := s.catalog.ArchiveProducts(r.Context(), req.SKUs)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": archived})
}

func (s *Server) apiProductImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	if s.importer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "import_disabled"})
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "multipart_required"})
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file_required"})
		return
	}
	defer f.Close()

	useAssist := strings.TrimSpace(r.FormValue("use_assist")) == "true"
	report, err := s.importer.ImportWorkbook(r.Context(), f, useAssist)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) apiProductImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	if s.images == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "image_search_disabled"})
		return
	}
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "name_required"})
		return
	}
	urls, err := s.images(r.Context(), name, q.Get("brand"), q.Get("category"), 6)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "search_failed", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": urls})
}

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req domain.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
			return
		}
		if strings.TrimSpace(req.ClientID) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "client_required"})
			return
		}
		rec, err := s.orders.Commit(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	case http.MethodGet:
		records, err := s.orders.GetByClient(r.Context(), r.URL.Query().Get("client"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": records, "total": len(records)})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiOrderByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	rec, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) apiClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	clients, err := s.clients.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": clients, "total": len(clients)})
}

func (s *Server) apiClientByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/clients/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	client, err := s.clients.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	report, err := s.analytics.WeeklyReport(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", http.StatusInternalServerError)
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		http.Error(w, "state", http.StatusBadRequest)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange failed")
		http.Error(w, "oauth", http.StatusBadRequest)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil || resp.StatusCode != http.StatusOK {
		log.Error().Err(err).Msg("oauth userinfo failed")
		http.Error(w, "userinfo", http.StatusBadRequest)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var info struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(body, &info)
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		http.Error(w, "email", http.StatusBadRequest)
		return
	}
	if _, ok := s.adminAllowed[email]; !ok {
		log.Warn().Str("email", email).Msg("admin login rejected")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	s.writeAdminSession(w, r, email)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "email": email})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_session", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

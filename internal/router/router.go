package router

import (
	"net/http"

	"comanda-pos/internal/handler"
	"comanda-pos/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	catalogHandler *handler.CatalogHandler,
	tabHandler *handler.TabHandler,
	reportHandler *handler.ReportHandler,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue routes
	mux.HandleFunc("GET /api/categories", catalogHandler.ListCategories)
	mux.HandleFunc("POST /api/categories", catalogHandler.CreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", catalogHandler.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", catalogHandler.DeleteCategory)

	mux.HandleFunc("GET /api/products", catalogHandler.ListProducts)
	mux.HandleFunc("POST /api/products", catalogHandler.CreateProduct)
	mux.HandleFunc("GET /api/products/{id}", catalogHandler.GetProduct)
	mux.HandleFunc("PUT /api/products/{id}", catalogHandler.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", catalogHandler.DeleteProduct)

	// Order ledger routes. "open" is a literal segment, so it wins over the
	// {id} wildcard for GET /api/tabs/open.
	mux.HandleFunc("GET /api/tabs/open", tabHandler.ListOpen)
	mux.HandleFunc("POST /api/tabs", tabHandler.Open)
	mux.HandleFunc("GET /api/tabs/{id}", tabHandler.Detail)
	mux.HandleFunc("DELETE /api/tabs/{id}", tabHandler.Delete)
	mux.HandleFunc("POST /api/tabs/{id}/items", tabHandler.AddItem)
	mux.HandleFunc("DELETE /api/tabs/{id}/items/{itemId}", tabHandler.RemoveItem)
	mux.HandleFunc("PUT /api/tabs/{id}/close", tabHandler.Close)
	mux.HandleFunc("PUT /api/tabs/{id}/reopen", tabHandler.Reopen)

	// Reporting routes
	mux.HandleFunc("GET /api/reports/revenue", reportHandler.Revenue)
	mux.HandleFunc("GET /api/reports/closed-tabs", reportHandler.ClosedTabs)
	mux.HandleFunc("GET /api/reports/top-products", reportHandler.TopProducts)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brosora6/sora-sub000/internal/config"
	"github.com/brosora6/sora-sub000/internal/http/handlers"
	"github.com/brosora6/sora-sub000/internal/middleware"
	"github.com/brosora6/sora-sub000/internal/storage"
	"github.com/brosora6/sora-sub000/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, store storage.Store, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Csrf-Token",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{DB: db, Logger: logger, Config: cfg, Store: store}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/menus", h.ListMenus)
		r.Get("/menus/{id}", h.GetMenu)
		r.Get("/categories", h.ListCategories)

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/forgot-password", h.ForgotPassword)
		r.Post("/auth/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CustomerAuth(db, cfg))

			r.Post("/auth/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/profile/photo", h.UploadProfilePhoto)

			r.Get("/bank-accounts", h.ListActiveBankAccounts)

			r.Get("/carts", h.ListCartItems)
			r.Post("/carts", h.AddCartItem)
			r.Put("/carts/{id}", h.UpdateCartItem)
			r.Delete("/carts/{id}", h.DeleteCartItem)

			r.Get("/payments", h.ListPayments)
			r.Post("/payments", h.Checkout)
			r.Get("/payments/{id}", h.GetPayment)

			r.Get("/reservations", h.ListReservations)
			r.Post("/reservations", h.CreateReservation)
			r.Put("/reservations/{id}", h.UpdateReservation)
			r.Delete("/reservations/{id}", h.DeleteReservation)
		})
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/auth/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BackofficeAuth(db, cfg, middleware.AdminCookie, false))

			r.Post("/auth/logout", h.AdminLogout)
			mountBackofficeRoutes(r, h)
		})
	})

	r.Route("/superadmin/api", func(r chi.Router) {
		r.Post("/auth/login", h.SuperAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BackofficeAuth(db, cfg, middleware.SuperAdminCookie, true))

			r.Post("/auth/logout", h.SuperAdminLogout)
			mountBackofficeRoutes(r, h)

			r.Get("/admins", h.AdminAccountsList)
			r.Post("/admins", h.AdminAccountsCreate)
			r.Put("/admins/{id}", h.AdminAccountsUpdate)
			r.Delete("/admins/{id}", h.AdminAccountsDelete)

			r.Get("/whatsapp-numbers", h.AdminWhatsAppNumbersList)
			r.Post("/whatsapp-numbers", h.AdminWhatsAppNumbersCreate)
			r.Put("/whatsapp-numbers/{id}", h.AdminWhatsAppNumbersUpdate)
			r.Delete("/whatsapp-numbers/{id}", h.AdminWhatsAppNumbersDelete)

			r.Delete("/customers/{id}", h.AdminCustomersDelete)
		})
	})

	if wsServer != nil {
		r.Get("/ws/payments", wsServer.PaymentWS)
	}

	if !cfg.ObjectStoreEnabled() {
		fileServer := http.StripPrefix("/store/", http.FileServer(http.Dir(cfg.StoreDir)))
		r.Get("/store/*", func(w http.ResponseWriter, r *http.Request) {
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}

// mountBackofficeRoutes registers the resource routes shared by the admin
// and superadmin surfaces. Capability checks inside the handlers decide what
// each role may actually do.
func mountBackofficeRoutes(r chi.Router, h *handlers.Handler) {
	r.Get("/menus", h.AdminMenusList)
	r.Post("/menus", h.AdminMenusCreate)
	r.Put("/menus/{id}", h.AdminMenusUpdate)
	r.Post("/menus/{id}/image", h.AdminMenusUploadImage)
	r.Delete("/menus/{id}", h.AdminMenusDelete)

	r.Get("/categories", h.AdminCategoriesList)
	r.Post("/categories", h.AdminCategoriesCreate)
	r.Put("/categories/{id}", h.AdminCategoriesUpdate)
	r.Delete("/categories/{id}", h.AdminCategoriesDelete)

	r.Get("/carts", h.AdminCartsList)
	r.Delete("/carts/{id}", h.AdminCartsDelete)
	r.Post("/carts/bulk-delete", h.AdminCartsBulkDelete)

	r.Get("/payments", h.AdminPaymentsList)
	r.Get("/payments/{id}", h.AdminPaymentsDetail)
	r.Patch("/payments/{id}/status", h.AdminPaymentsUpdateStatus)
	r.Put("/payments/{id}/items", h.AdminPaymentsRebuildItems)
	r.Get("/payments/{id}/receipt", h.AdminPaymentReceiptPDF)

	r.Get("/reservations", h.AdminReservationsList)
	r.Put("/reservations/{id}/decision", h.AdminReservationsDecide)
	r.Put("/reservations/{id}/contact", h.AdminReservationsAssignContact)

	r.Get("/bank-accounts", h.AdminBankAccountsList)
	r.Post("/bank-accounts", h.AdminBankAccountsCreate)
	r.Put("/bank-accounts/{id}", h.AdminBankAccountsUpdate)
	r.Post("/bank-accounts/{id}/activate", h.AdminBankAccountsActivate)
	r.Delete("/bank-accounts/{id}", h.AdminBankAccountsDelete)

	r.Get("/customers", h.AdminCustomersList)
	r.Get("/customers/{id}", h.AdminCustomersDetail)
	r.Patch("/customers/{id}/active", h.AdminCustomersSetActive)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

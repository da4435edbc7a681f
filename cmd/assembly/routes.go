package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	adminget "ev-assembly/http-server/admin/get"
	adminsave "ev-assembly/http-server/admin/save"
	adminupdate "ev-assembly/http-server/admin/update"
	generate_excel "ev-assembly/http-server/generate-report/generate-excel"
	orderget "ev-assembly/http-server/order/get"
	orderremove "ev-assembly/http-server/order/remove"
	ordersave "ev-assembly/http-server/order/save"
	orderupdate "ev-assembly/http-server/order/update"
	registrationget "ev-assembly/http-server/registration/get"
	registrationremove "ev-assembly/http-server/registration/remove"
	registrationsave "ev-assembly/http-server/registration/save"
	registrationupdate "ev-assembly/http-server/registration/update"
	reportget "ev-assembly/http-server/report/get"
	shiftget "ev-assembly/http-server/shift/get"
	shiftsave "ev-assembly/http-server/shift/save"
	shiftupdate "ev-assembly/http-server/shift/update"
	"ev-assembly/internal/config"
	"ev-assembly/internal/middleware/auth"
	"ev-assembly/internal/service/orderprogress"
	"ev-assembly/internal/service/registration"
	"ev-assembly/internal/service/report"
	"ev-assembly/internal/service/shift"
	"ev-assembly/internal/storage/mysql"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *mysql.Storage,
	registrations *registration.Service,
	shifts *shift.Service,
	progress *orderprogress.Service,
	reports *report.Service,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Worker-Code"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		// worker area, identified by X-Worker-Code
		r.Group(func(r chi.Router) {
			r.Use(auth.Identify(log, storage))

			r.Get("/registrations/current-order", registrationget.CurrentOrderBoard(log, storage))
			r.Get("/registrations/today", registrationget.Today(log, storage))
			r.Post("/registrations", registrationsave.SaveRegistration(log, registrations))
			r.Put("/registrations/{id}/complete", registrationupdate.CompleteRegistration(log, registrations))
			r.Delete("/registrations/{id}", registrationremove.DeleteRegistration(log, registrations))

			r.Post("/shifts", shiftsave.StartShift(log, shifts))
			r.Put("/shifts/end", shiftupdate.EndShift(log, shifts))
			r.Get("/shifts/current", shiftget.CurrentShift(log, shifts))
			r.Get("/shifts/history", shiftget.ShiftHistory(log, shifts))

			r.Get("/reports/daily", reportget.DailyReport(log, reports))

			r.Get("/orders", orderget.Orders(log, storage))
			r.Get("/orders/active", orderget.ActiveOrder(log, storage))
			r.Get("/orders/{id}", orderget.Order(log, storage))
			r.Get("/orders/{id}/progress", orderget.Progress(log, progress))
		})

		// supervisor area behind basic auth, identified the same way
		// so adjustments and checks carry the admin's user id
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
			r.Use(auth.Identify(log, storage))

			r.Get("/registrations", adminget.Registrations(log, storage))
			r.Post("/registrations", adminsave.ReassignWorker(log, registrations))
			r.Put("/registrations/{id}/adjust", adminupdate.AdjustRegistration(log, registrations))

			r.Post("/orders", ordersave.SaveOrder(log, storage))
			r.Put("/orders/{id}", orderupdate.UpdateOrder(log, storage))
			r.Put("/orders/{id}/status", orderupdate.UpdateOrderStatus(log, progress))
			r.Post("/orders/{id}/complete", orderupdate.CompleteOrder(log, progress))
			r.Get("/orders/{id}/check-completion", orderget.CheckCompletion(log, progress))
			r.Get("/orders/{id}/report", orderget.Report(log, reports))
			r.Delete("/orders/{id}", orderremove.DeleteOrder(log, storage))

			r.Get("/reports/workers", reportget.WorkerReports(log, reports))
			r.Get("/report/excel", generate_excel.GenerateOrderExcel(log, reports))
		})
	})

	return router
}

package web

import "net/http"

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/schedule", handleSchedule)
	mux.HandleFunc("/follow-ups", handleFollowUps)
	mux.HandleFunc("/athletes", handleAthletes)
	mux.HandleFunc("/athletes/plan", handleRehabPlan)
	mux.HandleFunc("/athletes/plan.xlsx", handleRehabPlanWorkbook)
	mux.HandleFunc("/injuries", handleInjuries)
	mux.HandleFunc("/dashboard", handleDashboard)
	mux.HandleFunc("/csrf", handleCSRFToken)
	mux.HandleFunc("/healthz", handleHealth)

	// Admin
	mux.HandleFunc("/admin/perf", handleAdminPerf)
	mux.HandleFunc("/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/admin/outbox/", handleAdminOutbox)
}

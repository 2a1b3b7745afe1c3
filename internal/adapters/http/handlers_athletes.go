package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"sagra/internal/adapters/export"
	"sagra/internal/application/orchestrators"
	"sagra/internal/application/projections"
	"sagra/internal/domain/athlete"
	"sagra/internal/domain/injury"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type athleteJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BirthDate   string `json:"birth_date,omitempty"`
	Position    string `json:"position,omitempty"`
	Club        string `json:"club,omitempty"`
	SurgeryDate string `json:"surgery_date,omitempty"`
}

func newAthleteJSON(a athlete.Athlete) athleteJSON {
	return athleteJSON{
		ID:          a.ID,
		Name:        a.Name,
		BirthDate:   formatDate(a.BirthDate),
		Position:    a.Position,
		Club:        a.Club,
		SurgeryDate: formatDate(a.SurgeryDate),
	}
}

type injuryJSON struct {
	ID          string `json:"id"`
	AthleteID   string `json:"athlete_id"`
	Type        string `json:"type"`
	InjuryDate  string `json:"injury_date"`
	SurgeryDate string `json:"surgery_date,omitempty"`
	Notes       string `json:"notes,omitempty"`
	NotesHTML   string `json:"notes_html,omitempty"`
}

func newInjuryJSON(i injury.Injury, notesHTML string) injuryJSON {
	return injuryJSON{
		ID:          i.ID,
		AthleteID:   i.AthleteID,
		Type:        i.Type,
		InjuryDate:  formatDate(i.InjuryDate),
		SurgeryDate: formatDate(i.SurgeryDate),
		Notes:       i.Notes,
		NotesHTML:   notesHTML,
	}
}

// redirectToPlan sends browser form posts to the athlete's plan.
func redirectToPlan(w http.ResponseWriter, r *http.Request, athleteID string) {
	http.Redirect(w, r, "/athletes/plan?id="+url.QueryEscape(athleteID), http.StatusSeeOther)
}

type followUpRequest struct {
	AthleteName string `json:"athlete_name"`
	SurgeryDate string `json:"surgery_date"`
}

type followUpResponse struct {
	AthleteID          string           `json:"athlete_id"`
	CurrentPhase       string           `json:"current_phase"`
	NotificationQueued bool             `json:"notification_queued"`
	Schedule           scheduleResponse `json:"schedule"`
}

// handleFollowUps handles POST /follow-ups ("Novo Acompanhamento").
func handleFollowUps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req followUpRequest
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		req.AthleteName = r.FormValue("athlete_name")
		req.SurgeryDate = r.FormValue("surgery_date")
	} else if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	surgery, err := parseDate(req.SurgeryDate)
	if err != nil {
		writeError(w, err)
		return
	}
	if surgery.IsZero() {
		http.Error(w, "surgery_date is required", http.StatusBadRequest)
		return
	}

	deps := orchestrators.StartFollowUpDeps{
		AthleteStore:  stores.AthleteStore,
		PhaseStore:    stores.PhaseStore,
		ProgressStore: stores.ProgressStore,
		OutboxStore:   stores.OutboxStore,
		NotifyEmail:   notifyEmail,
		Now:           clinicNow,
		GenerateID:    generateID,
	}
	res, err := orchestrators.ExecuteStartFollowUp(ctx, orchestrators.StartFollowUpInput{
		AthleteName: req.AthleteName,
		SurgeryDate: surgery,
	}, deps)
	if err != nil {
		writeError(w, err)
		return
	}

	if isFormPost(r) && isHTMLRequest(r) {
		redirectToPlan(w, r, res.AthleteID)
		return
	}
	resp := followUpResponse{
		AthleteID:          res.AthleteID,
		NotificationQueued: res.NotificationQueued,
		Schedule:           newScheduleResponse(surgery, clinicNow(), res.Schedule),
	}
	if res.InPhase {
		resp.CurrentPhase = res.Current.Phase.Name
	}
	writeJSON(w, http.StatusCreated, resp)
}

type registerAthleteRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Position  string `json:"position"`
	Club      string `json:"club"`
}

type athleteListResponse struct {
	Athletes []athleteJSON `json:"athletes"`
	Total    int           `json:"total"`
}

// handleAthletes handles GET /athletes (list) and POST /athletes (register).
func handleAthletes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		result, err := projections.QueryGetAthleteList(ctx, projections.GetAthleteListQuery{Limit: limit, Offset: offset},
			projections.GetAthleteListDeps{AthleteStore: stores.AthleteStore})
		if err != nil {
			internalError(w, err)
			return
		}
		resp := athleteListResponse{Athletes: make([]athleteJSON, 0, len(result.Athletes)), Total: result.Total}
		for _, a := range result.Athletes {
			resp.Athletes = append(resp.Athletes, newAthleteJSON(a))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req registerAthleteRequest
		if isFormPost(r) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			req.Name = r.FormValue("name")
			req.BirthDate = r.FormValue("birth_date")
			req.Position = r.FormValue("position")
			req.Club = r.FormValue("club")
		} else if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		birth, err := parseDate(req.BirthDate)
		if err != nil {
			writeError(w, err)
			return
		}
		a, err := orchestrators.ExecuteRegisterAthlete(ctx, orchestrators.RegisterAthleteInput{
			Name:      req.Name,
			BirthDate: birth,
			Position:  req.Position,
			Club:      req.Club,
		}, orchestrators.RegisterAthleteDeps{AthleteStore: stores.AthleteStore, GenerateID: generateID})
		if err != nil {
			writeError(w, err)
			return
		}

		if isFormPost(r) && isHTMLRequest(r) {
			redirectToPlan(w, r, a.ID)
			return
		}
		writeJSON(w, http.StatusCreated, newAthleteJSON(a))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type registerInjuryRequest struct {
	AthleteID   string `json:"athlete_id"`
	Type        string `json:"type"`
	InjuryDate  string `json:"injury_date"`
	SurgeryDate string `json:"surgery_date"`
	Notes       string `json:"notes"`
}

// handleInjuries handles POST /injuries
func handleInjuries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerInjuryRequest
	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		req.AthleteID = r.FormValue("athlete_id")
		req.Type = r.FormValue("type")
		req.InjuryDate = r.FormValue("injury_date")
		req.SurgeryDate = r.FormValue("surgery_date")
		req.Notes = r.FormValue("notes")
	} else if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	injuryDate, err := parseDate(req.InjuryDate)
	if err != nil {
		writeError(w, err)
		return
	}
	surgeryDate, err := parseDate(req.SurgeryDate)
	if err != nil {
		writeError(w, err)
		return
	}

	inj, err := orchestrators.ExecuteRegisterInjury(ctx, orchestrators.RegisterInjuryInput{
		AthleteID:   req.AthleteID,
		Type:        req.Type,
		InjuryDate:  injuryDate,
		SurgeryDate: surgeryDate,
		Notes:       req.Notes,
	}, orchestrators.RegisterInjuryDeps{
		AthleteStore: stores.AthleteStore,
		InjuryStore:  stores.InjuryStore,
		GenerateID:   generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if isFormPost(r) && isHTMLRequest(r) {
		redirectToPlan(w, r, inj.AthleteID)
		return
	}
	writeJSON(w, http.StatusCreated, newInjuryJSON(inj, mdRenderer.Render(inj.Notes)))
}

type skillJSON struct {
	Skill string `json:"skill"`
	Level int    `json:"level"`
}

type progressJSON struct {
	Phase     string `json:"phase"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Status    string `json:"status"`
}

type planResponse struct {
	Athlete      athleteJSON               `json:"athlete"`
	Schedule     *scheduleResponse         `json:"schedule,omitempty"`
	StatusCounts []projections.StatusCount `json:"status_counts,omitempty"`
	Skills       []skillJSON               `json:"skills,omitempty"`
	Injuries     []injuryJSON              `json:"injuries"`
	Progress     []progressJSON            `json:"progress"`
}

func loadRehabPlan(r *http.Request) (projections.GetRehabPlanResult, error) {
	return projections.QueryGetRehabPlan(r.Context(), projections.GetRehabPlanQuery{AthleteID: r.URL.Query().Get("id")},
		projections.GetRehabPlanDeps{
			AthleteStore:  stores.AthleteStore,
			PhaseStore:    stores.PhaseStore,
			InjuryStore:   stores.InjuryStore,
			ProgressStore: stores.ProgressStore,
			Renderer:      mdRenderer,
			Now:           clinicNow,
		})
}

// handleRehabPlan handles GET /athletes/plan?id=
func handleRehabPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Get("id") == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	plan, err := loadRehabPlan(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := planResponse{
		Athlete:      newAthleteJSON(plan.Athlete),
		StatusCounts: plan.StatusCounts,
		Injuries:     make([]injuryJSON, 0, len(plan.Injuries)),
		Progress:     make([]progressJSON, 0, len(plan.Progress)),
	}
	if plan.Athlete.HasSurgery() {
		schedule := newScheduleResponse(plan.Athlete.SurgeryDate, plan.Today, plan.Schedule)
		resp.Schedule = &schedule
	}
	for _, s := range plan.Skills {
		resp.Skills = append(resp.Skills, skillJSON{Skill: s.Skill, Level: s.Level})
	}
	for _, inj := range plan.Injuries {
		resp.Injuries = append(resp.Injuries, newInjuryJSON(inj.Injury, inj.NotesHTML))
	}
	for _, p := range plan.Progress {
		resp.Progress = append(resp.Progress, progressJSON{
			Phase:     p.Phase,
			StartDate: formatDate(p.StartDate),
			EndDate:   formatDate(p.EndDate),
			Status:    p.Status,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRehabPlanWorkbook handles GET /athletes/plan.xlsx?id=
func handleRehabPlanWorkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Get("id") == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	plan, err := loadRehabPlan(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !plan.Athlete.HasSurgery() {
		http.Error(w, "athlete has no surgery on record", http.StatusNotFound)
		return
	}

	wb := export.Plan{
		AthleteName:       plan.Athlete.Name,
		SurgeryDate:       plan.Athlete.SurgeryDate,
		DischargeForecast: plan.DischargeForecast,
		PercentComplete:   plan.PercentComplete,
		CurrentWeek:       plan.CurrentWeek,
		Schedule:          plan.Schedule,
	}
	if plan.InPhase {
		wb.CurrentPhase = plan.Current.Phase.Name
	}
	data, err := export.PlanWorkbook(wb)
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "plano-"+plan.Athlete.ID+".xlsx"))
	w.Write(data)
}

type recentAthleteJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SurgeryDate string `json:"surgery_date"`
	InjuryType  string `json:"injury_type"`
}

type dashboardResponse struct {
	TotalAthletes  int                 `json:"total_athletes"`
	InTreatment    int                 `json:"in_treatment"`
	InjuryTypes    int                 `json:"injury_types"`
	RecentAthletes []recentAthleteJSON `json:"recent_athletes"`
}

// handleDashboard handles GET /dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardDeps{
		AthleteStore:  stores.AthleteStore,
		InjuryStore:   stores.InjuryStore,
		ProgressStore: stores.ProgressStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	resp := dashboardResponse{
		TotalAthletes:  result.TotalAthletes,
		InTreatment:    result.InTreatment,
		InjuryTypes:    result.InjuryTypes,
		RecentAthletes: make([]recentAthleteJSON, 0, len(result.RecentAthletes)),
	}
	for _, a := range result.RecentAthletes {
		resp.RecentAthletes = append(resp.RecentAthletes, recentAthleteJSON{
			ID:          a.ID,
			Name:        a.Name,
			SurgeryDate: formatDate(a.SurgeryDate),
			InjuryType:  a.InjuryType,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

package analysis

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/brightlight720720/ILD/internal/meeting"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type AnalyzeRequest struct {
	Patients []meeting.PatientCase `json:"patients"`
}

type AnalyzeResponse struct {
	Results []AnalysisResult `json:"results"`
	Errors  string           `json:"errors,omitempty"`
}

func (h *Handler) AnalyzePatients(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Patients) == 0 {
		http.Error(w, "At least one patient case is required", http.StatusBadRequest)
		return
	}
	for _, patient := range req.Patients {
		if patientID(patient) == "" {
			http.Error(w, "Every patient case must carry an id", http.StatusBadRequest)
			return
		}
	}

	results, err := h.svc.AnalyzePatients(r.Context(), req.Patients)

	// Per-patient failures are already folded into error-shaped results; the
	// aggregate error is reported alongside, not as an HTTP failure.
	resp := AnalyzeResponse{Results: results}
	if err != nil {
		resp.Errors = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Result)
}

func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec.Transcript)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Record, bool) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		http.Error(w, "Missing patient ID", http.StatusBadRequest)
		return nil, false
	}

	rec, err := h.svc.GetAnalysis(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
		} else {
			http.Error(w, "Lookup failed: "+err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return rec, true
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", h.AnalyzePatients)
		r.Get("/{patientID}", h.GetAnalysis)
		r.Get("/{patientID}/transcript", h.GetTranscript)
	})
}

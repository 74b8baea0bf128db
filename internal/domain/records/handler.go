package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lifetag-access/internal/domain/accessrequests"
	"lifetag-access/internal/middleware"
	"lifetag-access/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, accessSvc *accessrequests.Service) {
	r.Route("/patients/{patientID}/records", func(rr chi.Router) {
		rr.Post("/", addRecordHandler(svc, accessSvc))
		rr.Get("/", listRecordsHandler(svc, accessSvc))

		rr.Get("/{recordID}", getRecordHandler(svc, accessSvc))

		// Anular registro (solo el paciente dueño)
		rr.Post("/{recordID}/void", voidRecordHandler(svc))
	})
}

type addRecordRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	FileURL     string `json:"file_url"`
}

type recordResponse struct {
	ID             string       `json:"id"`
	PatientID      string       `json:"patient_id"`
	UploadedByID   string       `json:"uploaded_by_id"`
	UploadedByRole UploaderRole `json:"uploaded_by_role"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	FileName       string       `json:"file_name,omitempty"`
	ContentType    string       `json:"content_type,omitempty"`
	FileURL        string       `json:"file_url,omitempty"`
	Status         RecordStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	VoidedAt       *time.Time   `json:"voided_at,omitempty"`
}

// authorizeRecordAccess consulta el gate ANTES de devolver cualquier payload.
// Un false se reporta como forbidden genérico: no se distingue "nunca hubo
// grant" de "rechazado/revocado/vencido" para no filtrar historial.
func authorizeRecordAccess(w http.ResponseWriter, r *http.Request, accessSvc *accessrequests.Service, patientID string) (auth.Claims, UploaderRole, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, "", false
	}

	switch claims.Role {
	case auth.RolePatient:
		if claims.UserID != patientID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return auth.Claims{}, "", false
		}
		return claims, UploaderPatient, true

	case auth.RoleDoctor:
		granted, err := accessSvc.IsGranted(r.Context(), claims.UserID, patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return auth.Claims{}, "", false
		}
		if !granted {
			http.Error(w, "forbidden", http.StatusForbidden)
			return auth.Claims{}, "", false
		}
		return claims, UploaderDoctor, true

	default:
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, "", false
	}
}

// addRecordHandler godoc
// @Summary Agregar registro clínico
// @Description El paciente agrega a su propia historia. Un doctor necesita un grant aprobado y vigente.
// @Tags records
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body addRecordRequest true "metadata del registro"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / title required"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/records [post]
func addRecordHandler(svc *Service, accessSvc *accessrequests.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")

		claims, uploaderRole, ok := authorizeRecordAccess(w, r, accessSvc, patientID)
		if !ok {
			return
		}

		var req addRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Add(r.Context(), patientID, claims.UserID, uploaderRole, AddInput{
			Title:       req.Title,
			Description: req.Description,
			FileName:    req.FileName,
			ContentType: req.ContentType,
			FileURL:     req.FileURL,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// listRecordsHandler godoc
// @Summary Listar registros de un paciente
// @Description El paciente ve su historia; un doctor solo con grant vigente (el gate se consulta en cada fetch, no hay cache de autorización).
// @Tags records
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /patients/{patientID}/records [get]
func listRecordsHandler(svc *Service, accessSvc *accessrequests.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")

		if _, _, ok := authorizeRecordAccess(w, r, accessSvc, patientID); !ok {
			return
		}

		items, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getRecordHandler godoc
// @Summary Obtener un registro
// @Tags records
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param recordID path string true "ID del registro"
// @Success 200 {object} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /patients/{patientID}/records/{recordID} [get]
func getRecordHandler(svc *Service, accessSvc *accessrequests.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")

		if _, _, ok := authorizeRecordAccess(w, r, accessSvc, patientID); !ok {
			return
		}

		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil || rec.PatientID != patientID {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// voidRecordHandler godoc
// @Summary Anular un registro
// @Description Solo el paciente dueño. El registro queda voided, nunca se borra.
// @Tags records
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param recordID path string true "ID del registro"
// @Success 200 {object} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /patients/{patientID}/records/{recordID}/void [post]
func voidRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if claims.Role != auth.RolePatient || claims.UserID != patientID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		recordID := chi.URLParam(r, "recordID")
		rec, err := svc.GetByID(r.Context(), recordID)
		if err != nil || rec.PatientID != patientID {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		voided, err := svc.Void(r.Context(), recordID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(voided))
	}
}

func toRecordResponse(rec MedicalRecord) recordResponse {
	return recordResponse{
		ID:             rec.ID,
		PatientID:      rec.PatientID,
		UploadedByID:   rec.UploadedByID,
		UploadedByRole: rec.UploadedByRole,
		Title:          rec.Title,
		Description:    rec.Description,
		FileName:       rec.FileName,
		ContentType:    rec.ContentType,
		FileURL:        rec.FileURL,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
		VoidedAt:       rec.VoidedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

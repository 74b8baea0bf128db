package accessrequests

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lifetag-access/internal/middleware"
	"lifetag-access/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/access/requests", func(ar chi.Router) {
		ar.Post("/", submitRequestHandler(svc))
		ar.Get("/", listActiveRequestsHandler(svc))
		ar.Get("/history", listRequestHistoryHandler(svc))

		ar.Post("/{requestID}/respond", respondRequestHandler(svc))
		ar.Post("/{requestID}/revoke", revokeRequestHandler(svc))
	})
}

type submitRequest struct {
	PatientID string `json:"patient_id"`
	Notes     string `json:"notes"`
}

type respondRequest struct {
	Decision        Decision `json:"decision" enums:"approve,reject"`
	DurationMinutes int      `json:"duration_minutes"` // requerido si decision=approve
}

// accessRequestResponse expone el estado EFECTIVO, no el almacenado:
// un approved vencido sale como "expired" aunque el row diga approved.
type accessRequestResponse struct {
	ID          string     `json:"id"`
	DoctorID    string     `json:"doctor_id"`
	PatientID   string     `json:"patient_id"`
	Notes       string     `json:"notes,omitempty"`
	Status      Status     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// submitRequestHandler godoc
// @Summary Solicitar acceso a registros de un paciente
// @Description El doctor autenticado solicita acceso temporal a los registros del paciente. Falla con 409 si ya existe una solicitud activa (pendiente o aprobada vigente) para el par.
// @Tags access
// @Accept json
// @Produce json
// @Param payload body submitRequest true "paciente + notas opcionales"
// @Success 201 {object} accessRequestResponse
// @Failure 400 {string} string "invalid json / patient_id required"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Failure 409 {string} string "active request already exists"
// @Router /access/requests [post]
func submitRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireRole(w, r, auth.RoleDoctor)
		if !ok {
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.PatientID) == "" {
			http.Error(w, "patient_id required", http.StatusBadRequest)
			return
		}

		out, err := svc.Submit(r.Context(), claims.UserID, req.PatientID, req.Notes)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "patient not found", http.StatusNotFound)
			case errors.Is(err, ErrConflict):
				http.Error(w, "active request already exists", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, svc.toResponse(out))
	}
}

// respondRequestHandler godoc
// @Summary Responder una solicitud pendiente
// @Description El paciente referido aprueba o rechaza. En approve, duration_minutes define la vigencia (acotada por política). La transición es compare-and-set: si la solicitud ya no está pendiente responde 409.
// @Tags access
// @Accept json
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Param payload body respondRequest true "decisión"
// @Success 200 {object} accessRequestResponse
// @Failure 400 {string} string "invalid json / duración fuera de política"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "already responded"
// @Router /access/requests/{requestID}/respond [post]
func respondRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireRole(w, r, auth.RolePatient)
		if !ok {
			return
		}

		var req respondRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		requestID := chi.URLParam(r, "requestID")
		out, err := svc.Respond(r.Context(), claims.UserID, requestID, req.Decision, req.DurationMinutes)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, ErrConflict):
				http.Error(w, "already responded", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, svc.toResponse(out))
	}
}

// revokeRequestHandler godoc
// @Summary Revocar un grant aprobado
// @Description El paciente retira el acceso de inmediato. Sobre un grant ya vencido o revocado es no-op: responde 200 con el estado terminal actual.
// @Tags access
// @Produce json
// @Param requestID path string true "ID de la solicitud"
// @Success 200 {object} accessRequestResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "request is still pending"
// @Router /access/requests/{requestID}/revoke [post]
func revokeRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireRole(w, r, auth.RolePatient)
		if !ok {
			return
		}

		requestID := chi.URLParam(r, "requestID")
		out, err := svc.Revoke(r.Context(), claims.UserID, requestID)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, ErrConflict):
				http.Error(w, "request is still pending", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, svc.toResponse(out))
	}
}

// listActiveRequestsHandler godoc
// @Summary Listar solicitudes activas del caller
// @Description Solicitudes con estado efectivo pending o approved, del lado doctor o paciente según el rol del token. Pensado para polling; la frescura es cosmética, el gate es quien autoriza.
// @Tags access
// @Produce json
// @Success 200 {array} accessRequestResponse
// @Failure 401 {string} string "unauthorized"
// @Router /access/requests [get]
func listActiveRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListActive(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, svc.toResponseList(items))
	}
}

// listRequestHistoryHandler godoc
// @Summary Historial completo de solicitudes del caller
// @Tags access
// @Produce json
// @Success 200 {array} accessRequestResponse
// @Failure 401 {string} string "unauthorized"
// @Router /access/requests/history [get]
func listRequestHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListAll(r.Context(), claims.UserID, claims.Role)
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, svc.toResponseList(items))
	}
}

func (s *Service) toResponse(r AccessRequest) accessRequestResponse {
	return accessRequestResponse{
		ID:          r.ID,
		DoctorID:    r.DoctorID,
		PatientID:   r.PatientID,
		Notes:       r.Notes,
		Status:      r.EffectiveStatus(s.now()),
		RequestedAt: r.RequestedAt,
		RespondedAt: r.RespondedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

func (s *Service) toResponseList(items []AccessRequest) []accessRequestResponse {
	out := make([]accessRequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, s.toResponse(r))
	}
	return out
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func requireRole(w http.ResponseWriter, r *http.Request, role auth.Role) (auth.Claims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return auth.Claims{}, false
	}
	if claims.Role != role {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

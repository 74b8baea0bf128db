package verification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lifetag-access/internal/middleware"
	"lifetag-access/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/verification", func(vr chi.Router) {
		vr.Post("/send", sendCodeHandler(svc))
		vr.Post("/confirm", confirmCodeHandler(svc))
	})
}

type sendCodeRequest struct {
	Target string `json:"target"` // documento de identidad, 12 dígitos
}

type sendCodeResponse struct {
	Message string `json:"message"`
	// Code solo se devuelve en modo prototipo, no hay canal SMS real todavía.
	Code string `json:"code,omitempty"`
}

type confirmCodeRequest struct {
	Code string `json:"code"`
}

type confirmCodeResponse struct {
	Message string `json:"message"`
	Last4   string `json:"last4"`
}

// sendCodeHandler godoc
// @Summary Emitir código de verificación de identidad
// @Tags verification
// @Accept json
// @Produce json
// @Param payload body sendCodeRequest true "target a verificar (12 dígitos)"
// @Success 200 {object} sendCodeResponse
// @Failure 400 {string} string "invalid target"
// @Failure 401 {string} string "unauthorized"
// @Router /verification/send [post]
func sendCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" || claims.Role != auth.RolePatient {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req sendCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Issue(r.Context(), claims.UserID, req.Target)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid target", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, sendCodeResponse{
			Message: "code issued (prototype mode)",
			Code:    c.Code,
		})
	}
}

// confirmCodeHandler godoc
// @Summary Confirmar código de verificación
// @Description El código se consume en el primer intento, acierte o no. Vencido, inexistente o incorrecto responden igual.
// @Tags verification
// @Accept json
// @Produce json
// @Param payload body confirmCodeRequest true "código recibido"
// @Success 200 {object} confirmCodeResponse
// @Failure 400 {string} string "code invalid or expired"
// @Failure 401 {string} string "unauthorized"
// @Router /verification/confirm [post]
func confirmCodeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" || claims.Role != auth.RolePatient {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req confirmCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		last4, err := svc.Confirm(r.Context(), claims.UserID, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrCodeInvalid):
				http.Error(w, "code invalid or expired", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, confirmCodeResponse{
			Message: "identity verified",
			Last4:   last4,
		})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

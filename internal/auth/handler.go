package auth

import (
	"errors"
	"net/http"

	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// tokenData is the token exchange response body.
type tokenData struct {
	AccessToken string `json:"access_token" example:"admin@example.com"`
	TokenType   string `json:"token_type"   example:"bearer"`
}

// Login godoc
//
//	@Summary		Exchange credentials for a bearer token
//	@Description	OAuth2 password flow shape: form fields username and password. Returns an opaque bearer token used as the caller identity on property endpoints.
//	@Tags			auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Account username"
//	@Param			password	formData	string	true	"Account password"
//	@Success		200	{object}	response.Envelope{data=tokenData}
//	@Failure		400	{object}	response.Envelope
//	@Router			/token [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form body")
		return
	}

	token, err := h.svc.IssueToken(r.PostFormValue("username"), r.PostFormValue("password"))
	if errors.Is(err, ErrInvalidCredentials) {
		response.BadRequest(w, "invalid credentials")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, tokenData{AccessToken: token, TokenType: "bearer"})
}

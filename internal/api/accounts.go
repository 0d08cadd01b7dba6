package api

import (
	"net/http"

	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/response"
	"github.com/gorilla/mux"
)

func (a *App) accountRoutes(api *mux.Router) {
	api.HandleFunc("/auth/signup", a.SignupHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", a.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/check-email", a.CheckEmailHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/authorize", a.auth(a.AuthorizeHandler)).Methods(http.MethodPost)
	api.HandleFunc("/users/{user_id:[0-9]+}/profile", a.auth(a.UserProfileHandler)).Methods(http.MethodGet)
}

// SignupHandler handles POST /api/v1/auth/signup
func (a *App) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.accounts.Register(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, "user registered successfully", res)
}

// LoginHandler handles POST /api/v1/auth/login
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.accounts.Login(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "login successful", res)
}

// CheckEmailHandler handles POST /api/v1/auth/check-email
func (a *App) CheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CheckEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	available, err := a.accounts.CheckEmail(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	message := "email is available"
	if !available {
		message = "email is already taken"
	}
	response.JSON(w, http.StatusOK, message, map[string]interface{}{
		"email":     req.Email,
		"available": available,
	})
}

// AuthorizeHandler handles POST /api/v1/auth/authorize
func (a *App) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	response.JSON(w, http.StatusOK, "User is authenticated", map[string]interface{}{
		"user_id": id.UserID,
	})
}

// UserProfileHandler handles GET /api/v1/users/{user_id}/profile
func (a *App) UserProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	info, err := a.accounts.UserInformation(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "user information", info)
}

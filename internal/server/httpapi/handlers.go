package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

type registerRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	UserName   string `json:"username"`
	Password   string `json:"password"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *models.Identity `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type uploadRequest struct {
	Kind string `json:"kind"`
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, empty{}, "OK")
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.users.Register(r.Context(), services.RegisterInput{
		UserName:   req.UserName,
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Avatar:     req.Avatar,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, id, "User registered successfully")
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, pair, err := s.users.Login(r.Context(), services.LoginInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if info := requestInfoFrom(r.Context()); info != nil {
		info.userID = id.ID
	}

	s.cookies.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, loginResponse{
		User:         id,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	if err := s.sessions.Terminate(r.Context(), id.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cookies.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, empty{}, "User logged out")
}

// refreshToken rotates the session. The refresh token is taken from the
// refreshToken cookie, or from the JSON body when there is no cookie.
func (s *HTTPServer) refreshToken(w http.ResponseWriter, r *http.Request) {
	raw := cookieValue(r, common.RefreshTokenCookieName)
	if raw == "" {
		var req refreshRequest
		if err := decodeJSON(r, &req, true); err != nil {
			s.writeError(w, r, err)
			return
		}
		raw = req.RefreshToken
	}

	pair, err := s.sessions.Rotate(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.cookies.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, pair, "Access token refreshed")
}

func (s *HTTPServer) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, _ := IdentityFromContext(r.Context())
	if err := s.users.ChangePassword(r.Context(), id.ID, req.OldPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, empty{}, "Password changed successfully")
}

func (s *HTTPServer) currentUser(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, id, "User fetched successfully")
}

func (s *HTTPServer) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	current, _ := IdentityFromContext(r.Context())
	id, err := s.users.UpdateAccount(r.Context(), current.ID, req.FullName, req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, id, "Account details updated successfully")
}

func (s *HTTPServer) presignUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	upload, err := s.media.PresignUpload(r.Context(), req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, upload, "Upload URL created")
}

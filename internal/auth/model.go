// File: internal/auth/model.go
package auth

import "campus_desk_backend/internal/session"

// SessionResponse tells the client who is signed in and where to land.
type SessionResponse struct {
	Session     *session.Session `json:"session"`
	DisplayName string           `json:"display_name"`
	LandingView string           `json:"landing_view"`
}

// ToSessionResponse builds the response for the session endpoint.
func ToSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		Session:     s,
		DisplayName: s.DisplayName(),
		LandingView: s.LandingView(),
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sleepingqueens/queens-server-go/internal/game/rules"
	"github.com/sleepingqueens/queens-server-go/internal/room"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// httpStatus maps an error to the response status and the code reported to
// the client.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound, "RoomNotFound"
	case errors.Is(err, room.ErrRoomFull):
		return http.StatusConflict, "RoomFull"
	}

	var moveErr *rules.MoveError
	if !errors.As(err, &moveErr) {
		return http.StatusInternalServerError, ""
	}
	switch moveErr.Code {
	case rules.CodeNotYourTurn:
		return http.StatusConflict, string(moveErr.Code)
	default:
		return http.StatusBadRequest, string(moveErr.Code)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if s.logger != nil {
			s.logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

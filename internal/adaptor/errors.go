package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"event-booking/pkg/apperror"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

// writeError maps a service error onto the response envelope. Anything that
// is not an *apperror.Error is reported as an opaque 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" rejected",
		zap.String("kind", string(appErr.Kind)),
		zap.String("operation", operation),
		zap.Error(err))

	switch appErr.Kind {
	case apperror.KindValidation:
		utils.ResponseBadRequest(w, appErr.Message, appErr.Fields)
	case apperror.KindInvalidTier, apperror.KindEmptySelection:
		utils.ResponseBadRequest(w, appErr.Message, map[string]string{"kind": string(appErr.Kind)})
	case apperror.KindUnauthorized:
		utils.ResponseUnauthorized(w, appErr.Message)
	case apperror.KindForbidden:
		utils.ResponseForbidden(w, appErr.Message)
	case apperror.KindNotFound:
		utils.ResponseNotFound(w, appErr.Message)
	case apperror.KindSeatUnavailable:
		utils.ResponseConflict(w, appErr.Message, map[string]any{
			"kind":  appErr.Kind,
			"seats": appErr.Seats,
		})
	case apperror.KindLocked, apperror.KindConflict, apperror.KindInvalidState:
		utils.ResponseConflict(w, appErr.Message, map[string]string{"kind": string(appErr.Kind)})
	default:
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", map[string]string{"body": err.Error()})
		return false
	}
	return true
}

func sessionOrUnauthorized(w http.ResponseWriter, r *http.Request) (*utils.Session, bool) {
	session, ok := utils.SessionFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return nil, false
	}
	return session, true
}

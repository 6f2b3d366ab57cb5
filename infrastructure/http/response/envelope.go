package response

import (
	"encoding/json"
	"net/http"

	domainerror "github.com/fleetlog/fleetlog/domain/error"
)

type Envelope struct {
	Status  bool                  `json:"status"`
	Message string                `json:"message"`
	Code    domainerror.ErrorCode `json:"code,omitempty"`
	Data    interface{}           `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	write(w, statusCode, Envelope{Status: status, Message: message, Data: data})
}

func write(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, false, message, nil)
}

// showsDetails lists the codes whose details describe the client's own input
var showsDetails = map[domainerror.ErrorCode]bool{
	domainerror.ErrCodeRequestInvalid: true,
	domainerror.ErrCodeInvalidRequest: true,
	domainerror.ErrCodeInvalidToken:   true,
}

// FromError writes err using the error catalog. data is sent along with the
// error, which lets a partially successful operation return its result.
// Internal details are never exposed.
func FromError(w http.ResponseWriter, err error, data interface{}) {
	appErr := domainerror.FromError(err)
	statusCode := domainerror.GetHTTPStatusCode(err)

	message := appErr.Message
	if appErr.Details != "" && showsDetails[appErr.Code] {
		message += ": " + appErr.Details
	}

	write(w, statusCode, Envelope{
		Status:  false,
		Message: message,
		Code:    appErr.Code,
		Data:    data,
	})
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

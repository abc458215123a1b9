package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape shared by every non-payload endpoint:
// {"status":"OK"|"ERROR","message":...,"detail":...}.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteOK(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, Envelope{Status: "OK", Message: msg})
}

func WriteError(w http.ResponseWriter, code int, msg, detail string) {
	WriteJSON(w, code, Envelope{Status: "ERROR", Message: msg, Detail: detail})
}

func SafeErrMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

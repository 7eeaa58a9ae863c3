package routing

import (
	"encoding/json"
	"net/http"
)

// Response is an action result with an explicit status code.
//
//	return routing.Response{Status: http.StatusCreated, Data: user}, nil
type Response struct {
	Status int
	Data   any
}

type envelope map[string]any

// writeResult renders an action result. A nil result means the action wrote
// its own response.
func writeResult(w http.ResponseWriter, result any) {
	switch v := result.(type) {
	case nil:
		return
	case Response:
		if v.Data == nil {
			w.WriteHeader(v.Status)
			return
		}
		writeJSON(w, v.Status, envelope{"data": v.Data})
	case *Response:
		if v != nil {
			writeResult(w, *v)
		}
	default:
		writeJSON(w, http.StatusOK, envelope{"data": v})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

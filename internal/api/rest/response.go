package rest

import (
	"encoding/json"
	"net/http"
)

// body is a JSON response envelope. Every body carries "success".
type body map[string]interface{}

func failure(label, message string) body {
	b := body{"success": false, "error": label}
	if message != "" {
		b["message"] = message
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

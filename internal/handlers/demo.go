package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DemoHandler backs the two example endpoints: a hand-routed view and a resource-style
// viewset. Neither touches storage.
type DemoHandler struct{}

type demoInput struct {
	Name string `json:"name" validate:"required,max=10"`
}

var (
	viewFeatures = []string{
		"Using HTTP methods as functions (get, post, patch, put, delete)",
		"Similar to a traditional Django View",
		"Gives the most control over application logic",
		"Mapped manually to URLs",
	}
	viewSetFeatures = []string{
		"Actions: (list, create, retrieve, update, partial_update)",
		"Automatically maps to URLs using routers",
		"Typically provides more functionality with less code",
	}
)

// ViewGet lists what the hand-routed view offers.
func (DemoHandler) ViewGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Success!",
		"an_apiview": viewFeatures,
	})
}

// ViewPost greets the submitted name.
func (DemoHandler) ViewPost(w http.ResponseWriter, r *http.Request) {
	greet(w, r, "Thank you, %s")
}

// ViewMethod echoes the method for PUT, PATCH and DELETE.
func (DemoHandler) ViewMethod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"method": r.Method})
}

// SetList lists what the viewset offers.
func (DemoHandler) SetList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Welcome!",
		"a_viewset": viewSetFeatures,
	})
}

// SetCreate greets the submitted name.
func (DemoHandler) SetCreate(w http.ResponseWriter, r *http.Request) {
	greet(w, r, "Greetings, %s!")
}

// SetItem echoes the method for retrieve, update, partial_update and destroy.
func (DemoHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"http_method": r.Method})
}

func greet(w http.ResponseWriter, r *http.Request, format string) {
	var input demoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", fieldErrors(err), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf(format, input.Name)})
}

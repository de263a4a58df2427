// Package permissions decides object-level write access.
package permissions

import (
	"net/http"

	"github.com/crucial707/profiles-api/internal/models"
)

// Owned is anything that belongs to a single profile.
type Owned interface {
	OwnerID() int
}

// IsSafeMethod reports whether method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// HasObjectPermission allows reads from anyone and writes only from the object's owner.
// requester is nil for anonymous requests.
func HasObjectPermission(method string, requester *models.Profile, obj Owned) bool {
	if IsSafeMethod(method) {
		return true
	}
	if requester == nil {
		return false
	}
	return requester.ID == obj.OwnerID()
}

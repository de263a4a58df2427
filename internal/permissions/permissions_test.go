package permissions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crucial707/profiles-api/internal/models"
)

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, IsSafeMethod(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.False(t, IsSafeMethod(m), m)
	}
}

func TestHasObjectPermission(t *testing.T) {
	alice := &models.Profile{ID: 1}
	bob := &models.Profile{ID: 2}
	aliceItem := models.FeedItem{ID: 10, ProfileID: 1}

	cases := []struct {
		name      string
		method    string
		requester *models.Profile
		obj       Owned
		want      bool
	}{
		{"anonymous read profile", http.MethodGet, nil, *alice, true},
		{"anonymous update profile", http.MethodPut, nil, *alice, false},
		{"owner updates own profile", http.MethodPatch, alice, *alice, true},
		{"other deletes profile", http.MethodDelete, bob, *alice, false},
		{"other reads feed item", http.MethodGet, bob, aliceItem, true},
		{"owner updates feed item", http.MethodPut, alice, aliceItem, true},
		{"other updates feed item", http.MethodPut, bob, aliceItem, false},
		{"id match on item id is not ownership", http.MethodDelete, &models.Profile{ID: 10}, aliceItem, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasObjectPermission(tc.method, tc.requester, tc.obj))
		})
	}
}

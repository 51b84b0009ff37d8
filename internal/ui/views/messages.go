package views

import "github.com/taskdeck/taskdeck/internal/models"

// Cross-view messages. Views emit these; the app routes on them.

// LoggedIn signals a successful login or registration.
type LoggedIn struct{}

// LoggedOut signals the user logged out.
type LoggedOut struct{}

// SessionExpired signals that an API call answered 401: the stored token is
// no longer valid and the user must re-authenticate.
type SessionExpired struct{}

// OpenList signals to open a list's detail view.
type OpenList struct {
	List models.TaskList
}

// BackToLists signals to go back to the lists overview.
type BackToLists struct{}

// OpenProfile signals to open the profile view.
type OpenProfile struct{}

// BackFromProfile signals to leave the profile view.
type BackFromProfile struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

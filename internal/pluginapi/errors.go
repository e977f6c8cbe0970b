package pluginapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kastheco/glrhs/model"
)

// APIError is a failure reported by the plugin API. It is returned for non-2xx
// responses and for 2xx responses whose body carries an error id, which is how
// the plugin reports a user without a linked GitLab account.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ID         string `json:"id"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	switch {
	case e.ID != "" && e.Message != "":
		return fmt.Sprintf("plugin api %d: %s: %s", e.StatusCode, e.ID, e.Message)
	case e.ID != "":
		return fmt.Sprintf("plugin api %d: %s", e.StatusCode, e.ID)
	case e.Message != "":
		return fmt.Sprintf("plugin api %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("plugin api %d", e.StatusCode)
	}
}

// IsNotConnected reports whether err is the not_connected sentinel.
func IsNotConnected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ID == model.NotConnectedID
}

// IsNotFound reports whether err is a 404 from the plugin API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

package envelope

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// RemoteError is a failure envelope received from the API. It matches, via
// errors.Is, every domain error that maps onto the same HTTP status, so
// callers can test for tasksvc.ErrForbidden and friends.
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	if _, ok := target.(*RemoteError); ok {
		return false
	}
	status, _ := Code(target)
	return status != http.StatusInternalServerError && status == e.Status
}

// Decode reads an envelope from r into data. A failure envelope is returned
// as a *RemoteError; a body that is not an envelope is a plain error.
func Decode(r *http.Response, data interface{}) error {
	if r.StatusCode == http.StatusNoContent {
		return nil
	}

	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return errors.Wrapf(err, "decode response (%s)", r.Status)
	}

	if !body.Success {
		if body.Error == nil {
			return errors.Errorf("unexpected failure response (%s)", r.Status)
		}
		return &RemoteError{
			Status:  r.StatusCode,
			Code:    body.Error.Code,
			Message: body.Error.Message,
			Details: body.Error.Details,
		}
	}

	if data == nil || len(body.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(body.Data, data), "decode response data")
}

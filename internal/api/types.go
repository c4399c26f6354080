package api

import "pado/internal/task"

// envelope is the failure shape shared by every JSON endpoint. A body
// with ok=false is a rejection even under a 2xx status.
type envelope struct {
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// authResponse is what /auth and /forgot answer with when asked for
// JSON.
type authResponse struct {
	OK       *bool  `json:"ok,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// AuthResult is the outcome of a login, signup or reset exchange.
type AuthResult struct {
	Message  string
	Redirect string
}

// createListResponse carries the server-assigned ID of a new list.
type createListResponse struct {
	ID int `json:"id"`
}

// taskPayload is the request body for task create and update. Only the
// editable fields travel; id, done and createdAt never do.
type taskPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     string        `json:"dueDate"`
	DueTime     string        `json:"dueTime"`
	Priority    task.Priority `json:"priority"`
	ListID      int           `json:"list_id,omitempty"`
}

// donePayload is the body of the done-toggle PATCH. Flag marshals as
// 0/1, which is what the server stores.
type donePayload struct {
	Done task.Flag `json:"done"`
}

type memberPayload struct {
	Username string `json:"username"`
}

type listPayload struct {
	Name string `json:"name"`
}

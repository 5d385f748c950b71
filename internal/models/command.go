package models

// CommandResult reports the outcome of a device command. Commands never fail by
// returning an error value; failures are described here.
type CommandResult struct {
	Success  bool   `json:"success"`
	HTTPCode int    `json:"httpCode,omitempty"`
	Error    string `json:"error,omitempty"`
}

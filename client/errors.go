package client

import (
	"encoding/json"
	"fmt"
)

// RequestError is a non-2xx response.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NetworkError is a transport failure; no response was read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is a 2xx response whose body is not the JSON we expected.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DecodeErrorMessage pulls the message out of an error response body:
// the "error" field, else "message", else fallback. Bodies that aren't
// JSON fall back too.
func DecodeErrorMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fallback
	}
	if eb.Error != "" {
		return eb.Error
	}
	if eb.Message != "" {
		return eb.Message
	}
	return fallback
}

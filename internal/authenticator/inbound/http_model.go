package inbound

import "net/http"

type AddEntryRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type EntryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (EntryResponse) StatusCode() int {
	return http.StatusCreated
}

type CodeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type CodesResponse struct {
	Items            []CodeResponse `json:"items"`
	Period           uint           `json:"period"`
	SecondsRemaining int            `json:"seconds_remaining"`
}

package dto

import "mindsukoon.app/companion/internal/safety"

type ContactResponse struct {
	Region string `json:"region"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

type ResourcesResponse struct {
	Contacts   []ContactResponse `json:"contacts"`
	Disclaimer string            `json:"disclaimer"`
}

func ToResourcesResponse(contacts []safety.Contact) ResourcesResponse {
	out := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = ContactResponse{Region: c.Region, Name: c.Name, Number: c.Number}
	}
	return ResourcesResponse{
		Contacts:   out,
		Disclaimer: "This companion offers emotional support and is not a substitute for professional care. In an emergency, call your local emergency number.",
	}
}

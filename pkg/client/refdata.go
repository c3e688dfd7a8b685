package client

import (
	"fmt"
	"net/http"

	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

// RefDataClient reads teams, countries and sports from the external
// reference-data service. The booking core only needs lookups; all
// reference-data CRUD lives in that service.
type RefDataClient struct {
	http *HttpClient
}

func NewRefDataClient(baseURL string) *RefDataClient {
	return &RefDataClient{
		http: NewHttpClient(baseURL),
	}
}

// TeamByID resolves a team to its country, used by the policy layer's
// same-country read rule. Always fetched fresh; never cached on the
// principal.
func (c *RefDataClient) TeamByID(id string) (*model.Team, error) {
	resp, err := c.http.GET("/api/v1/teams/" + id)
	if err != nil {
		return nil, apperrors.Internal("Failed to reach reference-data service", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Team", id)
	default:
		return nil, apperrors.Internal(
			fmt.Sprintf("Reference-data service returned status %d", resp.StatusCode), nil)
	}

	var body struct {
		Data model.Team `json:"data"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, apperrors.Internal("Failed to decode team response", err)
	}

	return &body.Data, nil
}

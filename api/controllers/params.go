package controllers

import (
	"net/http"
	"strings"

	"github.com/safariconnector/backend/api/validators"
	"github.com/safariconnector/backend/pkg/pagination"
)

func parseListParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"phrasebook/internal/query"
)

func parseIDParam(c echo.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}

func parseQueryParams(c echo.Context) query.Params {
	return query.Params{
		Text:      c.QueryParam("q"),
		Situation: c.QueryParam("situation"),
	}
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"phrasebook/internal/model"
	"phrasebook/internal/query"
	"phrasebook/internal/service"
)

type KeywordHandler struct {
	service service.KeywordService
}

type keywordRequest struct {
	Native    string `json:"native"`
	Target    string `json:"target"`
	Situation string `json:"situation"`
}

type keywordResponse struct {
	ID        string  `json:"id"`
	RemoteID  *string `json:"remoteId,omitempty"`
	Native    string  `json:"native"`
	Target    string  `json:"target"`
	Situation string  `json:"situation"`
	CreatedAt string  `json:"createdAt"`
}

type deleteKeywordResponse struct {
	Deleted     bool   `json:"deleted"`
	RemoteError string `json:"remoteError,omitempty"`
}

type loadResponse struct {
	Source      string `json:"source"`
	Count       int    `json:"count"`
	Skipped     int    `json:"skipped"`
	RemoteError string `json:"remoteError,omitempty"`
	CacheError  string `json:"cacheError,omitempty"`
}

type statsResponse struct {
	Total         int            `json:"total"`
	BySituation   map[string]int `json:"bySituation"`
	RemoteEnabled bool           `json:"remoteEnabled"`
}

type situationsResponse struct {
	Present   []string `json:"present"`
	Available []string `json:"available"`
}

func NewKeywordHandler(service service.KeywordService) *KeywordHandler {
	return &KeywordHandler{service: service}
}

func (h *KeywordHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/keywords", h.List)
	g.POST("/keywords", h.Create)
	g.POST("/keywords/refresh", h.Refresh)
	g.GET("/keywords/:id", h.Get)
	g.DELETE("/keywords/:id", h.Delete)
	g.GET("/situations", h.Situations)
	g.GET("/stats", h.Stats)
}

// List returns keywords, newest first.
// @Summary List keywords
// @Description Search by text across both languages and filter by situation
// @Tags keywords
// @Produce json
// @Param q query string false "Search text"
// @Param situation query string false "Situation slug or all"
// @Success 200 {array} keywordResponse
// @Router /keywords [get]
func (h *KeywordHandler) List(c echo.Context) error {
	keywords := h.service.Search(parseQueryParams(c))
	response := make([]keywordResponse, 0, len(keywords))
	for _, kw := range keywords {
		response = append(response, toKeywordResponse(kw))
	}
	return c.JSON(http.StatusOK, response)
}

// Create adds a keyword.
// @Summary Create a keyword
// @Tags keywords
// @Accept json
// @Produce json
// @Param keyword body keywordRequest true "Keyword creation request"
// @Success 201 {object} keywordResponse
// @Failure 400 {object} errorResponse
// @Router /keywords [post]
func (h *KeywordHandler) Create(c echo.Context) error {
	var req keywordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	kw, err := h.service.Add(c.Request().Context(), req.Native, req.Target, req.Situation)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toKeywordResponse(kw))
}

// Get returns one keyword. Ids issued before remote promotion still resolve.
// @Summary Get a keyword
// @Tags keywords
// @Produce json
// @Param id path string true "Keyword ID"
// @Success 200 {object} keywordResponse
// @Failure 404 {object} errorResponse
// @Router /keywords/{id} [get]
func (h *KeywordHandler) Get(c echo.Context) error {
	kw, err := h.service.Get(parseIDParam(c, "id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toKeywordResponse(kw))
}

// Delete removes a keyword. Deleting an unknown id is not an error.
// @Summary Delete a keyword
// @Tags keywords
// @Produce json
// @Param id path string true "Keyword ID"
// @Success 200 {object} deleteKeywordResponse
// @Failure 400 {object} errorResponse
// @Router /keywords/{id} [delete]
func (h *KeywordHandler) Delete(c echo.Context) error {
	result, err := h.service.Delete(c.Request().Context(), parseIDParam(c, "id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := deleteKeywordResponse{Deleted: result.Deleted}
	if result.RemoteErr != nil {
		resp.RemoteError = result.RemoteErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh reloads the collection from the remote store.
// @Summary Refresh keywords
// @Tags keywords
// @Produce json
// @Success 200 {object} loadResponse
// @Router /keywords/refresh [post]
func (h *KeywordHandler) Refresh(c echo.Context) error {
	return c.JSON(http.StatusOK, toLoadResponse(h.service.Refresh(c.Request().Context())))
}

// Situations lists the situation tags in use and the full fixed set.
// @Summary List situations
// @Tags keywords
// @Produce json
// @Success 200 {object} situationsResponse
// @Router /situations [get]
func (h *KeywordHandler) Situations(c echo.Context) error {
	return c.JSON(http.StatusOK, situationsResponse{
		Present:   situationStrings(h.service.Situations()),
		Available: situationStrings(model.Situations()),
	})
}

// Stats returns collection counts.
// @Summary Collection statistics
// @Tags keywords
// @Produce json
// @Success 200 {object} statsResponse
// @Router /stats [get]
func (h *KeywordHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, toStatsResponse(h.service.Stats(), h.service.RemoteEnabled()))
}

func toKeywordResponse(kw model.Keyword) keywordResponse {
	var remoteID *string
	if kw.HasRemoteID() {
		value := strconv.FormatInt(*kw.RemoteID, 10)
		remoteID = &value
	}
	return keywordResponse{
		ID:        kw.ID,
		RemoteID:  remoteID,
		Native:    kw.NativeText,
		Target:    kw.TargetText,
		Situation: string(kw.Situation),
		CreatedAt: kw.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toLoadResponse(result service.LoadResult) loadResponse {
	resp := loadResponse{
		Source:  string(result.Source),
		Count:   result.Count,
		Skipped: result.Skipped,
	}
	if result.RemoteErr != nil {
		resp.RemoteError = result.RemoteErr.Error()
	}
	if result.CacheErr != nil {
		resp.CacheError = result.CacheErr.Error()
	}
	return resp
}

func toStatsResponse(stats query.Stats, remoteEnabled bool) statsResponse {
	bySituation := make(map[string]int, len(stats.BySituation))
	for situation, count := range stats.BySituation {
		bySituation[string(situation)] = count
	}
	return statsResponse{
		Total:         stats.Total,
		BySituation:   bySituation,
		RemoteEnabled: remoteEnabled,
	}
}

func situationStrings(situations []model.Situation) []string {
	out := make([]string, 0, len(situations))
	for _, s := range situations {
		out = append(out, string(s))
	}
	return out
}

package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/gallery"
)

type handler struct {
	storyboard Storyboarder
	gallery    GalleryStore
}

type healthResponse struct {
	Status string `json:"status"`
}

type storyboardResponse struct {
	Success bool `json:"success"`
	*domain.StoryboardResult
}

type planResponse struct {
	Success bool `json:"success"`
	*domain.StoryboardPlan
}

type listResponse struct {
	Success bool `json:"success"`
	*gallery.ListResult
}

type workResponse struct {
	Success bool                `json:"success"`
	Work    *domain.GalleryWork `json:"work"`
}

// storyboardRequest は numScenes の省略と明示的な 0 を区別して受け取ります。
type storyboardRequest struct {
	Story     string `json:"story"`
	NumScenes *int   `json:"numScenes"`
	Style     string `json:"style"`
}

// toDomain は省略された numScenes をデフォルト値にし、明示された値は範囲を検証します。
func (r storyboardRequest) toDomain() (domain.StoryboardRequest, error) {
	req := domain.StoryboardRequest{Story: r.Story, NumScenes: domain.DefaultNumScenes, Style: r.Style}
	if r.NumScenes != nil {
		if err := domain.ValidateNumScenes(*r.NumScenes); err != nil {
			return domain.StoryboardRequest{}, err
		}
		req.NumScenes = *r.NumScenes
	}
	return req, nil
}

type visibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

type visibilityResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (h *handler) generateStoryboard(c *gin.Context) {
	var body storyboardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}
	req, err := body.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.storyboard.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, storyboardResponse{Success: true, StoryboardResult: result})
}

func (h *handler) plan(c *gin.Context) {
	var body storyboardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}
	req, err := body.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.storyboard.Plan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, planResponse{Success: true, StoryboardPlan: plan})
}

func (h *handler) listGallery(includeHidden bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryInt(c, "limit")
		if err != nil {
			respondError(c, err)
			return
		}
		offset, err := queryInt(c, "offset")
		if err != nil {
			respondError(c, err)
			return
		}

		res, err := h.gallery.List(gallery.ListOptions{Limit: limit, Offset: offset, IncludeHidden: includeHidden})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Success: true, ListResult: res})
	}
}

func (h *handler) getWork(includeHidden bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		work, err := h.gallery.Get(id, includeHidden)
		if err != nil {
			respondError(c, err)
			return
		}
		if work == nil {
			respondNotFound(c, id)
			return
		}
		c.JSON(http.StatusOK, workResponse{Success: true, Work: work})
	}
}

func (h *handler) publish(c *gin.Context) {
	var req domain.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	work, err := h.gallery.Publish(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workResponse{Success: true, Work: work})
}

func (h *handler) setVisibility(c *gin.Context) {
	id := c.Param("id")
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ok, err := h.gallery.SetVisibility(id, *req.Visible)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondNotFound(c, id)
		return
	}
	c.JSON(http.StatusOK, visibilityResponse{Success: true, ID: id, Visible: *req.Visible})
}

func (h *handler) deleteWork(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.gallery.Delete(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondNotFound(c, id)
		return
	}
	c.JSON(http.StatusOK, deleteResponse{Success: true, ID: id})
}

// queryInt は省略時に 0 を返し、数値でない場合は ValidationError を返すのだ。
func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &domain.ValidationError{Field: key, Message: "must be an integer", Err: err}
	}
	return n, nil
}

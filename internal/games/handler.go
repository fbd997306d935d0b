package games

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)          // GET /games
	rg.GET("/:uuid", h.getByID) // GET /games/:uuid
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Username:  c.Query("username"),
		Opponent:  c.Query("opponent"),
		TimeClass: c.Query("time_class"),
		Color:     strings.ToLower(c.Query("color")),
		Result:    strings.ToLower(c.Query("result")),
		ECO:       c.Query("eco"),
		Limit:     parseInt(c.Query("limit"), 50),
		Offset:    parseInt(c.Query("offset"), 0),
	}

	if s := c.Query("rated"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rated must be a boolean"})
			return
		}
		q.Rated = &v
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	uuid := c.Param("uuid")
	rec, err := h.Repo.GetByUUID(c.Request.Context(), uuid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

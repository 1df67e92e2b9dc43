package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/medtravel/internal/catalog"
)

// collection is the slice of catalog.Collection the handlers use.
type collection[T any] interface {
	List(ctx context.Context, f catalog.Filter) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id string, item *T) error
	Delete(ctx context.Context, id string) error
	Filters() []string
}

type resource[T any] struct {
	srv  *Server
	coll collection[T]
}

// registerResource mounts list/get publicly and create/update/delete on the
// admin group.
func registerResource[T any](public, admin *gin.RouterGroup, name string, coll collection[T], s *Server) {
	r := &resource[T]{srv: s, coll: coll}
	public.GET("/"+name, r.list)
	public.GET("/"+name+"/:id", r.get)
	admin.POST("/"+name, r.create)
	admin.PUT("/"+name+"/:id", r.update)
	admin.DELETE("/"+name+"/:id", r.delete)
}

func (r *resource[T]) list(c *gin.Context) {
	f := catalog.Filter{
		Query:    c.Query("q"),
		Featured: c.Query("featured") == "true",
		Fields:   make(map[string]string),
	}
	for _, name := range r.coll.Filters() {
		if v := c.Query(name); v != "" {
			f.Fields[name] = v
		}
	}

	items, err := r.coll.List(c.Request.Context(), f)
	if err != nil {
		r.srv.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

func (r *resource[T]) get(c *gin.Context) {
	item, err := r.coll.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.srv.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

func (r *resource[T]) create(c *gin.Context) {
	item := new(T)
	if err := c.ShouldBindJSON(item); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := r.coll.Create(c.Request.Context(), item); err != nil {
		r.srv.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

func (r *resource[T]) update(c *gin.Context) {
	item := new(T)
	if err := c.ShouldBindJSON(item); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := r.coll.Update(c.Request.Context(), c.Param("id"), item); err != nil {
		r.srv.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

func (r *resource[T]) delete(c *gin.Context) {
	if err := r.coll.Delete(c.Request.Context(), c.Param("id")); err != nil {
		r.srv.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

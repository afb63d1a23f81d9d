package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/czarnick89/workout-tracker/internal/config"
	"github.com/czarnick89/workout-tracker/internal/repository"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// PageResponse is the body of every list endpoint.
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// paginator reads page/page_size and builds the neighbour links.
type paginator struct {
	pageSize    int
	maxPageSize int
}

func newPaginator(cfg config.PaginationConfig) paginator {
	p := paginator{pageSize: cfg.PageSize, maxPageSize: cfg.MaxPageSize}
	if p.pageSize <= 0 {
		p.pageSize = 10
	}
	if p.maxPageSize < p.pageSize {
		p.maxPageSize = p.pageSize
	}
	return p
}

// pageRequest is a parsed page/page_size pair.
type pageRequest struct {
	number int
	size   int
}

func (r pageRequest) window() repository.Page {
	return repository.Page{Offset: (r.number - 1) * r.size, Limit: r.size}
}

// parse reads the paging parameters. An unusable page_size falls back to
// the default; an unusable page is an error.
func (p paginator) parse(c *gin.Context) (pageRequest, error) {
	req := pageRequest{number: 1, size: p.pageSize}

	if raw := c.Query(pageSizeParam); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			req.size = min(size, p.maxPageSize)
		}
	}

	if raw := c.Query(pageParam); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 {
			return req, errInvalidPage
		}
		// The offset must fit in an int.
		if number-1 > math.MaxInt/req.size {
			return req, errInvalidPage
		}
		req.number = number
	}
	return req, nil
}

// respond writes one page. Asking for a page past the last one is an
// error; the first page always exists, even when empty.
func respond[T any](c *gin.Context, req pageRequest, total int64, results []T) error {
	if req.number > 1 && int64(req.window().Offset) >= total {
		return errInvalidPage
	}
	if results == nil {
		results = []T{}
	}

	resp := PageResponse[T]{Count: total, Results: results}
	if int64(req.number*req.size) < total {
		next := pageURL(c, req.number+1)
		resp.Next = &next
	}
	if req.number > 1 {
		prev := pageURL(c, req.number-1)
		resp.Previous = &prev
	}
	c.JSON(http.StatusOK, resp)
	return nil
}

// pageURL is the absolute URL of the current request pointed at another
// page. Page one drops the parameter.
func pageURL(c *gin.Context, number int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	query := c.Request.URL.Query()
	if number == 1 {
		query.Del(pageParam)
	} else {
		query.Set(pageParam, strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	return u.String()
}

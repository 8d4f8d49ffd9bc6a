package handlers

import (
	"net/url"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Paginator struct {
	DefaultSize int
	MaxSize     int
}

type pageRequest struct {
	number int
	size   int
}

func (r pageRequest) window() services.Page {
	return services.Page{Offset: (r.number - 1) * r.size, Limit: r.size}
}

// parse reads ?page and ?page_size. A page that is not a positive integer is
// invalid; a bad page_size falls back to the default.
func (p Paginator) parse(c *fiber.Ctx) (pageRequest, error) {
	req := pageRequest{number: 1, size: p.DefaultSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, errInvalidPage
		}
		req.number = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.size = n
		}
	}
	if p.MaxSize > 0 && req.size > p.MaxSize {
		req.size = p.MaxSize
	}
	if req.size <= 0 {
		req.size = 10
	}
	return req, nil
}

// paginate builds the list envelope. Pages past the end are invalid, except
// the first page of an empty list.
func paginate[T any](c *fiber.Ctx, req pageRequest, total int64, results []T) (*dto.Page[T], error) {
	if req.number > 1 && int64(req.window().Offset) >= total {
		return nil, errInvalidPage
	}
	if results == nil {
		results = []T{}
	}

	page := &dto.Page[T]{Count: total, Results: results}
	if int64(req.number*req.size) < total {
		page.Next = pageURL(c, req.number+1)
	}
	if req.number > 1 {
		page.Previous = pageURL(c, req.number-1)
	}
	return page, nil
}

func pageURL(c *fiber.Ctx, number int) *string {
	q := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		q.Add(string(k), string(v))
	})
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}

	u := c.BaseURL() + c.Path()
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return &u
}

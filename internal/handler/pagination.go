package handler

import (
	"net/url"
	"strconv"

	"school-service/internal/store"

	"github.com/labstack/echo/v4"
)

// maxPageLimit caps the page size a client may ask for
const maxPageLimit = 1000

// PageResponse is the envelope of every listing
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// pageFromQuery reads limit and offset. A missing or invalid limit falls back
// to defaultLimit and a larger one is capped at maxPageLimit; a missing or
// invalid offset starts at zero.
func pageFromQuery(c echo.Context, defaultLimit int) store.Page {
	p := store.Page{Limit: defaultLimit}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	return p
}

func newPageResponse(c echo.Context, p store.Page, total int64, results interface{}) PageResponse {
	return PageResponse{
		Count:    total,
		Next:     nextLink(c, p, total),
		Previous: previousLink(c, p),
		Results:  results,
	}
}

func nextLink(c echo.Context, p store.Page, total int64) *string {
	if int64(p.Offset) >= total-int64(p.Limit) {
		return nil
	}
	return pageLink(c, p.Limit, p.Offset+p.Limit)
}

func previousLink(c echo.Context, p store.Page) *string {
	if p.Offset <= 0 {
		return nil
	}
	offset := p.Offset - p.Limit
	if offset < 0 {
		offset = 0
	}
	return pageLink(c, p.Limit, offset)
}

// pageLink rebuilds the absolute request URL with the given window. Offset
// zero is dropped from the query.
func pageLink(c echo.Context, limit, offset int) *string {
	req := c.Request()
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   req.Host,
		Path:   req.URL.Path,
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

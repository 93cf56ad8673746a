package listing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Page represents pagination information of a listing.
type Page struct {
	Number       int  `json:"page"`
	Size         int  `json:"size"`
	TotalCount   int  `json:"total_count"`
	TotalPages   int  `json:"total_pages"`
	NextPage     int  `json:"next_page,omitempty"`
	PreviousPage int  `json:"previous_page,omitempty"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// NewPage creates a Page with calculated values. number is clamped into
// 1..TotalPages; an empty listing has one empty page.
func NewPage(number, size, totalCount int) Page {
	if size < 1 {
		size = 1
	}
	totalPages := max((totalCount+size-1)/size, 1)
	number = min(max(number, 1), totalPages)

	p := Page{
		Number:      number,
		Size:        size,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
	if p.HasNext {
		p.NextPage = number + 1
	}
	if p.HasPrevious {
		p.PreviousPage = number - 1
	}
	return p
}

// Paginate returns the items of the requested page. requested is the raw
// page parameter: absent, non-numeric or non-positive values select the
// first page and values past the end select the last one.
func Paginate[T any](items []T, size int, requested string) ([]T, Page) {
	requested = strings.TrimSpace(requested)
	number, err := strconv.Atoi(requested)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(requested, "-"):
		number = math.MaxInt
	case err != nil:
		number = 1
	}
	p := NewPage(number, size, len(items))

	start := (p.Number - 1) * p.Size
	end := min(start+p.Size, len(items))
	return items[start:end], p
}

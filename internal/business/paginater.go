package business

import (
	"math"

	"github.com/Agurato/marquee/internal/model"
)

// Paginater implements the GetPagination method
type Paginater[T any] struct {
	itemsPerPage int64
}

// NewPaginater instantiates a new Paginater
func NewPaginater[T any](itemsPerPage int64) *Paginater[T] {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}
	return &Paginater[T]{
		itemsPerPage: itemsPerPage,
	}
}

// PageCount returns the number of pages needed for count items, at least 1
func (p *Paginater[T]) PageCount(count int) int64 {
	return max(1, int64(math.Ceil(float64(count)/float64(p.itemsPerPage))))
}

// GetPagination returns the items of currentPage and the page links around it.
// currentPage is clamped to the existing pages.
func (p *Paginater[T]) GetPagination(currentPage int64, items []T) ([]T, []model.Pagination) {
	pageMax := p.PageCount(len(items))
	currentPage = min(max(currentPage, 1), pageMax)

	pages := []model.Pagination{{
		Number: 1,
		Active: currentPage == 1,
	}}
	if currentPage > 3 {
		pages = append(pages, model.Pagination{Dots: true})
	}
	for i := currentPage - 1; i <= currentPage+1; i++ {
		if i <= 1 || i >= pageMax {
			continue
		}
		pages = append(pages, model.Pagination{
			Number: i,
			Active: i == currentPage,
		})
	}
	if currentPage < pageMax-2 {
		pages = append(pages, model.Pagination{Dots: true})
	}
	if pageMax > 1 {
		pages = append(pages, model.Pagination{
			Number: pageMax,
			Active: currentPage == pageMax,
		})
	}

	start := min((currentPage-1)*p.itemsPerPage, int64(len(items)))
	end := min(start+p.itemsPerPage, int64(len(items)))
	return items[start:end], pages
}

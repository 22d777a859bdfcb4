package business

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Agurato/marquee/internal/model"
)

func TestGetPagination(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
	p := NewPaginater[int](3)

	assert.EqualValues(t, 7, p.PageCount(len(items)))
	assert.EqualValues(t, 1, p.PageCount(0))

	paged, pages := p.GetPagination(1, items)
	assert.Equal(t, []int{1, 2, 3}, paged)
	assert.Equal(t, []model.Pagination{
		{Number: 1, Active: true},
		{Number: 2},
		{Dots: true},
		{Number: 7},
	}, pages)

	paged, pages = p.GetPagination(4, items)
	assert.Equal(t, []int{10, 11, 12}, paged)
	assert.Equal(t, []model.Pagination{
		{Number: 1},
		{Dots: true},
		{Number: 3},
		{Number: 4, Active: true},
		{Number: 5},
		{Dots: true},
		{Number: 7},
	}, pages)

	paged, pages = p.GetPagination(7, items)
	assert.Equal(t, []int{19, 20, 21}, paged)
	assert.Equal(t, []model.Pagination{
		{Number: 1},
		{Dots: true},
		{Number: 6},
		{Number: 7, Active: true},
	}, pages)
}

func TestGetPaginationOutOfRange(t *testing.T) {
	p := NewPaginater[string](2)

	paged, pages := p.GetPagination(9, []string{"a", "b", "c"})
	assert.Equal(t, []string{"c"}, paged)
	assert.Equal(t, []model.Pagination{{Number: 1}, {Number: 2, Active: true}}, pages)

	paged, pages = p.GetPagination(0, nil)
	assert.Empty(t, paged)
	assert.Equal(t, []model.Pagination{{Number: 1, Active: true}}, pages)
}

package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Normalize(Params{}))
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Normalize(Params{Page: -3, Limit: 0}))
	assert.Equal(t, Params{Page: 4, Limit: MaxLimit}, Normalize(Params{Page: 4, Limit: 5000}))
	assert.Equal(t, Params{Page: 2, Limit: 10}, Normalize(Params{Page: 2, Limit: 10}))
}

func TestOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Params{}.Offset())
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 30, Params{Page: 4, Limit: 10}.Offset())
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage(Params{Page: 2, Limit: 10}, 35)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, int64(35), page.Total)
	assert.Equal(t, 4, page.TotalPages)

	empty := NewPage(Params{}, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

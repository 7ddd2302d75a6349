package pagination

import (
	"fmt"
	"math"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseParams(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		want    Params
		wantErr bool
	}{
		{name: "defaults", query: "", want: Params{Page: 1, Limit: 10}},
		{name: "limit override", query: "limit=3", want: Params{Page: 1, Limit: 3}},
		{name: "no cap on limit", query: "limit=5000", want: Params{Page: 1, Limit: 5000}},
		{name: "zero limit falls back", query: "limit=0", want: Params{Page: 1, Limit: 10}},
		{name: "garbage limit falls back", query: "limit=abc", want: Params{Page: 1, Limit: 10}},
		{name: "page number", query: "page=4&limit=2", want: Params{Page: 4, Limit: 2}},
		{name: "last page", query: "page=last", want: Params{Page: 0, Limit: 10, Last: true}},
		{name: "page_size is not the override", query: "page_size=3", want: Params{Page: 1, Limit: 10}},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "garbage page", query: "page=two", wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseParams(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	p, err := Params{Page: 1, Limit: 10}.Resolve(0)
	assert.NoError(t, err, "empty first page is allowed")
	assert.Equal(t, 1, p.Page)

	p, err = Params{Limit: 10, Last: true}.Resolve(25)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Offset())

	_, err = Params{Page: 4, Limit: 10}.Resolve(25)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestResolveHugeLimit(t *testing.T) {
	p, err := ParseParams(url.Values{"limit": {strconv.FormatInt(math.MaxInt64, 10)}})
	require.NoError(t, err)
	assert.Equal(t, 1, NumPages(5, p.Limit))

	p, err = p.Resolve(5)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset())

	assert.Equal(t, 2, NumPages(int64(math.MaxInt), math.MaxInt-1))
}

func TestNewPageLinks(t *testing.T) {
	base, err := url.Parse("http://testserver/api/v1/recipes?limit=2&page=2")
	require.NoError(t, err)

	page := NewPage([]int{3, 4}, 5, Params{Page: 2, Limit: 2}, base)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://testserver/api/v1/recipes?limit=2&page=3", *page.Next)
	assert.Equal(t, "http://testserver/api/v1/recipes?limit=2", *page.Previous)

	last := NewPage([]int{5}, 5, Params{Page: 3, Limit: 2}, base)
	assert.Nil(t, last.Next)

	empty := NewPage[int](nil, 0, Params{Page: 1, Limit: 10}, base)
	assert.NotNil(t, empty.Results)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Previous)
}

func TestMap(t *testing.T) {
	page := Page[int]{Count: 2, Results: []int{1, 2}}
	out := Map(page, func(i int) string { return fmt.Sprint(i * 10) })
	assert.Equal(t, []string{"10", "20"}, out.Results)
	assert.Equal(t, int64(2), out.Count)
}

func TestAbsoluteURL(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/users?page=2", nil)
	req.Host = "example.org"
	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://example.org/api/v1/users?page=2", AbsoluteURL(req).String())
}

func TestQuery(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		require.NoError(t, db.Create(&models.Ingredient{Name: fmt.Sprintf("item %02d", i), MeasurementUnit: "g"}).Error)
	}
	byName := func(tx *gorm.DB) *gorm.DB { return tx.Order("name") }

	items, count, p, err := Query[models.Ingredient](db.Model(&models.Ingredient{}), Params{Page: 2, Limit: 10}, byName)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.Equal(t, 2, p.Page)
	require.Len(t, items, 2)
	assert.Equal(t, "item 10", items[0].Name)

	_, _, _, err = Query[models.Ingredient](db.Model(&models.Ingredient{}), Params{Page: 3, Limit: 10}, byName)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

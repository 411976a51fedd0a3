package pagination

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestParseOptional(t *testing.T) {
	tests := []struct {
		name    string
		size    *int
		number  *int
		want    *Params
		wantErr bool
	}{
		{name: "both absent", want: nil},
		{name: "only size", size: intPtr(10), want: nil},
		{name: "only number", number: intPtr(2), want: nil},
		{name: "both", size: intPtr(10), number: intPtr(2), want: &Params{Size: 10, Number: 2}},
		{name: "zero size", size: intPtr(0), number: intPtr(1), wantErr: true},
		{name: "negative number", size: intPtr(5), number: intPtr(-1), wantErr: true},
		{name: "max size first page", size: intPtr(math.MaxInt), number: intPtr(1), want: &Params{Size: math.MaxInt, Number: 1}},
		{name: "offset overflows", size: intPtr(1 << 62), number: intPtr(5), wantErr: true},
		{name: "max number", size: intPtr(2), number: intPtr(math.MaxInt), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptional(tt.size, tt.number)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrorValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalPages(t *testing.T) {
	for _, tt := range []struct{ total, size, want int }{
		{0, 10, 0}, {1, 10, 1}, {10, 10, 1}, {11, 10, 2}, {25, 7, 4}, {5, 0, 0},
		{3, math.MaxInt, 1}, {math.MaxInt, 1, math.MaxInt}, {math.MaxInt, 2, math.MaxInt/2 + 1},
	} {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "%d/%d", tt.total, tt.size)
	}
}

func TestParams_SkipTake(t *testing.T) {
	p := Params{Size: 20, Number: 3}
	assert.Equal(t, 40, p.Skip())
	assert.Equal(t, 20, p.Take())
}

func TestPaginate_PagesConcatenateToFullResult(t *testing.T) {
	all := make([]string, 23)
	for i := range all {
		all[i] = "item-" + strconv.Itoa(i)
	}
	count := func(context.Context) (int, error) { return len(all), nil }
	fetch := func(_ context.Context, skip, take int) ([]string, error) {
		end := min(skip+take, len(all))
		return all[skip:end], nil
	}

	for size := 1; size <= 25; size++ {
		var joined []string
		first, err := Paginate(context.Background(), Params{Size: size, Number: 1}, count, fetch)
		require.NoError(t, err)
		assert.Equal(t, TotalPages(23, size), first.TotalPages)

		for n := 1; n <= first.TotalPages; n++ {
			page, err := Paginate(context.Background(), Params{Size: size, Number: n}, count, fetch)
			require.NoError(t, err)
			assert.Equal(t, 23, page.TotalItems)
			joined = append(joined, page.Items...)
		}
		assert.Equal(t, all, joined, "size %d", size)
	}
}

func TestPaginate_BeyondLastPage(t *testing.T) {
	fetched := false
	page, err := Paginate(context.Background(), Params{Size: 10, Number: 5},
		func(context.Context) (int, error) { return 12, nil },
		func(context.Context, int, int) ([]int, error) { fetched = true; return nil, nil })

	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 2, page.TotalPages)
}

func TestPaginate_HugePageSize(t *testing.T) {
	p, err := ParseOptional(intPtr(math.MaxInt), intPtr(1))
	require.NoError(t, err)

	page, err := Paginate(context.Background(), *p,
		func(context.Context) (int, error) { return 3, nil },
		func(_ context.Context, skip, take int) ([]int, error) { return []int{1, 2, 3}[skip:], nil })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestPaginate_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Paginate(context.Background(), Params{Size: 1, Number: 1},
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context, int, int) ([]int, error) { return nil, nil })
	assert.ErrorIs(t, err, boom)

	_, err = Paginate(context.Background(), Params{Size: 1, Number: 1},
		func(context.Context) (int, error) { return 3, nil },
		func(context.Context, int, int) ([]int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestMap(t *testing.T) {
	in := &PageResult[int]{Items: []int{1, 2}, TotalItems: 7, TotalPages: 4}
	out := Map(in, strconv.Itoa)
	assert.Equal(t, &PageResult[string]{Items: []string{"1", "2"}, TotalItems: 7, TotalPages: 4}, out)
}

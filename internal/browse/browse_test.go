package browse

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	name, owner, email, address, category string
	active                                bool
	avg                                   float64
}

func rowFields(r row) StoreFields {
	return StoreFields{
		Name:       r.name,
		OwnerName:  r.owner,
		OwnerEmail: r.email,
		Address:    r.address,
		Category:   r.category,
		Active:     r.active,
		Average:    r.avg,
	}
}

var rows = []row{
	{"Bob's Bakery", "Bob", "bob@example.com", "1 Main St", "Food", true, 4.5},
	{"Corner Books", "Erin", "erin@example.com", "9 Elm Rd", "Books", true, 3.0},
	{"apple market", "Frank", "frank@shop.io", "4 Bakery Lane", "Grocery", false, 4.5},
	{"Zed Hardware", "Gina", "gina@example.com", "2 Oak Ave", "", true, 0},
}

func names(in []row) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		out = append(out, r.name)
	}
	return out
}

func TestStoresSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	cases := []struct {
		search string
		want   []string
	}{
		{"", []string{"Bob's Bakery", "Corner Books", "apple market", "Zed Hardware"}},
		{"BAKERY", []string{"Bob's Bakery", "apple market"}},
		{"erin", []string{"Corner Books"}},
		{"shop.io", []string{"apple market"}},
		{"oak", []string{"Zed Hardware"}},
		{"grocery", []string{"apple market"}},
		{"  books ", []string{"Corner Books"}},
		{"nothing-matches", []string{}},
	}
	for _, tc := range cases {
		got := Stores(rows, StoreQuery{Search: tc.search}, rowFields)
		assert.Equal(t, tc.want, names(got), "search %q", tc.search)
	}
}

func TestStoresFiltersIntersectWithSearch(t *testing.T) {
	got := Stores(rows, StoreQuery{Search: "bakery", Status: StatusActive}, rowFields)
	assert.Equal(t, []string{"Bob's Bakery"}, names(got))

	got = Stores(rows, StoreQuery{Search: "bakery", Status: StatusInactive}, rowFields)
	assert.Equal(t, []string{"apple market"}, names(got))

	got = Stores(rows, StoreQuery{Email: "example.com", Address: "st"}, rowFields)
	assert.Equal(t, []string{"Bob's Bakery"}, names(got))

	got = Stores(rows, StoreQuery{Category: "food", Name: "zed"}, rowFields)
	assert.Empty(t, got)
}

func TestStoresSortIsStable(t *testing.T) {
	byName := Stores(rows, StoreQuery{Sort: SortName}, rowFields)
	assert.Equal(t, []string{"apple market", "Bob's Bakery", "Corner Books", "Zed Hardware"}, names(byName))

	byRating := Stores(rows, StoreQuery{Sort: SortRating}, rowFields)
	assert.Equal(t, []string{"Bob's Bakery", "apple market", "Corner Books", "Zed Hardware"}, names(byRating))

	byCategory := Stores(rows, StoreQuery{Sort: SortCategory}, rowFields)
	assert.Equal(t, []string{"Zed Hardware", "Corner Books", "Bob's Bakery", "apple market"}, names(byCategory))
}

func TestStoresDoesNotMutateInput(t *testing.T) {
	in := append([]row(nil), rows...)
	_ = Stores(in, StoreQuery{Sort: SortName}, rowFields)
	assert.Equal(t, rows, in)
}

func TestStoreQueryFromValues(t *testing.T) {
	q, err := StoreQueryFromValues(url.Values{"search": {"x"}, "status": {"Active"}, "sort": {"rating"}})
	require.NoError(t, err)
	assert.Equal(t, StoreQuery{Search: "x", Status: StatusActive, Sort: SortRating}, q)

	q, err = StoreQueryFromValues(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, StatusAll, q.Status)
	assert.Equal(t, SortNone, q.Sort)

	_, err = StoreQueryFromValues(url.Values{"sort": {"price"}})
	assert.Error(t, err)
	_, err = StoreQueryFromValues(url.Values{"status": {"deleted"}})
	assert.Error(t, err)
}

type person struct{ name, email, address, role string }

func personFields(p person) UserFields {
	return UserFields{Name: p.name, Email: p.email, Address: p.address, Role: p.role}
}

func TestUsers(t *testing.T) {
	people := []person{
		{"Alice", "alice@example.com", "1 Main St", "user"},
		{"Bob", "bob@example.com", "", "store_owner"},
		{"Root", "admin@storerating.com", "Admin Office", "admin"},
	}
	pick := func(q UserQuery) []string {
		var out []string
		for _, p := range Users(people, q, personFields) {
			out = append(out, p.name)
		}
		return out
	}

	assert.Equal(t, []string{"Alice", "Bob", "Root"}, pick(UserQuery{}))
	assert.Equal(t, []string{"Alice", "Bob"}, pick(UserQuery{Search: "EXAMPLE"}))
	assert.Equal(t, []string{"Bob"}, pick(UserQuery{Role: "store_owner"}))
	assert.Equal(t, []string{"Alice", "Bob", "Root"}, pick(UserQuery{Role: "all"}))
	assert.Equal(t, []string{"Root"}, pick(UserQuery{Search: "office", Role: "admin"}))
	assert.Nil(t, pick(UserQuery{Search: "alice", Role: "admin"}))
	assert.Equal(t, []string{"Alice"}, pick(UserQuery{Address: "main"}))
}

func FuzzStoreQueryFromValues(f *testing.F) {
	f.Add("bakery", "active", "name")
	f.Add("", "", "")
	f.Add("ÄÖ", "ALL", "Rating")
	f.Fuzz(func(t *testing.T, search, status, sortKey string) {
		q, err := StoreQueryFromValues(url.Values{"search": {search}, "status": {status}, "sort": {sortKey}})
		if err != nil {
			return
		}
		got := Stores(rows, q, rowFields)
		if len(got) > len(rows) {
			t.Fatalf("pipeline grew the input: %d > %d", len(got), len(rows))
		}
	})
}

package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/platform/optional"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026-02-28T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("28/02/2026")
	assert.Error(t, err)
}

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("lastName", " ", "is required")
	v.Required("firstName", "", "is required")
	assert.Equal(t, "On Leave", v.Enum("status", "on leave", []string{"Active", "On Leave"}, "invalid status"))
	assert.Empty(t, v.Enum("status", "gone", []string{"Active"}, "invalid status"))
	v.UUID("folderId", "abc")
	v.OptionalDate("hireDate", strPtr("yesterday"))

	issues := v.Issues()
	require.Len(t, issues, 5)
	assert.Equal(t, "firstName", issues[0].Field)
	assert.Equal(t, "status", issues[4].Field)
}

func TestPatchDate(t *testing.T) {
	v := NewValidator()
	assert.False(t, v.PatchDate("d", optional.Value[string]{}).Set)

	cleared := v.PatchDate("d", optional.Null[string]())
	assert.True(t, cleared.Set)
	assert.True(t, cleared.Null)

	empty := v.PatchDate("d", optional.Of(""))
	assert.True(t, empty.Null)

	set := v.PatchDate("d", optional.Of("2026-01-02"))
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), set.V)
	assert.False(t, v.HasIssues())

	v.PatchDate("d", optional.Of("nope"))
	assert.True(t, v.HasIssues())
}

func TestDateOrder(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	v := NewValidator()
	v.DateOrder("issueDate", &start, "expiryDate", &end)
	assert.Len(t, v.Issues(), 2)

	v = NewValidator()
	v.DateOrder("issueDate", &start, "expiryDate", nil)
	assert.False(t, v.HasIssues())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","id":"ignored"}`))
	w := httptest.NewRecorder()
	assert.True(t, DecodeJSON(w, r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	w = httptest.NewRecorder()
	assert.False(t, DecodeJSON(w, r, &dst))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"aaaaaaaaaaaaaaaaaaaa"}`))
	w = httptest.NewRecorder()
	r.Body = http.MaxBytesReader(w, r.Body, 5)
	assert.False(t, DecodeJSON(w, r, &dst))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil)
	p := ParsePagination(r, 50, 200)
	assert.Equal(t, Pagination{Limit: 200, Offset: 0}, p)
}

func strPtr(s string) *string {
	return &s
}

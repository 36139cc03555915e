package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxonhq/taxon/internal/cache"
	"github.com/taxonhq/taxon/internal/schema"
)

func intp(v int) *int { return &v }

func fixtureServer() *Server {
	dictionary := map[string]*schema.Attribute{
		"severity": {Caption: "Severity", Type: "string_t", Requirement: "optional"},
		"hostname": {Caption: "Hostname", Type: "string_t"},
	}
	categories := map[string]*schema.Category{
		"system": {Name: "system", Caption: "System Activity", UID: 1},
	}
	classes := map[string]*schema.ClassDescriptor{
		"file_activity": {
			Name: "file_activity", Caption: "File Activity",
			Category: "system", UID: intp(7),
			Attributes: schema.AttributeSet{Attrs: map[string]*schema.Attribute{
				"severity": {Requirement: "required", Source: "file_activity"},
			}},
		},
	}
	objects := map[string]*schema.ObjectDescriptor{
		"device": {Name: "device", Caption: "Device"},
	}
	return New(cache.New("1.2.3", dictionary, categories, classes, objects, nil))
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestVersionEndpoint(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/version")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1.2.3", body["version"])
}

func TestDictionaryEndpoint(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/dictionary")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]*schema.Attribute
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "severity")
	assert.Contains(t, body, "hostname")
}

func TestClassEndpointEnriches(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/classes/file_activity")

	require.Equal(t, http.StatusOK, rec.Code)
	var cls schema.ClassDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cls))
	sev := cls.Attributes.Attrs["severity"]
	require.NotNil(t, sev)
	assert.Equal(t, "required", sev.Requirement)
	assert.Equal(t, "string_t", sev.Type, "dictionary base applied at query time")
}

func TestClassEndpointNotFound(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/classes/no_such_class")

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body["error"])
}

func TestClassesEndpointFindByUID(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/classes?uid=7")

	require.Equal(t, http.StatusOK, rec.Code)
	var cls schema.ClassDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cls))
	assert.Equal(t, "file_activity", cls.Name)
}

func TestClassesEndpointUnknownUID(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/classes?uid=404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassesEndpointBadUID(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/classes?uid=seven")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassesEndpointListsAll(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/classes")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]*schema.ClassDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 1)
}

func TestCategoryEndpoint(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/categories/system")

	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Caption string                             `json:"caption"`
		Classes map[string]*schema.ClassDescriptor `json:"classes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "System Activity", detail.Caption)
	assert.Contains(t, detail.Classes, "file_activity")
}

func TestObjectEndpoints(t *testing.T) {
	rec := doGet(t, fixtureServer(), "/api/objects/device")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(t, fixtureServer(), "/api/objects/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doGet(t, fixtureServer(), "/api/objects")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]*schema.ObjectDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 1)
}

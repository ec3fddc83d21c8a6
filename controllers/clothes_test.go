package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"stylistoapi/dbhelper"
	"stylistoapi/models"
	"stylistoapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func testServer(db *gorm.DB) *echo.Echo {
	return SetupServer(db, &test.AWSProviderMock{}, &test.URLCacheMock{}, test.MockWeatherService{}, nil, nil, nil)
}

func TestCreateClothingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := CreateClothingIn{
		Name:      "White Oxford Shirt",
		FileName:  stringPtr("test-image.jpg"),
		Category:  "tops",
		Color:     "white",
		Seasons:   []string{"spring", "fall"},
		Occasions: []string{"work", "casual"},
		Classify:  BoolPointer(false),
	}

	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, "Expected status code 201 Created, got %d: %s", rec.Code, rec.Body.String())

	var response ClothingCreatedResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Equal(t, reqBody.Name, response.Clothing.Name)
	require.Equal(t, reqBody.Category, response.Clothing.Category)
	require.Equal(t, "idle", response.Clothing.ProcessingStatus)
	require.Contains(t, response.FileUploadUrl, "test-image.jpg")
}

func TestCreateClothingInvalidCategory(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := CreateClothingIn{
		Name:     "Mystery Piece",
		FileName: stringPtr("test.jpg"),
		Category: "hats",
	}

	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "category")
}

func TestCreateClothingMissingFile(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := CreateClothingIn{
		Name:     "No Photo Item",
		Category: "tops",
	}

	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateClothingUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)

	reqBody := CreateClothingIn{
		Name:     "Test Clothing",
		FileName: stringPtr("test.jpg"),
		Category: "tops",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", "", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateClothingFreeLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)
	user.EnforcedItemLimit = func(i int32) *int32 { return &i }(1)
	db.Save(&user)

	test.FakeClothingItem(db, user, "tops", "white", nil, nil)

	reqBody := CreateClothingIn{
		Name:     "One Too Many",
		FileName: stringPtr("test.jpg"),
		Category: "tops",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListClothesGroupedByCategory(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	test.FakeClothingItem(db, user, "tops", "white", []string{"summer"}, []string{"casual"})
	test.FakeClothingItem(db, user, "bottoms", "navy", []string{"summer"}, []string{"casual"})
	test.FakeClothingItem(db, user, "shoes", "black", nil, nil)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "Expected status code 200 OK, got %d: %s", rec.Code, rec.Body.String())

	var response map[string][]ClothingResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response["tops"], 1)
	require.Len(t, response["bottoms"], 1)
	require.Len(t, response["shoes"], 1)
	require.Len(t, response["dresses"], 0)
	// Presigned read url is filled in for every row with a photo.
	require.NotNil(t, response["tops"][0].Uri)
	require.Contains(t, *response["tops"][0].Uri, "fakebucketurl.com")
}

func TestListClothesPrefersProcessedPhoto(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	item := test.FakeClothingItem(db, user, "tops", "white", nil, nil)
	processedKey := "clothes/processed-1.png"
	item.ProcessedImageURL = &processedKey
	db.Save(item)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response map[string][]ClothingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response["tops"], 1)
	require.NotNil(t, response["tops"][0].Uri)
	// The whitened copy wins over the original upload.
	require.Contains(t, *response["tops"][0].Uri, processedKey)
}

func TestQueueStatusWithoutInspector(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/queue", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListClothesDoesNotLeakOtherClosets(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")

	test.FakeClothingItem(db, other, "tops", "red", nil, nil)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response map[string][]ClothingResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response["tops"], 0)
}

func TestUpdateClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)
	item := test.FakeClothingItem(db, user, "tops", "white", nil, nil)

	reqBody := UpdateClothingIn{
		Color:    stringPtr("#1f2a44"),
		Seasons:  []string{"winter"},
		Favorite: BoolPointer(true),
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.ClothingItem
	db.First(&updated, item.ID)
	assert.Equal(t, "#1f2a44", updated.Color)
	assert.True(t, updated.Favorite)
	assert.True(t, test.Contains(updated.Seasons, "winter"))
	// Untouched fields keep their values.
	assert.Equal(t, "tops", updated.Category)
}

func TestUpdateClothingNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)
	other := test.FakeUserV2(db, "Other", "other@example.com")
	item := test.FakeClothingItem(db, other, "tops", "white", nil, nil)

	reqBody := UpdateClothingIn{Color: stringPtr("red")}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)
	item := test.FakeClothingItem(db, user, "shoes", "black", nil, nil)

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var count int64
	db.Model(&models.ClothingItem{}).Where("id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWearClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)
	item := test.FakeClothingItem(db, user, "tops", "white", nil, nil)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/wardrobe/%v/wear", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.ClothingItem
	db.First(&updated, item.ID)
	assert.Equal(t, 1, updated.WearCount)
	assert.NotNil(t, updated.LastWornAt)
}

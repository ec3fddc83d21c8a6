package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"stylistoapi/dbhelper"
	"stylistoapi/models"
	"stylistoapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileMe(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/profile/me", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response models.UserMeOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, user.Name, response.Name)
	assert.Equal(t, user.Email, response.Email)
	// No style profile set yet.
	assert.Nil(t, response.Preferences)
}

func TestUpdatePreferences(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := models.PreferencesIn{
		Formality: test.Float64Pointer(0.8),
		Boldness:  test.Float64Pointer(0.3),
	}
	req := test.NewJSONAuthRequest("PUT", "/profile/preferences", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.UserAccount
	db.First(&updated, user.ID)
	require.NotNil(t, updated.PrefFormality)
	assert.InDelta(t, 0.8, *updated.PrefFormality, 0.0001)
	require.NotNil(t, updated.PrefBoldness)
	assert.InDelta(t, 0.3, *updated.PrefBoldness, 0.0001)
	// Axes not sent stay unset.
	assert.Nil(t, updated.PrefLayering)

	getReq := test.NewJSONAuthRequest("GET", "/profile/preferences", strconv.FormatUint(uint64(user.ID), 10), "")
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, getReq)

	require.Equal(t, http.StatusOK, getRec.Code)
	var prefs models.PreferencesIn
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &prefs))
	require.NotNil(t, prefs.Formality)
	assert.InDelta(t, 0.8, *prefs.Formality, 0.0001)
}

func TestUpdatePreferencesOutOfRange(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := models.PreferencesIn{Formality: test.Float64Pointer(1.5)}
	req := test.NewJSONAuthRequest("PUT", "/profile/preferences", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSettings(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := ProfileSettingsIn{DailySuggestionEnabled: BoolPointer(true)}
	req := test.NewJSONAuthRequest("PUT", "/profile/settings", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.True(t, updated.DailySuggestionEnabled)
}

func TestRegisterPushToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db)

	reqBody := models.UserPushIn{Token: "new-device-token", Platform: "android"}
	req := test.NewJSONAuthRequest("POST", "/profile/push", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Registering the same token again refreshes instead of duplicating.
	repeatRec := httptest.NewRecorder()
	e.ServeHTTP(repeatRec, test.NewJSONAuthRequest("POST", "/profile/push", strconv.FormatUint(uint64(user.ID), 10), reqBody))
	require.Equal(t, http.StatusOK, repeatRec.Code)

	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? AND token = ?", user.ID, "new-device-token").Count(&count)
	assert.Equal(t, int64(1), count)
}

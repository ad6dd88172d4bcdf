package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlatform_Scenario(t *testing.T) {
	svc := newTestServices(t, nil)
	ctx := context.Background()

	p, err := svc.platforms.CreatePlatform(ctx, &CreatePlatformRequest{
		Name:   "2Captcha",
		APIKey: "x",
		APIURL: "https://api.2captcha.com",
	})
	require.NoError(t, err)
	assert.Equal(t, types.PlatformConnected, p.Status)
	assert.Equal(t, 0, p.JobsCompleted)
	assert.Equal(t, float64(0), p.SuccessRate)

	list, err := svc.platforms.ListPlatforms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestCreatePlatform_Validation(t *testing.T) {
	svc := newTestServices(t, nil)

	_, err := svc.platforms.CreatePlatform(context.Background(), &CreatePlatformRequest{APIURL: "not a url"})
	requireCode(t, err, http.StatusBadRequest, apperrors.CodeValidation)

	fields := apperrors.Categorize(err).Details["fields"].([]apperrors.FieldError)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "apiUrl"}, names)
}

func TestUpdateAndDeletePlatform(t *testing.T) {
	svc := newTestServices(t, nil)
	ctx := context.Background()

	p, err := svc.platforms.CreatePlatform(ctx, &CreatePlatformRequest{Name: "Anti-Captcha", APIURL: "https://api.anti-captcha.com"})
	require.NoError(t, err)

	status := "disconnected"
	updated, err := svc.platforms.UpdatePlatform(ctx, p.ID, &UpdatePlatformRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, types.PlatformDisconnected, updated.Status)
	assert.Equal(t, "Anti-Captcha", updated.Name)

	bad := "paused"
	_, err = svc.platforms.UpdatePlatform(ctx, p.ID, &UpdatePlatformRequest{Status: &bad})
	requireCode(t, err, http.StatusBadRequest, apperrors.CodeValidation)

	_, err = svc.platforms.UpdatePlatform(ctx, "missing", &UpdatePlatformRequest{Status: &status})
	requireCode(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	require.NoError(t, svc.platforms.DeletePlatform(ctx, p.ID))
	err = svc.platforms.DeletePlatform(ctx, p.ID)
	requireCode(t, err, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestAutoProcessSetting(t *testing.T) {
	svc := newTestServices(t, nil)
	ctx := context.Background()

	enabled, err := svc.settings.GetAutoProcess(ctx)
	require.NoError(t, err)
	assert.False(t, enabled, "off until someone turns it on")

	enabled, err = svc.settings.SetAutoProcess(ctx, true)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = svc.settings.GetAutoProcess(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	logs, _ := svc.activity.ListActivityLogs(ctx, 1)
	assert.Equal(t, "Auto-process enabled", logs[0].Action)

	_, err = svc.store.SetSetting(ctx, types.SettingAutoProcess, json.RawMessage(`"yes"`))
	require.NoError(t, err)
	enabled, err = svc.settings.GetAutoProcess(ctx)
	require.NoError(t, err)
	assert.False(t, enabled, "a non-boolean value reads as off")
}

func TestActivityLimits(t *testing.T) {
	svc := newTestServices(t, nil)
	ctx := context.Background()

	for i := 0; i < DefaultActivityLimit+5; i++ {
		svc.activity.Record(ctx, nil, "tick", "", types.ActivityInfo)
	}

	logs, err := svc.activity.ListActivityLogs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, DefaultActivityLimit)

	logs, err = svc.activity.ListActivityLogs(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestGetCurrentUser(t *testing.T) {
	svc := newTestServices(t, nil)
	users := NewUserService(svc.store)

	u, err := users.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo_user", u.Username)
	assert.True(t, u.Balance.IsZero())
}

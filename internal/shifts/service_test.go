package shifts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess, err := session.NewContext(session.NewMemStore(), session.NewMemStore())
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := apiclient.New(apiclient.Options{
		Config:  config.APIConfig{BaseURL: server.URL},
		Session: sess,
		Logger:  logg,
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{Client: client, Logger: logg})
	require.NoError(t, err)
	return svc
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	start := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateShiftInput{Start: start, End: start})
	require.Error(t, err)
}

func TestListPassesFilters(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "icu", r.URL.Query().Get("unit"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "sh1", "user_id": "u1", "unit": "icu"},
		})
	})

	list, err := svc.List(context.Background(), ListShiftsInput{UserID: "u1", Unit: "icu"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sh1", list[0].ID)
}

func TestListAcceptsEnvelope(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"shifts": []map[string]any{{"id": "sh1"}, {"id": "sh2"}},
		})
	})

	list, err := svc.List(context.Background(), ListShiftsInput{})
	require.NoError(t, err)
	require.Len(t, list, 2)
}

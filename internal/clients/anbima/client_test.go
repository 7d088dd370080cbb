package anbima

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/feriados/arqs/feriados_nacionais.xls", r.URL.Path)
		_, _ = w.Write([]byte("spreadsheet-bytes"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/feriados/arqs/feriados_nacionais.xls", zerolog.New(nil).Level(zerolog.Disabled))
	body, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet-bytes", string(body))
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantErr: "status 503",
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			wantErr: "empty body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, zerolog.New(nil).Level(zerolog.Disabled))
			_, err := client.Fetch(context.Background())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClient_FetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, zerolog.New(nil).Level(zerolog.Disabled))
	_, err := client.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_DefaultURL(t *testing.T) {
	client := NewClient("", zerolog.New(nil).Level(zerolog.Disabled))
	assert.Equal(t, DefaultURL, client.URL())
}

func TestClient_ParseRejectsNonWorkbook(t *testing.T) {
	client := NewClient("", zerolog.New(nil).Level(zerolog.Disabled))
	_, err := client.Parse([]byte("Data\n2023-01-01\n"))
	assert.Error(t, err)
}

package tests

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

func Test_serverApi_rootAndHealth(t *testing.T) {
	tests := []httpTest{
		{
			name: "root payload", method: http.MethodGet, path: "/",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{
				"message": "University Wellbeing API",
				"status":  "running",
				"version": core.Conf.Build,
			}),
		},
		{
			name: "health", method: http.MethodGet, path: "/health",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{"status": "healthy"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

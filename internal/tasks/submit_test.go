// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/transport"
	"github.com/staranto/clinicctl/internal/transport/transporttest"
)

func accepted() *transporttest.Fake {
	return transporttest.New(func(context.Context, transporttest.Call) (*transport.Response, error) {
		return transporttest.WithStatus(http.StatusAccepted,
			`{"message":"Export started successfully","task_id":"abc-123","status_url":"/api/tasks/status/abc-123"}`), nil
	})
}

func TestSubmit_Templates(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		params   Params
		wantPath string
		wantBody string
	}{
		{
			name:     "patient history",
			kind:     KindPatientHistory,
			wantPath: "/tasks/export/patient-history",
		},
		{
			name:     "doctor appointments",
			kind:     KindDoctorAppointments,
			params:   Params{StartDate: "2025-01-01", EndDate: "2025-01-31"},
			wantPath: "/tasks/export/doctor-appointments",
			wantBody: `{"start_date":"2025-01-01","end_date":"2025-01-31"}`,
		},
		{
			name:     "custom report with email",
			kind:     KindCustomReport,
			params:   Params{StartDate: "2025-02-01", EndDate: "2025-02-01", Email: "dr.who@clinic.example"},
			wantPath: "/tasks/reports/custom",
			wantBody: `{"start_date":"2025-02-01","end_date":"2025-02-01","email":"dr.who@clinic.example"}`,
		},
		{
			name:     "custom report without email",
			kind:     KindCustomReport,
			params:   Params{StartDate: "2025-02-01", EndDate: "2025-02-28"},
			wantPath: "/tasks/reports/custom",
			wantBody: `{"start_date":"2025-02-01","end_date":"2025-02-28"}`,
		},
		{
			name:     "custom reminder",
			kind:     KindCustomReminder,
			params:   Params{AppointmentID: 42},
			wantPath: "/tasks/reminders/custom",
			wantBody: `{"appointment_id":42}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := accepted()
			h, err := NewSubmitter(tr).Submit(context.Background(), tt.kind, tt.params)
			require.NoError(t, err)

			assert.Equal(t, "abc-123", h.TaskID)
			assert.Equal(t, Pending, h.Status)
			assert.Equal(t, "Export started successfully", h.Message)
			assert.Equal(t, "/api/tasks/status/abc-123", h.StatusURL)
			assert.Contains(t, string(h.Raw), `"task_id":"abc-123"`)

			calls := tr.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, http.MethodPost, calls[0].Method)
			assert.Equal(t, tt.wantPath, calls[0].Path)
			if tt.wantBody == "" {
				assert.Nil(t, calls[0].Req.Body)
				return
			}
			b, err := json.Marshal(calls[0].Req.Body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBody, string(b))
		})
	}
}

func TestSubmit_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		params Params
	}{
		{name: "missing dates", kind: KindDoctorAppointments},
		{name: "missing end", kind: KindDoctorAppointments, params: Params{StartDate: "2025-01-01"}},
		{name: "bad layout", kind: KindDoctorAppointments, params: Params{StartDate: "01/01/2025", EndDate: "2025-01-31"}},
		{name: "impossible date", kind: KindCustomReport, params: Params{StartDate: "2025-02-30", EndDate: "2025-03-01"}},
		{name: "reversed range", kind: KindCustomReport, params: Params{StartDate: "2025-03-01", EndDate: "2025-02-01"}},
		{name: "bad email", kind: KindCustomReport, params: Params{StartDate: "2025-01-01", EndDate: "2025-01-02", Email: "not-an-email"}},
		{name: "display name email", kind: KindCustomReport, params: Params{StartDate: "2025-01-01", EndDate: "2025-01-02", Email: "Dr Who <who@clinic.example>"}},
		{name: "no appointment", kind: KindCustomReminder},
		{name: "negative appointment", kind: KindCustomReminder, params: Params{AppointmentID: -3}},
		{name: "unknown kind", kind: Kind(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := accepted()
			_, err := NewSubmitter(tr).Submit(context.Background(), tt.kind, tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrValidation)
			assert.Equal(t, 0, tr.Count())
		})
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	tr := transporttest.New(func(_ context.Context, call transporttest.Call) (*transport.Response, error) {
		return nil, transporttest.Failure(call.Method, call.Path, http.StatusBadRequest, `{"error":"start_date and end_date are required"}`)
	})

	_, err := NewSubmitter(tr).Submit(context.Background(), KindPatientHistory, Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.Equal(t, "start_date and end_date are required", apierr.Message(err, KindPatientHistory.Fallback()))
}

func TestSubmit_MissingTaskID(t *testing.T) {
	tr := transporttest.New(func(context.Context, transporttest.Call) (*transport.Response, error) {
		return transporttest.JSON(`{"message":"ok"}`), nil
	})

	_, err := NewSubmitter(tr).Submit(context.Background(), KindPatientHistory, Params{})
	require.Error(t, err)
	assert.Equal(t, apierr.KindTransport, apierr.KindOf(err))
	assert.Equal(t, MsgExportFailed, apierr.Message(err, KindPatientHistory.Fallback()))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "doctor-appointments", KindDoctorAppointments.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Equal(t, MsgReportFailed, KindCustomReport.Fallback())
}

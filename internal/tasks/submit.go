// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/apex/log"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/transport"
)

// DateLayout is the wire format of start_date and end_date.
const DateLayout = "2006-01-02"

// Fallback messages used when the server supplies none.
const (
	MsgExportFailed   = "Failed to start export"
	MsgReportFailed   = "Failed to generate report"
	MsgReminderFailed = "Failed to send reminder"
)

// Kind selects a job template.
type Kind int

const (
	KindPatientHistory Kind = iota
	KindDoctorAppointments
	KindCustomReport
	KindCustomReminder

	kindCount
)

// Params carries every template's inputs. Each Kind reads only the fields it
// needs.
type Params struct {
	StartDate     string
	EndDate       string
	Email         string
	AppointmentID int
}

type dateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type reportBody struct {
	dateRange
	Email string `json:"email,omitempty"`
}

type reminderBody struct {
	AppointmentID int `json:"appointment_id"`
}

type template struct {
	name     string
	path     string
	fallback string
	// body validates p and returns the request body, nil for none.
	body func(p Params) (any, error)
}

var templates = [kindCount]template{
	KindPatientHistory: {
		name:     "patient-history",
		path:     "/tasks/export/patient-history",
		fallback: MsgExportFailed,
		body:     func(Params) (any, error) { return nil, nil },
	},
	KindDoctorAppointments: {
		name:     "doctor-appointments",
		path:     "/tasks/export/doctor-appointments",
		fallback: MsgExportFailed,
		body: func(p Params) (any, error) {
			dr, err := validateRange(p)
			if err != nil {
				return nil, err
			}
			return dr, nil
		},
	},
	KindCustomReport: {
		name:     "custom-report",
		path:     "/tasks/reports/custom",
		fallback: MsgReportFailed,
		body: func(p Params) (any, error) {
			dr, err := validateRange(p)
			if err != nil {
				return nil, err
			}
			if p.Email != "" {
				if err := validateEmail(p.Email); err != nil {
					return nil, err
				}
			}
			return reportBody{dateRange: dr, Email: p.Email}, nil
		},
	},
	KindCustomReminder: {
		name:     "custom-reminder",
		path:     "/tasks/reminders/custom",
		fallback: MsgReminderFailed,
		body: func(p Params) (any, error) {
			if p.AppointmentID <= 0 {
				return nil, fmt.Errorf("appointment_id is required")
			}
			return reminderBody{AppointmentID: p.AppointmentID}, nil
		},
	},
}

func (k Kind) valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return templates[k].name
}

// Fallback is the message shown when a submission of k fails without a
// server message.
func (k Kind) Fallback() string {
	if !k.valid() {
		return MsgExportFailed
	}
	return templates[k].fallback
}

func validateRange(p Params) (dateRange, error) {
	if p.StartDate == "" || p.EndDate == "" {
		return dateRange{}, fmt.Errorf("start_date and end_date are required")
	}
	start, err := time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return dateRange{}, fmt.Errorf("start_date %q is not YYYY-MM-DD", p.StartDate)
	}
	end, err := time.Parse(DateLayout, p.EndDate)
	if err != nil {
		return dateRange{}, fmt.Errorf("end_date %q is not YYYY-MM-DD", p.EndDate)
	}
	if end.Before(start) {
		return dateRange{}, fmt.Errorf("start_date %s is after end_date %s", p.StartDate, p.EndDate)
	}
	return dateRange{StartDate: p.StartDate, EndDate: p.EndDate}, nil
}

// validateEmail accepts a bare address only; "Name <a@b>" is rejected.
func validateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("email %q is not a valid address", s)
	}
	return nil
}

// Submitter starts jobs.
type Submitter struct {
	tr transport.Transport
}

// NewSubmitter returns a Submitter using tr.
func NewSubmitter(tr transport.Transport) *Submitter {
	return &Submitter{tr: tr}
}

// Submit validates p against kind's template and, if it passes, posts the
// job. Validation failures never reach the network.
func (s *Submitter) Submit(ctx context.Context, kind Kind, p Params) (Handle, error) {
	op := "submit " + kind.String()
	if !kind.valid() {
		return Handle{}, apierr.Validation(op, "unknown task kind %d", int(kind))
	}

	tpl := templates[kind]
	body, err := tpl.body(p)
	if err != nil {
		return Handle{}, &apierr.Error{Kind: apierr.KindValidation, Op: op, Message: err.Error()}
	}

	resp, err := s.tr.Post(ctx, tpl.path, transport.Request{Body: body})
	if err != nil {
		return Handle{}, apierr.Wrap(err, op)
	}

	var h Handle
	if err := json.Unmarshal(resp.Data, &h); err != nil {
		return Handle{}, &apierr.Error{Kind: apierr.KindTransport, Op: op, Message: "malformed response", Err: err}
	}
	if h.TaskID == "" {
		return Handle{}, apierr.New(apierr.KindTransport, op, "response carries no task_id")
	}
	if h.Status == "" {
		h.Status = Pending
	}
	h.Raw = resp.Data

	log.WithFields(log.Fields{"kind": kind, "task_id": h.TaskID}).Debug("task submitted")
	return h, nil
}

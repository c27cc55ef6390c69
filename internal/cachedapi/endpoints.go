// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cachedapi

import (
	"context"
	"fmt"

	"github.com/google/go-querystring/query"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/role"
)

// DoctorQuery filters the doctor listing. Zero values are omitted.
type DoctorQuery struct {
	Search       string `url:"search,omitempty"`
	DepartmentID int    `url:"department_id,omitempty"`
}

// AppointmentQuery filters the patient appointment listing.
type AppointmentQuery struct {
	Status string `url:"status,omitempty"`
}

// dashboardPaths is indexed by role. Its length is role.Count, so adding a
// role without a path is a compile error.
var dashboardPaths = [role.Count]string{
	role.Admin:   "/cached/admin/dashboard/stats",
	role.Doctor:  "/cached/doctor/dashboard/stats",
	role.Patient: "/cached/patient/dashboard/stats",
}

// withQuery appends the encoded form of q to path.
func withQuery(path string, q any) (string, error) {
	v, err := query.Values(q)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	if enc := v.Encode(); enc != "" {
		return path + "?" + enc, nil
	}
	return path, nil
}

// Doctors lists doctors, optionally filtered by name and department.
func (c *Client) Doctors(ctx context.Context, q DoctorQuery, force bool) (Payload, error) {
	url, err := withQuery("/cached/doctors", q)
	if err != nil {
		return Payload{}, err
	}
	return c.Get(ctx, url, Options{ForceRefresh: force})
}

// DoctorDetail reads a single doctor.
func (c *Client) DoctorDetail(ctx context.Context, id int, force bool) (Payload, error) {
	if id <= 0 {
		return Payload{}, apierr.Validation("doctor detail", "doctor id must be positive, got %d", id)
	}
	return c.Get(ctx, fmt.Sprintf("/cached/doctors/%d", id), Options{ForceRefresh: force})
}

// Departments lists departments.
func (c *Client) Departments(ctx context.Context, force bool) (Payload, error) {
	return c.Get(ctx, "/cached/departments", Options{ForceRefresh: force})
}

// PatientAppointments lists the caller's appointments, optionally filtered by
// status.
func (c *Client) PatientAppointments(ctx context.Context, status string, force bool) (Payload, error) {
	url, err := withQuery("/cached/patient/appointments", AppointmentQuery{Status: status})
	if err != nil {
		return Payload{}, err
	}
	return c.Get(ctx, url, Options{ForceRefresh: force})
}

// DashboardStats reads the dashboard for r. An invalid role is rejected
// before any request is made.
func (c *Client) DashboardStats(ctx context.Context, r role.Role, force bool) (Payload, error) {
	if !r.Valid() {
		return Payload{}, apierr.Validation("dashboard stats", "Invalid role for dashboard stats: %s", r)
	}
	return c.Get(ctx, dashboardPaths[r], Options{ForceRefresh: force})
}

// DashboardStatsFor parses name and calls DashboardStats.
func (c *Client) DashboardStatsFor(ctx context.Context, name string, force bool) (Payload, error) {
	r, err := role.Parse(name)
	if err != nil {
		return Payload{}, &apierr.Error{
			Kind:    apierr.KindValidation,
			Op:      "dashboard stats",
			Message: "Invalid role for dashboard stats",
			Err:     err,
		}
	}
	return c.DashboardStats(ctx, r, force)
}

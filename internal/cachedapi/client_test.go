// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cachedapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/cache"
	"github.com/staranto/clinicctl/internal/role"
	"github.com/staranto/clinicctl/internal/transport"
	"github.com/staranto/clinicctl/internal/transport/transporttest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// echoServer answers every GET with a body naming the path and a counter.
func echoServer() *transporttest.Fake {
	var mu sync.Mutex
	n := 0
	return transporttest.New(func(_ context.Context, call transporttest.Call) (*transport.Response, error) {
		mu.Lock()
		n++
		body := `{"path":"` + call.Path + `","n":` + strconv.Itoa(n) + `}`
		mu.Unlock()
		return transporttest.JSON(body), nil
	})
}

func newClient(tr transport.Transport) (*Client, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(cache.New(cache.WithClock(clock)), tr), clock
}

func TestGet_HitSkipsNetwork(t *testing.T) {
	tr := echoServer()
	c, _ := newClient(tr)
	ctx := context.Background()

	first, err := c.Get(ctx, "/cached/departments", Options{})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := c.Get(ctx, "/cached/departments", Options{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.JSONEq(t, string(first.Data), string(second.Data))
	assert.Equal(t, 1, tr.Count())
}

func TestGet_ExpiredEntryRefetched(t *testing.T) {
	tr := echoServer()
	c, clock := newClient(tr)
	ctx := context.Background()

	_, err := c.Get(ctx, "/cached/departments", Options{})
	require.NoError(t, err)

	clock.Advance(299999 * time.Millisecond)
	p, err := c.Get(ctx, "/cached/departments", Options{})
	require.NoError(t, err)
	assert.True(t, p.Cached)

	clock.Advance(2 * time.Millisecond)
	p, err = c.Get(ctx, "/cached/departments", Options{})
	require.NoError(t, err)
	assert.False(t, p.Cached)
	assert.Equal(t, 2, tr.Count())
}

func TestGet_ForceRefreshBypassesAndOverwrites(t *testing.T) {
	tr := echoServer()
	c, _ := newClient(tr)
	ctx := context.Background()

	_, err := c.Get(ctx, "/cached/doctors/3", Options{})
	require.NoError(t, err)

	forced, err := c.Get(ctx, "/cached/doctors/3", Options{ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, forced.Cached)
	assert.Equal(t, 2, tr.Count())
	assert.Equal(t, int64(2), jsonInt(t, forced.Data, "n"))

	after, err := c.Get(ctx, "/cached/doctors/3", Options{})
	require.NoError(t, err)
	assert.True(t, after.Cached)
	assert.Equal(t, forced.Data, after.Data)
	assert.Equal(t, 2, tr.Count())
}

func TestGet_TransportErrorNotCached(t *testing.T) {
	tr := transporttest.New(func(_ context.Context, call transporttest.Call) (*transport.Response, error) {
		return nil, transporttest.Failure(call.Method, call.Path, http.StatusBadGateway, `{"error":"upstream down"}`)
	})
	c, _ := newClient(tr)

	_, err := c.Get(context.Background(), "/cached/departments", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.Equal(t, 0, c.Store().Len())
}

func TestShouldCache(t *testing.T) {
	withLength := func(status int, length string) *transport.Response {
		h := http.Header{}
		if length != "" {
			h.Set("Content-Length", length)
		}
		return &transport.Response{Status: status, Header: h}
	}

	tests := []struct {
		name string
		resp *transport.Response
		opts Options
		want bool
	}{
		{name: "ok no length", resp: withLength(200, ""), want: true},
		{name: "ok small", resp: withLength(200, "512"), want: true},
		{name: "ok at limit", resp: withLength(200, "100000"), want: true},
		{name: "ok over limit", resp: withLength(200, "100001"), want: false},
		{name: "ok unparseable length", resp: withLength(200, "big"), want: true},
		{name: "no cache flag", resp: withLength(200, "10"), opts: Options{NoCache: true}, want: false},
		{name: "created", resp: withLength(201, "10"), want: false},
		{name: "no content", resp: withLength(204, ""), want: false},
		{name: "nil", resp: nil, want: false},
	}

	c := New(cache.New(), transporttest.New(nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ShouldCache(tt.resp, tt.opts))
		})
	}
}

func TestShouldCache_CustomLimit(t *testing.T) {
	c := New(cache.New(), transporttest.New(nil), WithMaxCacheableBytes(10))
	resp := transporttest.JSON(`{"departments":[]}`)
	assert.False(t, c.ShouldCache(resp, Options{}))
}

func TestGet_NoCacheLeavesStoreEmpty(t *testing.T) {
	tr := echoServer()
	c, _ := newClient(tr)

	_, err := c.Get(context.Background(), "/cached/departments", Options{NoCache: true})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Store().Len())
}

func TestGet_WithNoStore(t *testing.T) {
	tr := echoServer()
	c := New(cache.New(), tr, WithNoStore(true))

	for range 2 {
		_, err := c.Departments(context.Background(), false)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, c.Store().Len())
	assert.Equal(t, 2, tr.Count())
}

func TestGet_ConcurrentMissesShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	tr := transporttest.New(func(_ context.Context, _ transporttest.Call) (*transport.Response, error) {
		<-release
		return transporttest.JSON(`{"departments":[]}`), nil
	})
	c, _ := newClient(tr)

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.Departments(context.Background(), false)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"departments":[]}`, string(p.Data))
		}()
	}

	// Give every goroutine time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, tr.Count())
	assert.Equal(t, 1, c.Store().Len())
}

func TestGet_JoinedCallerSurvivesFirstCallerCancel(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var fetchErr error
	tr := transporttest.New(func(ctx context.Context, _ transporttest.Call) (*transport.Response, error) {
		close(entered)
		<-release
		fetchErr = ctx.Err()
		return transporttest.JSON(`{"departments":[{"id":1}]}`), nil
	})
	c, _ := newClient(tr)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Departments(first, false)
		firstErr <- err
	}()
	<-entered

	type result struct {
		p   Payload
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := c.Departments(context.Background(), false)
		second <- result{p, err}
	}()
	// Let the second caller join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, apierr.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.JSONEq(t, `{"departments":[{"id":1}]}`, string(got.p.Data))
	assert.NoError(t, fetchErr)
	assert.Equal(t, 1, tr.Count())
	assert.Equal(t, 1, c.Store().Len())
}

func TestGet_CallerCannotCorruptCache(t *testing.T) {
	tr := transporttest.New(func(_ context.Context, _ transporttest.Call) (*transport.Response, error) {
		return transporttest.JSON(`{"departments":[]}`), nil
	})
	c, _ := newClient(tr)

	p, err := c.Departments(context.Background(), false)
	require.NoError(t, err)
	p.Data[0] = 'X'

	hit, err := c.Departments(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, hit.Cached)
	assert.JSONEq(t, `{"departments":[]}`, string(hit.Data))

	hit.Data[0] = 'Y'
	again, err := c.Departments(context.Background(), false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"departments":[]}`, string(again.Data))
	assert.Equal(t, 1, tr.Count())
}

func TestDoctors_QueryEncoding(t *testing.T) {
	tests := []struct {
		name string
		q    DoctorQuery
		want string
	}{
		{name: "empty", q: DoctorQuery{}, want: "/cached/doctors"},
		{name: "search", q: DoctorQuery{Search: "ann lee"}, want: "/cached/doctors?search=ann+lee"},
		{name: "both", q: DoctorQuery{Search: "x", DepartmentID: 4}, want: "/cached/doctors?department_id=4&search=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := echoServer()
			c, _ := newClient(tr)

			_, err := c.Doctors(context.Background(), tt.q, false)
			require.NoError(t, err)
			require.Equal(t, 1, tr.Count())
			assert.Equal(t, tt.want, tr.Calls()[0].Path)

			_, ok := c.Store().Get(cache.Key("GET", tt.want))
			assert.True(t, ok)
		})
	}
}

func TestPatientAppointments(t *testing.T) {
	tr := echoServer()
	c, _ := newClient(tr)
	ctx := context.Background()

	_, err := c.PatientAppointments(ctx, "", false)
	require.NoError(t, err)
	_, err = c.PatientAppointments(ctx, "booked", false)
	require.NoError(t, err)

	calls := tr.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/cached/patient/appointments", calls[0].Path)
	assert.Equal(t, "/cached/patient/appointments?status=booked", calls[1].Path)
}

func TestDoctorDetail_RejectsBadID(t *testing.T) {
	tr := echoServer()
	c, _ := newClient(tr)

	_, err := c.DoctorDetail(context.Background(), 0, false)
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.Equal(t, 0, tr.Count())
}

func TestDashboardStats_EveryRole(t *testing.T) {
	want := map[role.Role]string{
		role.Admin:   "/cached/admin/dashboard/stats",
		role.Doctor:  "/cached/doctor/dashboard/stats",
		role.Patient: "/cached/patient/dashboard/stats",
	}
	require.Len(t, want, int(role.Count))

	for _, r := range role.All() {
		t.Run(r.String(), func(t *testing.T) {
			tr := echoServer()
			c, _ := newClient(tr)

			_, err := c.DashboardStats(context.Background(), r, false)
			require.NoError(t, err)
			require.Equal(t, 1, tr.Count())
			assert.Equal(t, want[r], tr.Calls()[0].Path)
		})
	}
}

func TestDashboardStats_InvalidRoleNoNetwork(t *testing.T) {
	tests := []string{"nurse", "", "ADMIN", "superuser"}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			tr := echoServer()
			c, _ := newClient(tr)

			_, err := c.DashboardStatsFor(context.Background(), name, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrValidation)
			assert.Equal(t, "Invalid role for dashboard stats", apierr.Message(err, "x"))
			assert.Equal(t, 0, tr.Count())
		})
	}

	tr := echoServer()
	c, _ := newClient(tr)
	_, err := c.DashboardStats(context.Background(), role.Count, false)
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.Equal(t, 0, tr.Count())
}

func jsonInt(t *testing.T, data []byte, field string) int64 {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	f, ok := m[field].(float64)
	require.True(t, ok)
	return int64(f)
}

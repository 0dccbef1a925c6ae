package service

import (
	"context"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/config"
	"github.com/Leganyst/production-scheduler/internal/db/dbtest"
	"github.com/Leganyst/production-scheduler/internal/placement"
)

type testServer struct {
	capacity *CapacityService
	lines    *LineService
	conn     *grpc.ClientConn
}

// Среда, 2024-01-03, 12:00 UTC.
var fixedNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb := dbtest.New(t)
	quiet := log.New(io.Discard, "", 0)

	engine := capacity.NewEngine(gdb, config.DefaultEngineConfig(),
		capacity.WithLogger(quiet),
		capacity.WithClock(func() time.Time { return fixedNow }),
	)
	placer := placement.NewPlacer(engine, 60)

	ts := &testServer{
		capacity: NewCapacityService(engine, placer),
		lines:    NewLineService(engine, placement.NewService(gdb, placer, quiet)),
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCapacityServiceServer(srv, ts.capacity)
	RegisterLineServiceServer(srv, ts.lines)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	ts.conn = conn
	return ts
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return s
}

func (ts *testServer) call(t *testing.T, svc, method string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()
	return Invoke(context.Background(), ts.conn, svc, method, mustStruct(t, req))
}

func (ts *testServer) mustCall(t *testing.T, svc, method string, req map[string]any) *structpb.Struct {
	t.Helper()
	out, err := ts.call(t, svc, method, req)
	if err != nil {
		t.Fatalf("%s/%s: %v", svc, method, err)
	}
	return out
}

func expectCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if got := status.Code(err); got != want {
		t.Fatalf("expected code %s, got %s (%v)", want, got, err)
	}
}

func field(s *structpb.Struct, path ...string) *structpb.Value {
	v := structpb.NewStructValue(s)
	for _, key := range path {
		v = v.GetStructValue().GetFields()[key]
	}
	return v
}

func (ts *testServer) seedLine(t *testing.T) string {
	t.Helper()
	out := ts.mustCall(t, LineServiceName, "CreateLine", map[string]any{"name": "Line 1"})
	lineID := field(out, "line", "id").GetStringValue()

	ts.mustCall(t, CapacityServiceName, "CreateShift", map[string]any{
		"line_id":     lineID,
		"name":        "Day",
		"start_time":  "07:30",
		"end_time":    "16:30",
		"active_days": []any{1, 2, 3, 4, 5},
		"breaks": []any{
			map[string]any{"name": "Lunch", "start_time": "12:00", "end_time": "12:30"},
		},
	})
	return lineID
}

func TestCapacityService_CalendarOverGRPC(t *testing.T) {
	ts := newTestServer(t)
	lineID := ts.seedLine(t)

	ts.mustCall(t, CapacityServiceName, "CreateOverride", map[string]any{
		"line_id":     lineID,
		"start_date":  "2024-01-03",
		"end_date":    "2024-01-03",
		"total_hours": 10,
		"reason":      "Overtime",
	})

	out := ts.mustCall(t, CapacityServiceName, "GetCalendar", map[string]any{
		"line_id":    lineID,
		"start_date": "2024-01-01",
		"n_days":     7,
	})
	days := field(out, "days").GetListValue().GetValues()
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}

	want := []string{"8.5", "8.5", "10", "8.5", "8.5", "0", "0"}
	for i, d := range days {
		f := d.GetStructValue().GetFields()
		if got := f["hours"].GetStringValue(); got != want[i] {
			t.Fatalf("day %d: hours = %q, want %s", i, got, want[i])
		}
	}

	wed := days[2].GetStructValue().GetFields()
	if !wed["is_override"].GetBoolValue() || wed["reason"].GetStringValue() != "Overtime" || wed["shifts_count"].GetNumberValue() != 0 {
		t.Fatalf("unexpected override day: %v", wed)
	}
	mon := days[0].GetStructValue().GetFields()
	if !mon["is_default"].GetBoolValue() || mon["shifts_count"].GetNumberValue() != 1 {
		t.Fatalf("unexpected default day: %v", mon)
	}
	if got := field(out, "total_hours").GetStringValue(); got != "44" {
		t.Fatalf("total_hours = %s, want 44", got)
	}
}

func TestCapacityService_DefaultCalendarUsesLineToday(t *testing.T) {
	ts := newTestServer(t)
	lineID := ts.seedLine(t)

	out := ts.mustCall(t, CapacityServiceName, "GetCalendar", map[string]any{"line_id": lineID})
	days := field(out, "days").GetListValue().GetValues()
	if len(days) != 56 {
		t.Fatalf("expected 8 weeks, got %d days", len(days))
	}
	if got := field(out, "start_date").GetStringValue(); got != "2024-01-01" {
		t.Fatalf("start_date = %s, want 2024-01-01", got)
	}

	out = ts.mustCall(t, CapacityServiceName, "GetCalendar", map[string]any{"line_id": lineID, "n_days": 10})
	days = field(out, "days").GetListValue().GetValues()
	if len(days) != 10 {
		t.Fatalf("n_days without start_date: expected 10 days, got %d", len(days))
	}
	if got := field(out, "start_date").GetStringValue(); got != "2024-01-01" {
		t.Fatalf("start_date = %s, want 2024-01-01", got)
	}
}

func TestCapacityService_ErrorCodes(t *testing.T) {
	ts := newTestServer(t)
	lineID := ts.seedLine(t)

	_, err := ts.call(t, CapacityServiceName, "GetCalendar", map[string]any{"line_id": "not-a-uuid"})
	expectCode(t, err, codes.InvalidArgument)

	_, err = ts.call(t, CapacityServiceName, "GetCalendar", map[string]any{
		"line_id":    "0191f6a0-0000-7000-8000-000000000001",
		"start_date": "2024-01-01",
	})
	expectCode(t, err, codes.NotFound)

	_, err = ts.call(t, CapacityServiceName, "GetCalendar", map[string]any{
		"line_id":    lineID,
		"start_date": "2024-01-01",
		"n_days":     -1,
	})
	expectCode(t, err, codes.InvalidArgument)

	_, err = ts.call(t, CapacityServiceName, "CreateOverride", map[string]any{
		"line_id":     lineID,
		"start_date":  "2024-01-05",
		"end_date":    "2024-01-01",
		"total_hours": 4,
	})
	expectCode(t, err, codes.InvalidArgument)

	_, err = ts.call(t, CapacityServiceName, "DeleteShift", map[string]any{"id": "0191f6a0-0000-7000-8000-000000000002"})
	expectCode(t, err, codes.NotFound)
}

func TestCapacityService_ShiftLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	lineID := ts.seedLine(t)

	list, err := ts.capacity.ListShifts(ctx, mustStruct(t, map[string]any{"line_id": lineID}))
	if err != nil {
		t.Fatalf("list shifts: %v", err)
	}
	shifts := field(list, "shifts").GetListValue().GetValues()
	if len(shifts) != 1 {
		t.Fatalf("expected one shift, got %d", len(shifts))
	}
	shiftID := shifts[0].GetStructValue().GetFields()["id"].GetStringValue()

	out, err := ts.capacity.UpdateShift(ctx, mustStruct(t, map[string]any{"id": shiftID, "end_time": "17:30"}))
	if err != nil {
		t.Fatalf("update shift: %v", err)
	}
	if got := field(out, "shift", "end").GetStringValue(); got != "17:30:00" {
		t.Fatalf("end = %q, want 17:30:00", got)
	}

	day, err := ts.capacity.GetEffectiveDay(ctx, mustStruct(t, map[string]any{"line_id": lineID, "date": "2024-01-02"}))
	if err != nil {
		t.Fatalf("effective day: %v", err)
	}
	if got := field(day, "hours").GetStringValue(); got != "9.5" {
		t.Fatalf("hours after update = %s, want 9.5", got)
	}

	if _, err := ts.capacity.DeleteShift(ctx, mustStruct(t, map[string]any{"id": shiftID})); err != nil {
		t.Fatalf("delete shift: %v", err)
	}
	_, err = ts.capacity.DeleteShift(ctx, mustStruct(t, map[string]any{"id": shiftID}))
	expectCode(t, err, codes.NotFound)
}

func TestCapacityService_OvertimeAndLatestStart(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	lineID := ts.seedLine(t)

	out, err := ts.capacity.AddOvertime(ctx, mustStruct(t, map[string]any{
		"line_id":     lineID,
		"date":        "2024-01-04",
		"extra_hours": "1.5",
	}))
	if err != nil {
		t.Fatalf("add overtime: %v", err)
	}
	if got := field(out, "override", "total_hours").GetStringValue(); got != "10" {
		t.Fatalf("total_hours = %s, want 10", got)
	}

	// до пятницы 2024-01-05: чт 10 + ср 8.5 >= 15
	ls, err := ts.capacity.LatestStart(ctx, mustStruct(t, map[string]any{
		"line_id":  lineID,
		"due_date": "2024-01-05",
		"hours":    15,
	}))
	if err != nil {
		t.Fatalf("latest start: %v", err)
	}
	if got := field(ls, "latest_start").GetStringValue(); got != "2024-01-03" {
		t.Fatalf("latest_start = %s, want 2024-01-03", got)
	}
}

func TestLineService_CRUDAndPlacement(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	lineID := ts.seedLine(t)

	got := ts.mustCall(t, LineServiceName, "GetLine", map[string]any{"id": lineID})
	if field(got, "line", "time_zone").GetStringValue() != "America/Chicago" {
		t.Fatalf("expected default time zone, got %v", field(got, "line"))
	}

	_, err := ts.call(t, LineServiceName, "CreateLine", map[string]any{"name": "Line 1"})
	expectCode(t, err, codes.InvalidArgument)

	upd := ts.mustCall(t, LineServiceName, "UpdateLine", map[string]any{"id": lineID, "order_position": 3})
	if field(upd, "line", "order_position").GetNumberValue() != 3 {
		t.Fatalf("order_position was not updated")
	}

	// пустая очередь: раскладывать нечего
	placed, err := ts.lines.PlaceLine(ctx, mustStruct(t, map[string]any{"line_id": lineID}))
	if err != nil {
		t.Fatalf("place line: %v", err)
	}
	if field(placed, "anchor").GetStringValue() != "2024-01-03" {
		t.Fatalf("anchor = %v, want the line's today", field(placed, "anchor"))
	}
	if n := len(field(placed, "assignments").GetListValue().GetValues()); n != 0 {
		t.Fatalf("expected no assignments, got %d", n)
	}

	sched, err := ts.lines.GetSchedule(ctx, mustStruct(t, map[string]any{"line_id": lineID, "from": "2024-01-01", "to": "2024-01-31"}))
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if n := len(field(sched, "placements").GetListValue().GetValues()); n != 0 {
		t.Fatalf("expected empty schedule, got %d rows", n)
	}

	ts.mustCall(t, LineServiceName, "DeactivateLine", map[string]any{"id": lineID})
	all := ts.mustCall(t, LineServiceName, "ListLines", map[string]any{"active_only": false})
	active := ts.mustCall(t, LineServiceName, "ListLines", map[string]any{})
	if len(field(all, "lines").GetListValue().GetValues()) != 1 || len(field(active, "lines").GetListValue().GetValues()) != 0 {
		t.Fatalf("deactivated line should only appear with active_only=false")
	}
}

package service

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/dto"
	"github.com/Leganyst/production-scheduler/internal/placement"
)

type CapacityServiceServer interface {
	GetCalendar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEffectiveDay(context.Context, *structpb.Struct) (*structpb.Struct, error)

	ListShifts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteShift(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddBreak(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveBreak(context.Context, *structpb.Struct) (*structpb.Struct, error)

	ListOverrides(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateOverride(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateOverride(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteOverride(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddOvertime(context.Context, *structpb.Struct) (*structpb.Struct, error)

	LatestStart(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func capacityMethod(name string, pick func(CapacityServiceServer) method) grpc.MethodDesc {
	return unary(CapacityServiceName, name, func(srv any) method {
		return pick(srv.(CapacityServiceServer))
	})
}

var CapacityServiceDesc = grpc.ServiceDesc{
	ServiceName: CapacityServiceName,
	HandlerType: (*CapacityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		capacityMethod("GetCalendar", func(s CapacityServiceServer) method { return s.GetCalendar }),
		capacityMethod("GetEffectiveDay", func(s CapacityServiceServer) method { return s.GetEffectiveDay }),
		capacityMethod("ListShifts", func(s CapacityServiceServer) method { return s.ListShifts }),
		capacityMethod("CreateShift", func(s CapacityServiceServer) method { return s.CreateShift }),
		capacityMethod("UpdateShift", func(s CapacityServiceServer) method { return s.UpdateShift }),
		capacityMethod("DeleteShift", func(s CapacityServiceServer) method { return s.DeleteShift }),
		capacityMethod("AddBreak", func(s CapacityServiceServer) method { return s.AddBreak }),
		capacityMethod("RemoveBreak", func(s CapacityServiceServer) method { return s.RemoveBreak }),
		capacityMethod("ListOverrides", func(s CapacityServiceServer) method { return s.ListOverrides }),
		capacityMethod("CreateOverride", func(s CapacityServiceServer) method { return s.CreateOverride }),
		capacityMethod("UpdateOverride", func(s CapacityServiceServer) method { return s.UpdateOverride }),
		capacityMethod("DeleteOverride", func(s CapacityServiceServer) method { return s.DeleteOverride }),
		capacityMethod("AddOvertime", func(s CapacityServiceServer) method { return s.AddOvertime }),
		capacityMethod("LatestStart", func(s CapacityServiceServer) method { return s.LatestStart }),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterCapacityServiceServer(s grpc.ServiceRegistrar, srv CapacityServiceServer) {
	s.RegisterService(&CapacityServiceDesc, srv)
}

// CapacityService отдаёт календарь мощностей и управляет сменами и переопределениями.
type CapacityService struct {
	engine *capacity.Engine
	placer *placement.Placer
}

func NewCapacityService(engine *capacity.Engine, placer *placement.Placer) *CapacityService {
	return &CapacityService{engine: engine, placer: placer}
}

var _ CapacityServiceServer = (*CapacityService)(nil)

func empty() (*structpb.Struct, error) { return &structpb.Struct{}, nil }

// GetCalendar: line_id, start_date, n_days.
// Без start_date — календарь по умолчанию от начала текущей недели линии.
func (s *CapacityService) GetCalendar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	start, err := a.optDate("start_date")
	if err != nil {
		return nil, err
	}
	nDays, err := a.intOr("n_days", 0)
	if err != nil {
		return nil, err
	}

	// Без start_date календарь начинается с начала текущей недели линии; n_days действует и здесь.
	var from calendar.Date
	if start == nil {
		today, err := s.engine.Today(ctx, lineID)
		if err != nil {
			return nil, toStatus("get calendar", err)
		}
		from = calendar.WeekStartOf(today, s.engine.Config().WeekStart)
	} else {
		from = *start
	}

	days, err := s.engine.GetCalendar(ctx, lineID, from, nDays)
	if err != nil {
		return nil, toStatus("get calendar", err)
	}

	return reply(dto.ToCalendarResponse(lineID, from, days))
}

func (s *CapacityService) GetEffectiveDay(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	date, err := a.date("date")
	if err != nil {
		return nil, err
	}

	day, err := s.engine.EffectiveDay(ctx, lineID, date)
	if err != nil {
		return nil, toStatus("get effective day", err)
	}
	return reply(dto.ToDayResponse(day))
}

//
// Смены
//

func (s *CapacityService) ListShifts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	lineID, err := argsOf(req).uuid("line_id")
	if err != nil {
		return nil, err
	}
	shifts, err := s.engine.ListShifts(ctx, lineID)
	if err != nil {
		return nil, toStatus("list shifts", err)
	}
	return reply(map[string]any{"shifts": shifts})
}

func breakSpecOf(a args) (capacity.BreakSpec, error) {
	start, err := a.timeOfDay("start_time")
	if err != nil {
		return capacity.BreakSpec{}, err
	}
	end, err := a.timeOfDay("end_time")
	if err != nil {
		return capacity.BreakSpec{}, err
	}
	paid, err := a.boolOr("is_paid", false)
	if err != nil {
		return capacity.BreakSpec{}, err
	}
	return capacity.BreakSpec{Name: a.text("name"), Start: start, End: end, IsPaid: paid}, nil
}

func (s *CapacityService) CreateShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	start, err := a.timeOfDay("start_time")
	if err != nil {
		return nil, err
	}
	end, err := a.timeOfDay("end_time")
	if err != nil {
		return nil, err
	}
	days, err := a.optWeekdays("active_days")
	if err != nil {
		return nil, err
	}
	number, err := a.intOr("shift_number", 0)
	if err != nil {
		return nil, err
	}
	active, err := a.boolOr("active", true)
	if err != nil {
		return nil, err
	}

	spec := capacity.ShiftSpec{
		Name:        a.text("name"),
		ShiftNumber: number,
		Start:       start,
		End:         end,
		Active:      active,
	}
	if days != nil {
		spec.ActiveDays = *days
	}
	for _, v := range a.list("breaks") {
		b, err := breakSpecOf(argsOfValue(v))
		if err != nil {
			return nil, err
		}
		spec.Breaks = append(spec.Breaks, b)
	}

	id, err := s.engine.CreateShift(ctx, lineID, spec)
	if err != nil {
		return nil, toStatus("create shift", err)
	}
	return s.shiftReply(ctx, id)
}

func (s *CapacityService) UpdateShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	id, err := a.uuid("id")
	if err != nil {
		return nil, err
	}

	var patch capacity.ShiftPatch
	patch.Name = a.optText("name")
	if patch.ShiftNumber, err = a.optInt("shift_number"); err != nil {
		return nil, err
	}
	if patch.Start, err = a.optTimeOfDay("start_time"); err != nil {
		return nil, err
	}
	if patch.End, err = a.optTimeOfDay("end_time"); err != nil {
		return nil, err
	}
	if patch.ActiveDays, err = a.optWeekdays("active_days"); err != nil {
		return nil, err
	}
	if patch.Active, err = a.optBool("active"); err != nil {
		return nil, err
	}

	if err := s.engine.UpdateShift(ctx, id, patch); err != nil {
		return nil, toStatus("update shift", err)
	}
	return s.shiftReply(ctx, id)
}

func (s *CapacityService) DeleteShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := argsOf(req).uuid("id")
	if err != nil {
		return nil, err
	}
	if err := s.engine.DeleteShift(ctx, id); err != nil {
		return nil, toStatus("delete shift", err)
	}
	return empty()
}

func (s *CapacityService) AddBreak(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	shiftID, err := a.uuid("shift_id")
	if err != nil {
		return nil, err
	}
	spec, err := breakSpecOf(a)
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.AddBreak(ctx, shiftID, spec); err != nil {
		return nil, toStatus("add break", err)
	}
	return s.shiftReply(ctx, shiftID)
}

func (s *CapacityService) RemoveBreak(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := argsOf(req).uuid("id")
	if err != nil {
		return nil, err
	}
	if err := s.engine.RemoveBreak(ctx, id); err != nil {
		return nil, toStatus("remove break", err)
	}
	return empty()
}

func (s *CapacityService) shiftReply(ctx context.Context, id uuid.UUID) (*structpb.Struct, error) {
	sh, err := s.engine.GetShift(ctx, id)
	if err != nil {
		return nil, toStatus("get shift", err)
	}
	return reply(map[string]any{"shift": sh})
}

//
// Переопределения
//

func (s *CapacityService) ListOverrides(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	from, err := a.date("from")
	if err != nil {
		return nil, err
	}
	to, err := a.date("to")
	if err != nil {
		return nil, err
	}

	list, err := s.engine.ListOverrides(ctx, lineID, from, to)
	if err != nil {
		return nil, toStatus("list overrides", err)
	}
	return reply(map[string]any{"overrides": list})
}

func (s *CapacityService) CreateOverride(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	start, err := a.date("start_date")
	if err != nil {
		return nil, err
	}
	end, err := a.date("end_date")
	if err != nil {
		return nil, err
	}
	hours, err := a.decimal("total_hours")
	if err != nil {
		return nil, err
	}
	cfg, err := a.optJSON("shift_config")
	if err != nil {
		return nil, err
	}

	spec := capacity.OverrideSpec{
		StartDate:  start,
		EndDate:    end,
		TotalHours: hours,
		Reason:     a.text("reason"),
	}
	if cfg != nil {
		spec.ShiftConfig = *cfg
	}

	id, err := s.engine.CreateOverride(ctx, lineID, spec)
	if err != nil {
		return nil, toStatus("create override", err)
	}
	return s.overrideReply(ctx, id)
}

func (s *CapacityService) UpdateOverride(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	id, err := a.uuid("id")
	if err != nil {
		return nil, err
	}

	var patch capacity.OverridePatch
	if patch.StartDate, err = a.optDate("start_date"); err != nil {
		return nil, err
	}
	if patch.EndDate, err = a.optDate("end_date"); err != nil {
		return nil, err
	}
	if patch.TotalHours, err = a.optDecimal("total_hours"); err != nil {
		return nil, err
	}
	patch.Reason = a.optText("reason")
	if patch.ShiftConfig, err = a.optJSON("shift_config"); err != nil {
		return nil, err
	}

	if err := s.engine.UpdateOverride(ctx, id, patch); err != nil {
		return nil, toStatus("update override", err)
	}
	return s.overrideReply(ctx, id)
}

func (s *CapacityService) DeleteOverride(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := argsOf(req).uuid("id")
	if err != nil {
		return nil, err
	}
	if err := s.engine.DeleteOverride(ctx, id); err != nil {
		return nil, toStatus("delete override", err)
	}
	return empty()
}

// AddOvertime: line_id, date, extra_hours, reason.
func (s *CapacityService) AddOvertime(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	date, err := a.date("date")
	if err != nil {
		return nil, err
	}
	extra, err := a.decimal("extra_hours")
	if err != nil {
		return nil, err
	}

	id, err := s.engine.AddOvertime(ctx, lineID, date, extra, a.text("reason"))
	if err != nil {
		return nil, toStatus("add overtime", err)
	}
	return s.overrideReply(ctx, id)
}

func (s *CapacityService) overrideReply(ctx context.Context, id uuid.UUID) (*structpb.Struct, error) {
	o, err := s.engine.GetOverride(ctx, id)
	if err != nil {
		return nil, toStatus("get override", err)
	}
	return reply(map[string]any{"override": o})
}

// LatestStart: line_id, due_date, hours.
func (s *CapacityService) LatestStart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	due, err := a.date("due_date")
	if err != nil {
		return nil, err
	}
	hours, err := a.decimal("hours")
	if err != nil {
		return nil, err
	}

	start, err := s.placer.LatestStart(ctx, lineID, due, hours)
	if err != nil {
		return nil, toStatus("latest start", err)
	}
	return reply(dto.LatestStartResponse{LineID: lineID, DueDate: due, Hours: hours, LatestStart: start})
}

package service

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/dto"
	"github.com/Leganyst/production-scheduler/internal/placement"
)

type LineServiceServer interface {
	CreateLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeactivateLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLines(context.Context, *structpb.Struct) (*structpb.Struct, error)

	PlaceLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func lineMethod(name string, pick func(LineServiceServer) method) grpc.MethodDesc {
	return unary(LineServiceName, name, func(srv any) method {
		return pick(srv.(LineServiceServer))
	})
}

var LineServiceDesc = grpc.ServiceDesc{
	ServiceName: LineServiceName,
	HandlerType: (*LineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		lineMethod("CreateLine", func(s LineServiceServer) method { return s.CreateLine }),
		lineMethod("UpdateLine", func(s LineServiceServer) method { return s.UpdateLine }),
		lineMethod("DeactivateLine", func(s LineServiceServer) method { return s.DeactivateLine }),
		lineMethod("GetLine", func(s LineServiceServer) method { return s.GetLine }),
		lineMethod("ListLines", func(s LineServiceServer) method { return s.ListLines }),
		lineMethod("PlaceLine", func(s LineServiceServer) method { return s.PlaceLine }),
		lineMethod("GetSchedule", func(s LineServiceServer) method { return s.GetSchedule }),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterLineServiceServer(s grpc.ServiceRegistrar, srv LineServiceServer) {
	s.RegisterService(&LineServiceDesc, srv)
}

// LineService управляет производственными линиями и их раскладкой.
type LineService struct {
	engine    *capacity.Engine
	placement *placement.Service
}

func NewLineService(engine *capacity.Engine, placementSvc *placement.Service) *LineService {
	return &LineService{engine: engine, placement: placementSvc}
}

var _ LineServiceServer = (*LineService)(nil)

func (s *LineService) CreateLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	spec := capacity.LineSpec{
		Name:                a.text("name"),
		SpecialCustomerName: a.text("special_customer_name"),
		TimeZone:            a.text("time_zone"),
	}

	var err error
	if spec.OrderPosition, err = a.intOr("order_position", 0); err != nil {
		return nil, err
	}
	perDay, err := a.optDecimal("default_hours_per_day")
	if err != nil {
		return nil, err
	}
	perWeek, err := a.optDecimal("default_hours_per_week")
	if err != nil {
		return nil, err
	}
	spec.DefaultHoursPerDay = valueOr(perDay)
	spec.DefaultHoursPerWeek = valueOr(perWeek)

	l, err := s.engine.CreateLine(ctx, spec)
	if err != nil {
		return nil, toStatus("create line", err)
	}
	return reply(map[string]any{"line": l})
}

func valueOr(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (s *LineService) UpdateLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	id, err := a.uuid("id")
	if err != nil {
		return nil, err
	}

	patch := capacity.LinePatch{
		Name:                a.optText("name"),
		SpecialCustomerName: a.optText("special_customer_name"),
		TimeZone:            a.optText("time_zone"),
	}
	if patch.DefaultHoursPerDay, err = a.optDecimal("default_hours_per_day"); err != nil {
		return nil, err
	}
	if patch.DefaultHoursPerWeek, err = a.optDecimal("default_hours_per_week"); err != nil {
		return nil, err
	}
	if patch.OrderPosition, err = a.optInt("order_position"); err != nil {
		return nil, err
	}
	if patch.Active, err = a.optBool("active"); err != nil {
		return nil, err
	}

	l, err := s.engine.UpdateLine(ctx, id, patch)
	if err != nil {
		return nil, toStatus("update line", err)
	}
	return reply(map[string]any{"line": l})
}

func (s *LineService) DeactivateLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := argsOf(req).uuid("id")
	if err != nil {
		return nil, err
	}
	if err := s.engine.DeactivateLine(ctx, id); err != nil {
		return nil, toStatus("deactivate line", err)
	}
	return empty()
}

func (s *LineService) GetLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := argsOf(req).uuid("id")
	if err != nil {
		return nil, err
	}
	l, err := s.engine.GetLine(ctx, id)
	if err != nil {
		return nil, toStatus("get line", err)
	}
	return reply(map[string]any{"line": l})
}

// ListLines: active_only (по умолчанию true).
func (s *LineService) ListLines(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	activeOnly, err := argsOf(req).boolOr("active_only", true)
	if err != nil {
		return nil, err
	}
	lines, err := s.engine.ListLines(ctx, activeOnly)
	if err != nil {
		return nil, toStatus("list lines", err)
	}
	return reply(map[string]any{"lines": lines})
}

// PlaceLine: line_id, anchor (по умолчанию — сегодня в поясе линии).
func (s *LineService) PlaceLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a := argsOf(req)
	lineID, err := a.uuid("line_id")
	if err != nil {
		return nil, err
	}
	anchor, err := a.optDate("anchor")
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		today, err := s.engine.Today(ctx, lineID)
		if err != nil {
			return nil, toStatus("place line", err)
		}
		anchor = &today
	}

	assignments, err := s.placement.PlaceLine(ctx, lineID, *anchor)
	if err != nil {
		return nil, toStatus("place line", err)
	}
	return reply(dto.PlaceLineResponse{LineID: lineID, Anchor: *anchor, Assignments: assignments})
}

// GetSchedule: line_id, from, to.
func (s *LineService) GetSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
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

	rows, err := s.placement.Schedule(ctx, lineID, from, to)
	if err != nil {
		return nil, toStatus("get schedule", err)
	}
	return reply(map[string]any{"placements": dto.ToPlacementDTOs(rows)})
}

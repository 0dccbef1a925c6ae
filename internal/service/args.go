package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/production-scheduler/internal/calendar"
)

// args — поля запроса-структуры. Отсутствующее поле и null равнозначны.
type args map[string]*structpb.Value

func argsOf(req *structpb.Struct) args { return args(req.GetFields()) }

func badArg(key string, format string, a ...any) error {
	return status.Errorf(codes.InvalidArgument, "%s: %s", key, fmt.Sprintf(format, a...))
}

func (a args) present(key string) bool {
	v, ok := a[key]
	if !ok || v == nil {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

// text возвращает строку; числа и bool приводятся к строке.
func (a args) text(key string) string {
	if !a.present(key) {
		return ""
	}
	switch k := a[key].GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}

func (a args) optText(key string) *string {
	if !a.present(key) {
		return nil
	}
	s := a.text(key)
	return &s
}

func (a args) uuid(key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(a.text(key))
	if raw == "" {
		return uuid.Nil, badArg(key, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badArg(key, "invalid uuid %q", raw)
	}
	return id, nil
}

func (a args) date(key string) (calendar.Date, error) {
	d, err := a.optDate(key)
	if err != nil {
		return calendar.Date{}, err
	}
	if d == nil {
		return calendar.Date{}, badArg(key, "is required")
	}
	return *d, nil
}

func (a args) optDate(key string) (*calendar.Date, error) {
	if !a.present(key) {
		return nil, nil
	}
	d, err := calendar.ParseDate(a.text(key))
	if err != nil {
		return nil, badArg(key, "%v", err)
	}
	return &d, nil
}

func (a args) timeOfDay(key string) (calendar.TimeOfDay, error) {
	v, err := a.optTimeOfDay(key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, badArg(key, "is required")
	}
	return *v, nil
}

func (a args) optTimeOfDay(key string) (*calendar.TimeOfDay, error) {
	if !a.present(key) {
		return nil, nil
	}
	v, err := calendar.ParseTOD(a.text(key))
	if err != nil {
		return nil, badArg(key, "%v", err)
	}
	return &v, nil
}

// Часы принимаются строкой ("8.5") или числом.
func (a args) optDecimal(key string) (*decimal.Decimal, error) {
	if !a.present(key) {
		return nil, nil
	}
	d, err := decimal.NewFromString(a.text(key))
	if err != nil {
		return nil, badArg(key, "invalid number %q", a.text(key))
	}
	return &d, nil
}

func (a args) decimal(key string) (decimal.Decimal, error) {
	d, err := a.optDecimal(key)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, badArg(key, "is required")
	}
	return *d, nil
}

func (a args) optInt(key string) (*int, error) {
	if !a.present(key) {
		return nil, nil
	}
	n, err := strconv.Atoi(a.text(key))
	if err != nil {
		return nil, badArg(key, "invalid integer %q", a.text(key))
	}
	return &n, nil
}

func (a args) intOr(key string, def int) (int, error) {
	n, err := a.optInt(key)
	if err != nil || n == nil {
		return def, err
	}
	return *n, nil
}

func (a args) optBool(key string) (*bool, error) {
	if !a.present(key) {
		return nil, nil
	}
	if b, ok := a[key].GetKind().(*structpb.Value_BoolValue); ok {
		return &b.BoolValue, nil
	}
	v, err := strconv.ParseBool(a.text(key))
	if err != nil {
		return nil, badArg(key, "invalid bool %q", a.text(key))
	}
	return &v, nil
}

func (a args) boolOr(key string, def bool) (bool, error) {
	b, err := a.optBool(key)
	if err != nil || b == nil {
		return def, err
	}
	return *b, nil
}

// Дни недели: список [1,2,3] или строка "1,2,3".
func (a args) optWeekdays(key string) (*calendar.WeekdaySet, error) {
	if !a.present(key) {
		return nil, nil
	}
	var (
		set calendar.WeekdaySet
		err error
	)
	if list := a[key].GetListValue(); list != nil {
		days := make([]int, 0, len(list.GetValues()))
		for _, v := range list.GetValues() {
			num, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok || num.NumberValue != math.Trunc(num.NumberValue) {
				return nil, badArg(key, "weekday must be an integer 1..7, got %v", v.AsInterface())
			}
			days = append(days, int(num.NumberValue))
		}
		set, err = calendar.NewWeekdaySet(days...)
	} else {
		set, err = calendar.ParseWeekdaySet(a.text(key))
	}
	if err != nil {
		return nil, badArg(key, "%v", err)
	}
	return &set, nil
}

// optJSON отдаёт значение поля как сырой JSON.
func (a args) optJSON(key string) (*json.RawMessage, error) {
	if !a.present(key) {
		return nil, nil
	}
	b, err := a[key].MarshalJSON()
	if err != nil {
		return nil, badArg(key, "%v", err)
	}
	raw := json.RawMessage(b)
	return &raw, nil
}

func (a args) list(key string) []*structpb.Value {
	if !a.present(key) {
		return nil
	}
	return a[key].GetListValue().GetValues()
}

func argsOfValue(v *structpb.Value) args {
	return args(v.GetStructValue().GetFields())
}

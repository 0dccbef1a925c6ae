package service

import (
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestArgs_Weekdays(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{name: "list", value: []any{1, 3, 5}, want: "1,3,5"},
		{name: "string", value: "6,7", want: "6,7"},
		{name: "fraction", value: []any{1.9}, wantErr: true},
		{name: "string element", value: []any{"1"}, wantErr: true},
		{name: "out of range", value: []any{8}, wantErr: true},
	}

	for _, c := range cases {
		req, err := structpb.NewStruct(map[string]any{"active_days": c.value})
		if err != nil {
			t.Fatalf("%s: build request: %v", c.name, err)
		}
		set, err := argsOf(req).optWeekdays("active_days")
		if c.wantErr {
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("%s: expected InvalidArgument, got %v", c.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if set.String() != c.want {
			t.Fatalf("%s: got %s, want %s", c.name, set.String(), c.want)
		}
	}
}

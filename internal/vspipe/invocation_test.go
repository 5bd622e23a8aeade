package vspipe

import (
	"reflect"
	"testing"

	"github.com/five82/pencode/internal/config"
)

func TestNewInvocation(t *testing.T) {
	tests := []struct {
		name  string
		flags []config.Flag
		want  []string
	}{
		{
			name:  "y4m true",
			flags: []config.Flag{{Name: "--y4m", Value: true}},
			want:  []string{"--y4m", "-a", "Input=/v/movie.mkv"},
		},
		{
			name:  "y4m false",
			flags: []config.Flag{{Name: "--y4m", Value: false}},
			want:  []string{"-a", "Input=/v/movie.mkv"},
		},
		{
			name: "y4m absent",
			want: []string{"-a", "Input=/v/movie.mkv"},
		},
		{
			name: "valued flags keep file order",
			flags: []config.Flag{
				{Name: "--requests", Value: int64(4)},
				{Name: "--y4m", Value: true},
				{Name: "--start", Value: "100"},
			},
			want: []string{"--requests", "4", "--y4m", "--start", "100", "-a", "Input=/v/movie.mkv"},
		},
		{
			name: "configured script argument is replaced in place",
			flags: []config.Flag{
				{Name: "-a", Value: "Input=placeholder"},
				{Name: "--y4m", Value: true},
			},
			want: []string{"-a", "Input=/v/movie.mkv", "--y4m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInvocation(config.VS{Script: "enc.vpy", Flags: tt.flags}, "/v/movie.mkv")
			if !reflect.DeepEqual(inv.Flags, tt.want) {
				t.Errorf("Flags = %q, want %q", inv.Flags, tt.want)
			}
		})
	}
}

func TestInvocationArgs(t *testing.T) {
	inv := NewInvocation(config.VS{
		Script: "/scripts/enc.vpy",
		Flags:  []config.Flag{{Name: "--y4m", Value: true}},
	}, "in.mkv")

	prime := inv.Args(true)
	wantPrime := []string{"--y4m", "-a", "Input=in.mkv", "--end", "0", "/scripts/enc.vpy", "-"}
	if !reflect.DeepEqual(prime, wantPrime) {
		t.Errorf("Args(true) = %q, want %q", prime, wantPrime)
	}

	full := inv.Args(false)
	wantFull := []string{"--y4m", "-a", "Input=in.mkv", "/scripts/enc.vpy", "-"}
	if !reflect.DeepEqual(full, wantFull) {
		t.Errorf("Args(false) = %q, want %q", full, wantFull)
	}

	if len(inv.Flags) != 3 {
		t.Errorf("Args mutated Flags: %q", inv.Flags)
	}
}

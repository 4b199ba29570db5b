package main

import (
	"slices"
	"testing"
)

func TestSelectTargets(t *testing.T) {
	all := targets("linux")

	tests := []struct {
		only    string
		want    []string
		wantErr bool
	}{
		{"", []string{"servidor", "cliente", "launcher"}, false},
		{"cliente", []string{"cliente"}, false},
		{"launcher, servidor", []string{"launcher", "servidor"}, false},
		{"cliente,cliente", []string{"cliente"}, false},
		{"editor", nil, true},
	}

	for _, tt := range tests {
		got, err := selectTargets(all, tt.only)
		if (err != nil) != tt.wantErr {
			t.Errorf("selectTargets(%q) erro = %v, wantErr %v", tt.only, err, tt.wantErr)
			continue
		}
		var names []string
		for _, tg := range got {
			names = append(names, tg.Name)
		}
		if !slices.Equal(names, tt.want) {
			t.Errorf("selectTargets(%q) = %v, want %v", tt.only, names, tt.want)
		}
	}
}

func TestTargetsPerOS(t *testing.T) {
	tests := []struct {
		goos       string
		client     string
		clientFlag string
	}{
		{"linux", "cliente/client", "-s -w"},
		{"windows", "cliente/client.exe", "-extldflags=-static -s -w -H=windowsgui"},
	}
	for _, tt := range tests {
		c := targets(tt.goos)[1]
		if c.Output != tt.client || c.LDFlags != tt.clientFlag || !c.Cgo {
			t.Errorf("targets(%q) cliente = %+v", tt.goos, c)
		}
	}
}

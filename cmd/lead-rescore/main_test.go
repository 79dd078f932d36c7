package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name    string
		org     string
		all     bool
		want    target
		wantErr bool
	}{
		{name: "single organization", org: orgID.String(), want: target{orgID: orgID}},
		{name: "all organizations", all: true, want: target{all: true}},
		{name: "neither flag", wantErr: true},
		{name: "both flags", org: orgID.String(), all: true, wantErr: true},
		{name: "malformed id", org: "acme", wantErr: true},
		{name: "nil id does not mean all", org: uuid.Nil.String(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTarget(tt.org, tt.all)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

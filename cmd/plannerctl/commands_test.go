package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/model"
	"github.com/gradplan/planner-backend/internal/repository/memstore"
	"github.com/gradplan/planner-backend/internal/service"
)

func TestCheckEnqueueFlags(t *testing.T) {
	tests := []struct {
		name    string
		plans   []int
		year    int
		wantErr string
	}{
		{name: "plans", plans: []int{1, 2}},
		{name: "cohort", year: 2018},
		{name: "neither", wantErr: "required"},
		{name: "both", plans: []int{1}, year: 2018, wantErr: "mutually exclusive"},
		{name: "negative year", year: -1, wantErr: "positive"},
		{name: "bad plan", plans: []int{3, 0}, wantErr: "invalid plan id 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEnqueueFlags(tt.plans, tt.year)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPlansOfCohort(t *testing.T) {
	s := memstore.New()
	s.AddUser(1, 2018)
	s.AddUser(2, 2019)
	a := s.AddPlan(model.Plan{UserID: 1, PlanName: "a"})
	s.AddPlan(model.Plan{UserID: 2, PlanName: "b"})
	c := s.AddPlan(model.Plan{UserID: 1, PlanName: "c"})

	ids, err := plansOfCohort(context.Background(), s, 2018)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{a, c}, ids)

	ids, err = plansOfCohort(context.Background(), s, 2020)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTokenCommand(t *testing.T) {
	cfg := &config.Config{JWTSecret: "cli-secret", JWTExpiry: time.Hour, LogLevel: "error"}
	root := newRootCmd(&env{cfg: cfg})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--user", "42"})
	require.NoError(t, root.Execute())

	claims, err := service.NewAuthService("cli-secret", time.Hour).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
}

func TestCommandsRequireTarget(t *testing.T) {
	cfg := &config.Config{LogLevel: "error"}
	for _, args := range [][]string{{"recalc"}, {"repair-totals"}, {"token"}, {"enqueue"}} {
		root := newRootCmd(&env{cfg: cfg})
		root.SetOut(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.Execute(), args[0])
	}
}

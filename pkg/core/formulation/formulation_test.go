package formulation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

func findRow(t *testing.T, m *milp.Model, name string) milp.Constraint {
	t.Helper()
	for _, c := range m.Constraints() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("row %s not found", name)
	return milp.Constraint{}
}

func hasRow(m *milp.Model, name string) bool {
	for _, c := range m.Constraints() {
		if c.Name == name {
			return true
		}
	}
	return false
}

func TestBuild_VariableAndRowCounts(t *testing.T) {
	demand := make([][model.NumShiftTypes]int, 10)
	p := newProblem(4, demand)
	rules := model.Rules{MinShiftsPerWorker: 0, MaxShiftsPerWorker: 10, MinShiftLength: 2, MaxShiftLength: 7, MinFreeLength: 3}

	f, err := Build(p, rules)
	require.NoError(t, err)

	W, N, S := 4, 10, model.NumShiftTypes
	assert.Equal(t, 3*W*N*S, f.Model.NumVars())
	assert.True(t, f.Model.AllBinary())

	expected := map[string]int{
		"demand":       N * S,
		"single_shift": W * N,
		"workload":     2 * W,
		"link":         W * S * (N - 1),
		"exclusive":    W * S * N,
		"min_run":      W * S * (N - 2),
		"max_run":      W * S * (N - 7),
		"min_rest":     W * S * (N - 3),
		"turnaround":   W * (N - 1),
		"vacation":     W * N,
	}
	assert.Equal(t, expected, f.Model.FamilySizes())
}

func TestBuild_DemandRowIsEquality(t *testing.T) {
	p := newProblem(3, [][model.NumShiftTypes]int{{2, 1, 0}})
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	row := findRow(t, f.Model, "demand_d0_early")
	assert.Equal(t, milp.Equal, row.Op)
	assert.Equal(t, int64(2), row.RHS)
	require.Len(t, row.Terms, 3)
	for w, term := range row.Terms {
		assert.Equal(t, f.Vars.X(w, 0, model.Early), term.Var)
		assert.Equal(t, int64(1), term.Coeff)
	}

	assert.Equal(t, int64(1), findRow(t, f.Model, "demand_d0_middle").RHS)
	assert.Equal(t, int64(0), findRow(t, f.Model, "demand_d0_late").RHS)
}

func TestBuild_WorkloadBounds(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 4))
	rules := looseRules()
	rules.MinShiftsPerWorker = 1
	rules.MaxShiftsPerWorker = 3
	f, err := Build(p, rules)
	require.NoError(t, err)

	lower := findRow(t, f.Model, "workload_min_w0")
	assert.Equal(t, milp.GreaterEqual, lower.Op)
	assert.Equal(t, int64(1), lower.RHS)
	assert.Len(t, lower.Terms, 4*model.NumShiftTypes)

	upper := findRow(t, f.Model, "workload_max_w0")
	assert.Equal(t, milp.LessEqual, upper.Op)
	assert.Equal(t, int64(3), upper.RHS)
}

func TestBuild_LinkSkipsFirstDay(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 3))
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	assert.False(t, hasRow(f.Model, "link_w0_d0_early"))

	row := findRow(t, f.Model, "link_w0_d1_late")
	v := f.Vars
	assert.Equal(t, milp.Equal, row.Op)
	assert.Equal(t, int64(0), row.RHS)
	assert.Equal(t, []milp.Term{
		{Var: v.X(0, 1, model.Late), Coeff: 1},
		{Var: v.X(0, 0, model.Late), Coeff: -1},
		{Var: v.StartWork(0, 1, model.Late), Coeff: -1},
		{Var: v.StartFree(0, 1, model.Late), Coeff: 1},
	}, row.Terms)
}

func TestBuild_MinRunWindow(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 5))
	rules := looseRules()
	rules.MinShiftLength = 2
	f, err := Build(p, rules)
	require.NoError(t, err)

	// Windows are only emitted once they are fully defined
	assert.False(t, hasRow(f.Model, "min_run_w0_d0_early"))
	assert.False(t, hasRow(f.Model, "min_run_w0_d1_early"))

	row := findRow(t, f.Model, "min_run_w0_d2_early")
	v := f.Vars
	assert.Equal(t, milp.LessEqual, row.Op)
	assert.Equal(t, int64(0), row.RHS)
	assert.Equal(t, []milp.Term{
		{Var: v.StartWork(0, 1, model.Early), Coeff: 1},
		{Var: v.StartWork(0, 2, model.Early), Coeff: 1},
		{Var: v.X(0, 2, model.Early), Coeff: -1},
	}, row.Terms)
}

func TestBuild_MaxRunWindow(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 5))
	rules := looseRules()
	rules.MaxShiftLength = 3
	f, err := Build(p, rules)
	require.NoError(t, err)

	assert.False(t, hasRow(f.Model, "max_run_w0_d2_middle"))

	row := findRow(t, f.Model, "max_run_w0_d4_middle")
	v := f.Vars
	assert.Equal(t, milp.GreaterEqual, row.Op)
	assert.Equal(t, []milp.Term{
		{Var: v.StartWork(0, 2, model.Middle), Coeff: 1},
		{Var: v.StartWork(0, 3, model.Middle), Coeff: 1},
		{Var: v.StartWork(0, 4, model.Middle), Coeff: 1},
		{Var: v.X(0, 4, model.Middle), Coeff: -1},
	}, row.Terms)
}

func TestBuild_MinRestWindow(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 4))
	rules := looseRules()
	rules.MinFreeLength = 2
	f, err := Build(p, rules)
	require.NoError(t, err)

	assert.False(t, hasRow(f.Model, "min_rest_w0_d1_late"))

	row := findRow(t, f.Model, "min_rest_w0_d3_late")
	v := f.Vars
	assert.Equal(t, milp.LessEqual, row.Op)
	assert.Equal(t, int64(1), row.RHS)
	assert.Equal(t, []milp.Term{
		{Var: v.StartFree(0, 2, model.Late), Coeff: 1},
		{Var: v.StartFree(0, 3, model.Late), Coeff: 1},
		{Var: v.X(0, 3, model.Late), Coeff: 1},
	}, row.Terms)
}

func TestBuild_WindowLongerThanPeriod(t *testing.T) {
	p := newProblem(2, make([][model.NumShiftTypes]int, 3))
	rules := looseRules()
	rules.MaxShiftLength = 3
	f, err := Build(p, rules)
	require.NoError(t, err)

	_, present := f.Model.FamilySizes()["max_run"]
	assert.False(t, present)
}

func TestBuild_TurnaroundSkipsLastDay(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 3))
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	assert.True(t, hasRow(f.Model, "turnaround_w0_d1"))
	assert.False(t, hasRow(f.Model, "turnaround_w0_d2"))

	row := findRow(t, f.Model, "turnaround_w0_d0")
	assert.Equal(t, []milp.Term{
		{Var: f.Vars.X(0, 0, model.Late), Coeff: 1},
		{Var: f.Vars.X(0, 1, model.Early), Coeff: 1},
	}, row.Terms)
}

func TestBuild_SingleDayPeriod(t *testing.T) {
	p := newProblem(2, [][model.NumShiftTypes]int{{1, 0, 1}})
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	sizes := f.Model.FamilySizes()
	assert.Zero(t, sizes["link"])
	assert.Zero(t, sizes["turnaround"])
	assert.Equal(t, 2, sizes["vacation"])
}

func TestBuild_VacationRow(t *testing.T) {
	p := newProblem(2, make([][model.NumShiftTypes]int, 2))
	p.VacationCap[1][0] = 0
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	assert.Equal(t, int64(0), findRow(t, f.Model, "vacation_w1_d0").RHS)
	assert.Equal(t, int64(1), findRow(t, f.Model, "vacation_w1_d1").RHS)
}

func TestBuild_PreferenceObjective(t *testing.T) {
	p := newProblem(2, make([][model.NumShiftTypes]int, 2))
	p.Preference[0][1][model.Late] = 1
	p.Preference[1][0][model.Early] = 1
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	obj := f.Model.Objective()
	assert.Equal(t, milp.Maximize, obj.Sense)
	assert.Equal(t, []milp.Term{
		{Var: f.Vars.X(0, 1, model.Late), Coeff: 1},
		{Var: f.Vars.X(1, 0, model.Early), Coeff: 1},
	}, obj.Terms)
}

func TestBuild_InvalidRules(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 2))
	rules := looseRules()
	rules.MaxShiftLength = 0

	_, err := Build(p, rules)
	var mce *model.ModelConstructionError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "schema", mce.Family)
}

func TestBuild_DimensionMismatch(t *testing.T) {
	p := newProblem(2, make([][model.NumShiftTypes]int, 3))
	p.VacationCap[1] = p.VacationCap[1][:2]

	_, err := Build(p, looseRules())
	var mce *model.ModelConstructionError
	require.True(t, errors.As(err, &mce))
	assert.Contains(t, mce.Reason, "vacation caps of worker 1")
}

func TestSchema_Families(t *testing.T) {
	schema := NewSchema(model.DefaultRules())
	assert.Equal(t, []string{
		"demand", "single_shift", "workload", "link", "exclusive",
		"min_run", "max_run", "min_rest", "turnaround", "vacation",
	}, schema.Families())

	restricted := NewSchemaWithFamilies(looseRules(), DemandFamily{})
	f, err := restricted.Bind(newProblem(1, [][model.NumShiftTypes]int{{1, 0, 0}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"demand": 3}, f.Model.FamilySizes())
}

func TestEncode_FeasibleScheduleSatisfiesModel(t *testing.T) {
	// Two workers alternate two-day runs of early and middle
	p := newProblem(2, [][model.NumShiftTypes]int{
		{1, 1, 0}, {1, 1, 0}, {1, 1, 0}, {1, 1, 0},
	})
	rules := model.Rules{MinShiftsPerWorker: 4, MaxShiftsPerWorker: 4, MinShiftLength: 2, MaxShiftLength: 2, MinFreeLength: 2}
	f, err := Build(p, rules)
	require.NoError(t, err)

	s := scheduleOf(p, [][]int{
		{0, 0, 1, 1},
		{1, 1, 0, 0},
	})

	values, err := f.Encode(s)
	require.NoError(t, err)
	violations, err := f.Model.Check(values)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Empty(t, f.Validate(s))
}

func TestEncode_RejectsShapeMismatch(t *testing.T) {
	p := newProblem(2, make([][model.NumShiftTypes]int, 2))
	f, err := Build(p, looseRules())
	require.NoError(t, err)

	_, err = f.Encode(scheduleOf(p, [][]int{{-1, -1}}))
	assert.Error(t, err)

	_, err = f.Encode(scheduleOf(p, [][]int{{-1, 5}, {-1, -1}}))
	assert.Error(t, err)
}

func TestValidate_ReportsViolations(t *testing.T) {
	p := newProblem(2, [][model.NumShiftTypes]int{
		{0, 0, 1}, {1, 0, 0}, {0, 0, 0},
	})
	p.VacationCap[1][2] = 0
	rules := looseRules()
	rules.MaxShiftsPerWorker = 2

	s := scheduleOf(p, [][]int{
		{2, 0, 0},   // late then early, three shifts
		{-1, -1, 1}, // works on vacation
	})

	families := map[string]bool{}
	for _, v := range NewSchema(rules).mustBind(t, p).Validate(s) {
		families[v.Family] = true
	}
	assert.Equal(t, map[string]bool{
		"turnaround": true,
		"workload":   true,
		"vacation":   true,
		"demand":     true,
	}, families)
}

func TestValidate_AgreesWithModelCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rules := model.Rules{MinShiftsPerWorker: 2, MaxShiftsPerWorker: 4, MinShiftLength: 2, MaxShiftLength: 3, MinFreeLength: 2}

	for iter := 0; iter < 200; iter++ {
		numWorkers, numDays := 3, 6
		codes := make([][]int, numWorkers)
		for w := range codes {
			codes[w] = make([]int, numDays)
			for d := range codes[w] {
				codes[w][d] = rng.Intn(model.NumShiftTypes+1) - 1
			}
		}
		demand := make([][model.NumShiftTypes]int, numDays)
		for d := range demand {
			for s := range demand[d] {
				demand[d][s] = rng.Intn(2)
			}
		}
		p := newProblem(numWorkers, demand)
		p.VacationCap[rng.Intn(numWorkers)][rng.Intn(numDays)] = 0

		f := NewSchema(rules).mustBind(t, p)
		s := scheduleOf(p, codes)

		values, err := f.Encode(s)
		require.NoError(t, err)
		modelViolations, err := f.Model.Check(values)
		require.NoError(t, err)

		fromModel := map[string]bool{}
		for _, v := range modelViolations {
			fromModel[v.Family] = true
		}
		fromSchedule := map[string]bool{}
		for _, v := range f.Validate(s) {
			fromSchedule[v.Family] = true
		}
		require.Equal(t, fromModel, fromSchedule, "iteration %d codes %v", iter, codes)
	}
}

func (s *Schema) mustBind(t *testing.T, p *model.Problem) *Formulation {
	t.Helper()
	f, err := s.Bind(p)
	require.NoError(t, err)
	return f
}

func TestDiagnose(t *testing.T) {
	p := newProblem(2, [][model.NumShiftTypes]int{{2, 1, 0}, {0, 0, 0}})
	for d := range p.VacationCap[1] {
		p.VacationCap[1][d] = 0
	}
	rules := looseRules()
	rules.MinShiftsPerWorker = 1

	hints := Diagnose(p, rules)
	require.Len(t, hints, 2)
	assert.Contains(t, hints[0], "day 1 demands 3 workers but only 1 of 2 are available")
	assert.Contains(t, hints[1], "worker 1 is available on 0 days")
}

func TestGrantedRequests(t *testing.T) {
	p := newProblem(1, make([][model.NumShiftTypes]int, 3))
	p.Preference[0][0][model.Early] = 1
	p.Preference[0][2][model.Late] = 1

	s := scheduleOf(p, [][]int{{0, -1, 1}})
	assert.Equal(t, 1, GrantedRequests(p, s))
}

func TestBuild_RowNames(t *testing.T) {
	p := newProblem(2, [][model.NumShiftTypes]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 0, 0}})
	rules := looseRules()
	rules.MinShiftLength = 2
	rules.MaxShiftLength = 3
	rules.MinFreeLength = 2
	f, err := Build(p, rules)
	require.NoError(t, err)

	names := make(map[string]string, f.Model.NumConstraints())
	for _, c := range f.Model.Constraints() {
		_, duplicate := names[c.Name]
		assert.False(t, duplicate, "row %s emitted twice", c.Name)
		names[c.Name] = c.Family
		assert.Equal(t, c.Name, milp.LPName(c.Name), "row %s is not LP-safe", c.Name)
	}

	for name, family := range map[string]string{
		"demand_d0_early":      "demand",
		"single_shift_w1_d3":   "single_shift",
		"workload_min_w0":      "workload",
		"workload_max_w1":      "workload",
		"link_w1_d3_late":      "link",
		"exclusive_w0_d0_late": "exclusive",
		"min_run_w0_d2_middle": "min_run",
		"max_run_w1_d3_early":  "max_run",
		"min_rest_w0_d3_late":  "min_rest",
		"turnaround_w0_d2":     "turnaround",
		"vacation_w1_d0":       "vacation",
	} {
		assert.Equal(t, family, names[name], "row %s", name)
	}
}

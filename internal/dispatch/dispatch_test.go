package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler records every call it receives as a flat string
type recordingHandler struct {
	calls   []string
	failOn  string
	failErr error
}

func (h *recordingHandler) record(call string) error {
	h.calls = append(h.calls, call)
	if h.failOn != "" && strings.HasPrefix(call, h.failOn) {
		return h.failErr
	}
	return nil
}

func (h *recordingHandler) Add(_ context.Context, project, name string) error {
	return h.record("add " + project + " " + name)
}

func (h *recordingHandler) Remove(_ context.Context, project string) error {
	return h.record("remove " + project)
}

func (h *recordingHandler) Optimize(_ context.Context, project string) error {
	return h.record("optimize " + project)
}

func (h *recordingHandler) Bundle(_ context.Context, project string) error {
	return h.record("bundle " + project)
}

func (h *recordingHandler) Help(_ context.Context) error {
	return h.record("help")
}

var _ Handler = (*recordingHandler)(nil)

func TestAction_Arity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		action    Action
		wantArity int
		wantName  string
	}{
		{ActionAdd, 2, "Add"},
		{ActionRemove, 1, "Remove"},
		{ActionOptimize, 1, "Optimize"},
		{ActionBundle, 1, "Bundle"},
		{ActionHelp, 0, "Help"},
		{Action(42), 0, "Unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.wantName, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.wantArity, tc.action.Arity())
			assert.Equal(t, tc.wantName, tc.action.String())
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	assert.Equal(t, 10, table.Len())

	cases := []struct {
		token      string
		wantAction Action
		wantOK     bool
	}{
		{"-A", ActionAdd, true},
		{"-add", ActionAdd, true},
		{"-Add", ActionAdd, true},
		{"-r", ActionRemove, true},
		{"-Remove", ActionRemove, true},
		{"-o", ActionOptimize, true},
		{"--optimize", ActionOptimize, true},
		{"-b", ActionBundle, true},
		{"--Bundle", ActionBundle, true},
		{"-h", ActionHelp, true},
		{"--help", ActionHelp, true},
		{"--add", 0, false},
		{"-optimize", 0, false},
		{"MyProj", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()

			action, ok := table.Lookup(tc.token)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantAction, action)
			}
		})
	}
}

func TestNewTable_CopiesEntries(t *testing.T) {
	t.Parallel()

	entries := map[string]Action{"-x": ActionHelp}
	table := NewTable(entries)
	entries["-Y"] = ActionAdd

	_, ok := table.Lookup("-X")
	assert.True(t, ok)
	_, ok = table.Lookup("-Y")
	assert.False(t, ok)
}

func TestScan(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want []Call
	}{
		{
			name: "empty",
			args: nil,
			want: nil,
		},
		{
			name: "add",
			args: []string{"-A", "MyProj", "InitialCreate"},
			want: []Call{{Action: ActionAdd, Flag: "-A", Params: []string{"MyProj", "InitialCreate"}}},
		},
		{
			name: "add_missing_name",
			args: []string{"-A", "MyProj"},
			want: nil,
		},
		{
			name: "remove_missing_project",
			args: []string{"-R"},
			want: nil,
		},
		{
			name: "help",
			args: []string{"-H"},
			want: []Call{{Action: ActionHelp, Flag: "-H", Params: []string{}}},
		},
		{
			name: "unknown_tokens_between_flags",
			args: []string{"junk", "-O", "Data", "more", "--bundle", "Data", "tail"},
			want: []Call{
				{Action: ActionOptimize, Flag: "-O", Params: []string{"Data"}},
				{Action: ActionBundle, Flag: "--bundle", Params: []string{"Data"}},
			},
		},
		{
			name: "flag_in_parameter_slot_is_consumed",
			args: []string{"-R", "-H"},
			want: []Call{{Action: ActionRemove, Flag: "-R", Params: []string{"-H"}}},
		},
		{
			name: "incomplete_flag_swallows_trailing_flag",
			args: []string{"-A", "-H"},
			want: nil,
		},
		{
			name: "sequence_in_order",
			args: []string{"-a", "Api", "Init", "-r", "Api", "--OPTIMIZE", "Api", "-h"},
			want: []Call{
				{Action: ActionAdd, Flag: "-a", Params: []string{"Api", "Init"}},
				{Action: ActionRemove, Flag: "-r", Params: []string{"Api"}},
				{Action: ActionOptimize, Flag: "--OPTIMIZE", Params: []string{"Api"}},
				{Action: ActionHelp, Flag: "-h", Params: []string{}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Scan(DefaultTable(), tc.args)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDispatch_InsufficientParameters(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"-A"},
		{"-A", "MyProj"},
		{"-ADD", "MyProj"},
		{"-R"},
		{"-REMOVE"},
		{"-O"},
		{"--OPTIMIZE"},
		{"-B"},
		{"--BUNDLE"},
	}

	for _, args := range cases {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			t.Parallel()

			h := &recordingHandler{}
			err := New(nil, h).Dispatch(context.Background(), args)

			require.NoError(t, err)
			assert.Empty(t, h.calls)
		})
	}
}

func TestDispatch_AliasesAreEquivalent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		short, long string
		params      []string
	}{
		{"-A", "-ADD", []string{"MyProj", "InitialCreate"}},
		{"-R", "-REMOVE", []string{"MyProj"}},
		{"-O", "--OPTIMIZE", []string{"MyProj"}},
		{"-B", "--BUNDLE", []string{"MyProj"}},
		{"-H", "--HELP", nil},
	}

	for _, tc := range cases {
		t.Run(tc.long, func(t *testing.T) {
			t.Parallel()

			short := &recordingHandler{}
			long := &recordingHandler{}
			require.NoError(t, New(nil, short).Dispatch(context.Background(), append([]string{tc.short}, tc.params...)))
			require.NoError(t, New(nil, long).Dispatch(context.Background(), append([]string{tc.long}, tc.params...)))

			require.Len(t, short.calls, 1)
			assert.Equal(t, short.calls, long.calls)
		})
	}
}

func TestDispatch_CaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, flag := range []string{"-add", "-Add", "-ADD", "-a", "-A"} {
		t.Run(flag, func(t *testing.T) {
			t.Parallel()

			h := &recordingHandler{}
			require.NoError(t, New(nil, h).Dispatch(context.Background(), []string{flag, "MyProj", "Init"}))
			assert.Equal(t, []string{"add MyProj Init"}, h.calls)
		})
	}
}

func TestDispatch_UnknownTokensIgnored(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	err := New(nil, h).Dispatch(context.Background(), []string{"--verbose", "-R", "Api", "whatever", "-x", "-O", "Api", "trailing"})

	require.NoError(t, err)
	assert.Equal(t, []string{"remove Api", "optimize Api"}, h.calls)
}

func TestDispatch_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	h := &recordingHandler{failOn: "remove", failErr: boom}
	err := New(nil, h).Dispatch(context.Background(), []string{"-A", "Api", "Init", "-R", "Api", "-O", "Api"})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"add Api Init", "remove Api"}, h.calls)
}

func TestDispatch_Scenarios(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		args      []string
		wantCalls []string
	}{
		{"help", []string{"-H"}, []string{"help"}},
		{"add", []string{"-A", "MyProj", "InitialCreate"}, []string{"add MyProj InitialCreate"}},
		{"add_missing_name", []string{"-A", "MyProj"}, nil},
		{"bundle", []string{"-B", "MyProj"}, []string{"bundle MyProj"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := &recordingHandler{}
			require.NoError(t, New(nil, h).Dispatch(context.Background(), tc.args))
			assert.Equal(t, tc.wantCalls, h.calls)
		})
	}
}

func TestInvoke_ArityMismatch(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	err := New(nil, h).Invoke(context.Background(), Call{Action: ActionAdd, Flag: "-A", Params: []string{"only"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 2 parameter(s)")
	assert.Empty(t, h.calls)
}

func TestFormatPlan(t *testing.T) {
	t.Parallel()

	commandLine := func(call Call) string {
		if call.Action == ActionAdd {
			return "dotnet ef migrations -p " + call.Params[0] + " add " + call.Params[1]
		}
		return ""
	}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		out := FormatPlan(nil, commandLine)
		assert.Contains(t, out, "nothing to do")
	})

	t.Run("mixed", func(t *testing.T) {
		t.Parallel()

		calls := Scan(DefaultTable(), []string{"-A", "Api", "Init", "-B", "Api"})
		out := FormatPlan(calls, commandLine)

		assert.Contains(t, out, "Calls (2):")
		assert.Contains(t, out, "Run: 1")
		assert.Contains(t, out, "No-op: 1")
		assert.Contains(t, out, "dotnet ef migrations -p Api add Init")
		assert.Contains(t, out, "nothing to run")
	})
}

package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/migraview/extract"
)

type fakeScripts struct {
	names   []string
	files   map[string]string
	listErr error
}

func (f fakeScripts) ListAll() ([]string, error) { return f.names, f.listErr }

func (f fakeScripts) Exists(name string) bool {
	_, ok := f.files[name]
	return ok
}

func (f fakeScripts) Read(name string) (string, error) { return f.files[name], nil }

type fakeState struct {
	applied []AppliedMigration
	err     error
}

func (f fakeState) ListApplied(context.Context) ([]AppliedMigration, error) { return f.applied, f.err }

func script(up, down string) string {
	return "<?php return new class extends Migration { public function up(): void { " + up +
		" } public function down(): void { " + down + " } };"
}

func newTestRunner(state fakeState) *Runner {
	scripts := fakeScripts{
		names: []string{
			"2024_01_01_000000_create_users_table",
			"2024_01_02_000000_create_posts_table",
			"2024_01_03_000000_add_bio_to_users",
		},
		files: map[string]string{
			"2024_01_01_000000_create_users_table": script(
				"Schema::create('users', function (Blueprint $table) { $table->id(); });",
				"Schema::dropIfExists('users');"),
			"2024_01_02_000000_create_posts_table": script(
				"Schema::create('posts', function (Blueprint $table) { $table->string('title'); });",
				"Schema::dropIfExists('posts');"),
			"2024_01_03_000000_add_bio_to_users": script(
				"Schema::table('users', function (Blueprint $table) { $table->text('bio')->nullable(); });",
				"Schema::table('users', function (Blueprint $table) { $table->dropColumn('bio'); });"),
		},
	}
	return New(scripts, scripts, state)
}

func names(previews []RollbackPreview) []string {
	var out []string
	for _, p := range previews {
		out = append(out, p.Migration)
	}
	return out
}

func TestPreviewPending(t *testing.T) {
	r := newTestRunner(fakeState{applied: []AppliedMigration{
		{Name: "2024_01_01_000000_create_users_table", Batch: 1},
	}})

	previews, err := r.PreviewPending(context.Background())

	require.NoError(t, err)
	require.Len(t, previews, 2)
	assert.Equal(t, "2024_01_02_000000_create_posts_table", previews[0].Migration)
	assert.Equal(t, []extract.Action{
		{Text: "create_table: posts", Depth: 0, Category: extract.CategoryCreateTable, Table: "posts"},
		{Text: "add column: title (string)", Depth: 1, Category: extract.CategoryAddColumn, Column: "title"},
	}, previews[0].Actions)
	assert.Equal(t, "2024_01_03_000000_add_bio_to_users", previews[1].Migration)
	assert.Equal(t, "add column: bio (text) [NULLABLE]", previews[1].Actions[1].Text)
}

func TestPreviewPendingNothingPending(t *testing.T) {
	r := newTestRunner(fakeState{applied: []AppliedMigration{
		{Name: "2024_01_01_000000_create_users_table", Batch: 1},
		{Name: "2024_01_02_000000_create_posts_table", Batch: 1},
		{Name: "2024_01_03_000000_add_bio_to_users", Batch: 2},
	}})

	previews, err := r.PreviewPending(context.Background())

	require.NoError(t, err)
	assert.Empty(t, previews)
}

func TestPreviewRollbackModes(t *testing.T) {
	applied := []AppliedMigration{
		{Name: "2024_01_01_000000_create_users_table", Batch: 1},
		{Name: "2024_01_02_000000_create_posts_table", Batch: 2},
		{Name: "2024_01_03_000000_add_bio_to_users", Batch: 2},
		{Name: "2023_12_31_000000_missing_script", Batch: 1},
	}

	tests := []struct {
		name string
		opts RollbackOptions
		want []string
	}{
		{
			name: "default groups by batch descending in recorded order",
			opts: RollbackOptions{Mode: ModeDefault},
			want: []string{
				"2024_01_02_000000_create_posts_table",
				"2024_01_03_000000_add_bio_to_users",
				"2024_01_01_000000_create_users_table",
				"2023_12_31_000000_missing_script",
			},
		},
		{
			name: "clean matches default selection",
			opts: RollbackOptions{Mode: ModeClean},
			want: []string{
				"2024_01_02_000000_create_posts_table",
				"2024_01_03_000000_add_bio_to_users",
				"2024_01_01_000000_create_users_table",
				"2023_12_31_000000_missing_script",
			},
		},
		{
			name: "latest batch in reverse recorded order",
			opts: RollbackOptions{Mode: ModeLatest},
			want: []string{
				"2024_01_03_000000_add_bio_to_users",
				"2024_01_02_000000_create_posts_table",
			},
		},
		{
			name: "steps take the most recent rows of the highest batches",
			opts: RollbackOptions{Mode: ModeLatest, Steps: 3},
			want: []string{
				"2024_01_03_000000_add_bio_to_users",
				"2024_01_02_000000_create_posts_table",
				"2023_12_31_000000_missing_script",
			},
		},
		{
			name: "single step skips a later recorded row of an older batch",
			opts: RollbackOptions{Steps: 1},
			want: []string{"2024_01_03_000000_add_bio_to_users"},
		},
		{
			name: "steps beyond the applied count",
			opts: RollbackOptions{Steps: 10},
			want: []string{
				"2024_01_03_000000_add_bio_to_users",
				"2024_01_02_000000_create_posts_table",
				"2023_12_31_000000_missing_script",
				"2024_01_01_000000_create_users_table",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(fakeState{applied: applied})

			previews, err := r.PreviewRollback(context.Background(), tt.opts)

			require.NoError(t, err)
			assert.Equal(t, tt.want, names(previews))
		})
	}
}

func TestPreviewRollbackActions(t *testing.T) {
	r := newTestRunner(fakeState{applied: []AppliedMigration{
		{Name: "2024_01_03_000000_add_bio_to_users", Batch: 3},
		{Name: "2023_12_31_000000_missing_script", Batch: 3},
	}})

	previews, err := r.PreviewRollback(context.Background(), RollbackOptions{Mode: ModeLatest})

	require.NoError(t, err)
	require.Len(t, previews, 2)
	assert.Equal(t, []extract.Action{extract.MissingScriptAction()}, previews[0].Actions)
	assert.Equal(t, 3, previews[1].Batch)
	assert.Equal(t, []extract.Action{
		{Text: "modify_table: users", Depth: 0, Category: extract.CategoryModifyTable, Table: "users"},
		{Text: "drop_column: bio", Depth: 1, Category: extract.CategoryDropColumn, Column: "bio"},
	}, previews[1].Actions)
}

func TestPreviewRollbackNothingApplied(t *testing.T) {
	r := newTestRunner(fakeState{})

	previews, err := r.PreviewRollback(context.Background(), RollbackOptions{})

	require.NoError(t, err)
	assert.Empty(t, previews)
}

func TestStateStoreFailureIsFatal(t *testing.T) {
	r := newTestRunner(fakeState{err: errors.New("connection refused")})

	_, err := r.PreviewPending(context.Background())
	require.ErrorIs(t, err, ErrStateUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = r.PreviewRollback(context.Background(), RollbackOptions{})
	require.ErrorIs(t, err, ErrStateUnavailable)
}

func TestScriptListingFailure(t *testing.T) {
	listErr := errors.New("no such directory")
	r := New(fakeScripts{listErr: listErr}, fakeScripts{}, fakeState{})

	_, _, err := r.Status(context.Background())

	require.ErrorIs(t, err, listErr)
	assert.NotErrorIs(t, err, ErrStateUnavailable)
}

func TestParseRollbackMode(t *testing.T) {
	for in, want := range map[string]RollbackMode{
		"":        ModeDefault,
		"default": ModeDefault,
		"clean":   ModeClean,
		"latest":  ModeLatest,
	} {
		got, err := ParseRollbackMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRollbackMode("newest")
	assert.Error(t, err)
}

func TestGroupByBatch(t *testing.T) {
	groups := GroupByBatch([]RollbackPreview{
		{Migration: "c", Batch: 3},
		{Migration: "d", Batch: 3},
		{Migration: "a", Batch: 1},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, 3, groups[0].Batch)
	assert.Equal(t, []string{"c", "d"}, names(groups[0].Migrations))
	assert.Equal(t, []string{"a"}, names(groups[1].Migrations))
	assert.Empty(t, GroupByBatch(nil))
}

func TestCheck(t *testing.T) {
	scripts := fakeScripts{
		names: []string{"2024_01_01_000000_create_users_table", "2024_01_02_000000_noop"},
		files: map[string]string{
			"2024_01_01_000000_create_users_table": script(
				"Schema::create('users', function (Blueprint $table) { $table->id(); });",
				"Schema::dropIfExists('users');"),
			"2024_01_02_000000_noop": script("DB::statement('select 1');", ""),
		},
	}
	state := fakeState{applied: []AppliedMigration{
		{Name: "2024_01_01_000000_create_users_table", Batch: 1},
		{Name: "2023_12_31_000000_deleted_script", Batch: 1},
	}}

	report, err := New(scripts, scripts, state).Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Scripts)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, []string{"2023_12_31_000000_deleted_script"}, report.MissingScripts)
	assert.Equal(t, []string{"2024_01_02_000000_noop"}, report.EmptyUp)
	assert.Equal(t, []string{"2024_01_02_000000_noop"}, report.EmptyDown)
	assert.False(t, report.Clean())
}

func TestCheckClean(t *testing.T) {
	r := newTestRunner(fakeState{applied: []AppliedMigration{
		{Name: "2024_01_01_000000_create_users_table", Batch: 1},
	}})

	report, err := r.Check(context.Background())

	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Scripts)
}

func TestCheckStateFailure(t *testing.T) {
	r := newTestRunner(fakeState{err: errors.New("no route to host")})

	_, err := r.Check(context.Background())

	assert.ErrorIs(t, err, ErrStateUnavailable)
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func texts(actions []Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Text)
	}
	return out
}

func TestAnalyzeClosure(t *testing.T) {
	tests := []struct {
		name string
		body string
		dir  Direction
		kind BlockKind
		want []string
	}{
		{
			name: "plain columns",
			body: `$table->string('name', 100); $table->bigInteger('views'); $table->longText('body');`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{
				"add column: name (string)",
				"add column: views (bigInteger)",
				"add column: body (longText)",
			},
		},
		{
			name: "nullable markers",
			body: `$table->uuid('a')->nullable(); $table->date('b')->nullable(false); $table->json('c')->nullable(true);`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{
				"add column: a (uuid) [NULLABLE]",
				"add column: b (date) [NOT NULL]",
				"add column: c (json) [NULLABLE]",
			},
		},
		{
			name: "not null wins over nullable",
			body: `$table->boolean('flag')->nullable()->default(false)->nullable(false);`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{"add column: flag (boolean) [NOT NULL]"},
		},
		{
			name: "forward change",
			body: `$table->text('bio')->nullable()->change();`,
			dir:  Forward,
			kind: AlterTable,
			want: []string{"modify column: bio (text) [NULLABLE]"},
		},
		{
			name: "backward change",
			body: `$table->string('email', 50)->nullable()->change(); $table->integer('age');`,
			dir:  Backward,
			kind: AlterTable,
			want: []string{"modify_column: email (string)"},
		},
		{
			name: "backward ignores plain columns and macros",
			body: `$table->string('email'); $table->id(); $table->rememberToken(); $table->timestamps();`,
			dir:  Backward,
			kind: CreateTable,
			want: []string{},
		},
		{
			name: "alter statements",
			body: `
                $table->dropColumn(['votes', 'avatar']);
                $table->dropColumn('legacy', 'old');
                $table->renameColumn('from', 'to');
                $table->dropForeign('posts_user_id_foreign');
                $table->dropForeign(['user_id']);
                $table->dropIndex('users_email_index');
                $table->dropIndex(['state', 'city']);
            `,
			dir:  Backward,
			kind: AlterTable,
			want: []string{
				"drop_column: votes",
				"drop_column: avatar",
				"drop_column: legacy",
				"drop_column: old",
				"rename_column: from → to",
				"drop_foreign: posts_user_id_foreign",
				"drop_foreign: [user_id]",
				"drop_index: users_email_index",
				"drop_index: [state, city]",
			},
		},
		{
			name: "alter statements ignored in create",
			body: `$table->dropColumn('votes'); $table->string('kept');`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{"add column: kept (string)"},
		},
		{
			name: "macros appended in fixed order",
			body: `$table->timestamps(); $table->string('email'); $table->rememberToken(); $table->id();`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{
				"add column: email (string)",
				"add column: id (bigIncrement)",
				"add column: remember_token (string)",
				"add columns: created_at & updated_at (timestamps)",
			},
		},
		{
			name: "macro with arguments is not a macro",
			body: `$table->id('user_id'); $table->timestamps(6);`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{},
		},
		{
			name: "unrecognized statements",
			body: `$table->foreignId('user_id')->constrained(); $table->primary(['a', 'b']); if ($x) { $y = 1; }`,
			dir:  Forward,
			kind: AlterTable,
			want: []string{},
		},
		{
			name: "computed column name",
			body: `$table->string($name); $table->string(self::COLUMN);`,
			dir:  Forward,
			kind: CreateTable,
			want: []string{},
		},
		{
			name: "arrow function body without semicolon",
			body: `$table->dropColumn('y')`,
			dir:  Forward,
			kind: AlterTable,
			want: []string{"drop_column: y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeClosure(tt.body, tt.dir, tt.kind)
			assert.Equal(t, tt.want, texts(got))
			for _, a := range got {
				assert.Equal(t, 1, a.Depth)
				assert.True(t, a.Category.Valid(), a.Category)
			}
		})
	}
}

func TestAnalyzeClosureCategories(t *testing.T) {
	body := `
        $table->string('a');
        $table->string('b')->change();
        $table->dropColumn('c');
        $table->renameColumn('d', 'e');
        $table->dropForeign('f');
        $table->dropIndex('g');
        $table->id();
    `

	got := AnalyzeClosure(body, Forward, AlterTable)

	var categories []Category
	for _, a := range got {
		categories = append(categories, a.Category)
	}
	assert.Equal(t, []Category{
		CategoryAddColumn,
		CategoryModifyColumn,
		CategoryDropColumn,
		CategoryRenameColumn,
		CategoryDropForeignKey,
		CategoryDropIndex,
		CategoryMacro,
	}, categories)
}

func TestAnalyzeCountsSkippedStatements(t *testing.T) {
	body := `$table->string('a'); $table->foreign('user_id')->references('id')->on('users'); $table->id(); echo 'x';`

	res := analyze(tokenize(body), Forward, CreateTable)

	assert.Len(t, res.actions, 2)
	assert.Equal(t, 2, res.skipped)
}

func TestAnalyzeIgnoresComments(t *testing.T) {
	body := `
        // $table->string('commented');
        /* $table->timestamps(); */
        $table->string('live'); # trailing comment
    `

	assert.Equal(t, []string{"add column: live (string)"}, texts(AnalyzeClosure(body, Forward, CreateTable)))
}

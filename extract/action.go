package extract

// Direction selects which procedure of a migration is analysed.
type Direction string

const (
	Forward  Direction = "up"
	Backward Direction = "down"
)

// BlockKind is the kind of Schema:: call a SchemaBlock was built from.
type BlockKind string

const (
	CreateTable       BlockKind = "create_table"
	AlterTable        BlockKind = "alter_table"
	DropTable         BlockKind = "drop_table"
	DropTableIfExists BlockKind = "drop_table_if_exists"
)

// HasBody reports whether blocks of this kind carry a closure.
func (k BlockKind) HasBody() bool {
	return k == CreateTable || k == AlterTable
}

// SchemaBlock is one Schema:: invocation found in a procedure body.
type SchemaBlock struct {
	Kind  BlockKind
	Table string
	Body  string // closure text, empty for drop kinds
}

// Category classifies an Action.
type Category string

const (
	CategoryCreateTable    Category = "create_table"
	CategoryModifyTable    Category = "modify_table"
	CategoryDropTable      Category = "drop_table"
	CategoryAddColumn      Category = "add_column"
	CategoryModifyColumn   Category = "modify_column"
	CategoryDropColumn     Category = "drop_column"
	CategoryRenameColumn   Category = "rename_column"
	CategoryDropForeignKey Category = "drop_foreign"
	CategoryDropIndex      Category = "drop_index"
	CategoryMacro          Category = "macro"
	CategoryMissingScript  Category = "missing_script"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCreateTable, CategoryModifyTable, CategoryDropTable,
		CategoryAddColumn, CategoryModifyColumn, CategoryDropColumn, CategoryRenameColumn,
		CategoryDropForeignKey, CategoryDropIndex, CategoryMacro, CategoryMissingScript:
		return true
	}
	return false
}

// Action is a single human-readable schema change. Depth 1 actions belong to
// the closest preceding depth 0 action.
//
// Table is set on depth 0 table actions and Column on column adds, changes
// and drops. Neither is serialized.
type Action struct {
	Text     string   `json:"text"`
	Depth    int      `json:"depth"`
	Category Category `json:"category"`
	Table    string   `json:"-"`
	Column   string   `json:"-"`
}

// MissingScriptText is the text of the sentinel action for unreadable scripts.
const MissingScriptText = "File not found"

// MissingScriptAction returns the sentinel reported for a script that cannot be read.
func MissingScriptAction() Action {
	return Action{Text: MissingScriptText, Depth: 0, Category: CategoryMissingScript}
}

// IsMissing reports whether actions is the missing-script sentinel.
func IsMissing(actions []Action) bool {
	return len(actions) == 1 && actions[0].Category == CategoryMissingScript
}

func tableAction(b SchemaBlock) Action {
	switch b.Kind {
	case CreateTable:
		return Action{Text: "create_table: " + b.Table, Category: CategoryCreateTable, Table: b.Table}
	case AlterTable:
		return Action{Text: "modify_table: " + b.Table, Category: CategoryModifyTable, Table: b.Table}
	case DropTableIfExists:
		return Action{Text: "drop_table_if_exists: " + b.Table, Category: CategoryDropTable, Table: b.Table}
	default:
		return Action{Text: "drop_table: " + b.Table, Category: CategoryDropTable, Table: b.Table}
	}
}

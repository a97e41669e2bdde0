package parser

import (
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgls/pgls/diag"
	"github.com/pgls/pgls/span"
)

// Command classifies the top-level kind of a strict-parsed statement.
type Command int

const (
	CommandUnknown Command = iota
	CommandSelect
	CommandInsert
	CommandUpdate
	CommandDelete
	CommandMerge
	CommandDDL
	CommandUtility
)

func (c Command) String() string {
	switch c {
	case CommandSelect:
		return "SELECT"
	case CommandInsert:
		return "INSERT"
	case CommandUpdate:
		return "UPDATE"
	case CommandDelete:
		return "DELETE"
	case CommandMerge:
		return "MERGE"
	case CommandDDL:
		return "DDL"
	case CommandUtility:
		return "UTILITY"
	default:
		return "UNKNOWN"
	}
}

// TableRef names a table a statement reads from or writes to.
type TableRef struct {
	Schema string
	Name   string
	Alias  string
}

// Column is a SELECT target list entry.
type Column struct {
	Expression string
	Alias      string
}

// DDLColumn describes one CREATE TABLE column definition.
type DDLColumn struct {
	Name     string
	Type     string
	Nullable bool
}

// DDLAction describes one DDL effect: CREATE TABLE, DROP ..., an ALTER TABLE
// subcommand, etc.
type DDLAction struct {
	Type       string
	ObjectType string
	ObjectName string
	Schema     string
	Columns    []DDLColumn
	// Concurrent is set for CREATE INDEX CONCURRENTLY / DROP INDEX
	// CONCURRENTLY; consulted by the requireConcurrentIndex lint rule.
	Concurrent bool
}

// StrictStatement is the flat DTO the strict, Postgres-grammar parse
// produces for a single statement, in the spirit of the teacher's
// ParsedQuery IR (entry.go/ddl.go) but sourced from pg_query_go's protobuf
// AST instead of an ANTLR parse tree.
type StrictStatement struct {
	Command       Command
	RawSQL        string
	Tables        []TableRef
	Columns       []Column
	Where         string
	GroupBy       []string
	Having        string
	OrderBy       []string
	Limit         *int64
	Offset        *int64
	InsertColumns []string
	SetClauses    []string
	DDLActions    []DDLAction
	ParamCount    int
}

// ParseStrict runs the real Postgres grammar (via pg_query_go, which wraps
// libpg_query) over a single statement's text. On grammar rejection it
// returns a single "syntax" Error diagnostic, located by parsing libpg_query's
// "at or near ..." cursor marker out of the error message (spec §4.3).
func ParseStrict(text string) (*StrictStatement, *diag.Diagnostic) {
	result, err := pg_query.Parse(text)
	if err != nil {
		sp := locateNearToken(err.Error(), text)
		d := diag.Error("syntax", err.Error(), sp)
		return nil, &d
	}
	if result == nil || len(result.Stmts) == 0 {
		return nil, nil
	}
	return convertRawStmt(result.Stmts[0], text), nil
}

func convertRawStmt(raw *pg_query.RawStmt, text string) *StrictStatement {
	res := &StrictStatement{RawSQL: strings.TrimSpace(text)}
	node := raw.GetStmt()
	if node == nil {
		return res
	}

	switch {
	case node.GetSelectStmt() != nil:
		res.Command = CommandSelect
		populateSelect(res, node.GetSelectStmt(), text)
	case node.GetInsertStmt() != nil:
		res.Command = CommandInsert
		populateInsert(res, node.GetInsertStmt(), text)
	case node.GetUpdateStmt() != nil:
		res.Command = CommandUpdate
		populateUpdate(res, node.GetUpdateStmt(), text)
	case node.GetDeleteStmt() != nil:
		res.Command = CommandDelete
		populateDelete(res, node.GetDeleteStmt(), text)
	case node.GetMergeStmt() != nil:
		res.Command = CommandMerge
	case node.GetCreateStmt() != nil:
		res.Command = CommandDDL
		populateCreateTable(res, node.GetCreateStmt())
	case node.GetDropStmt() != nil:
		res.Command = CommandDDL
		populateDrop(res, node.GetDropStmt())
	case node.GetAlterTableStmt() != nil:
		res.Command = CommandDDL
		populateAlterTable(res, node.GetAlterTableStmt())
	case node.GetIndexStmt() != nil:
		res.Command = CommandDDL
		populateCreateIndex(res, node.GetIndexStmt())
	case node.GetTruncateStmt() != nil:
		res.Command = CommandDDL
		populateTruncate(res, node.GetTruncateStmt())
	default:
		res.Command = CommandUtility
	}

	res.ParamCount = countParams(text)
	return res
}

func populateSelect(res *StrictStatement, s *pg_query.SelectStmt, text string) {
	for _, item := range s.GetFromClause() {
		res.Tables = append(res.Tables, rangeVarRefs(item)...)
	}
	for _, item := range s.GetTargetList() {
		rt := item.GetResTarget()
		if rt == nil {
			continue
		}
		res.Columns = append(res.Columns, Column{
			Expression: exprText(rt.GetVal(), text),
			Alias:      rt.GetName(),
		})
	}
	if w := s.GetWhereClause(); w != nil {
		res.Where = exprText(w, text)
	}
	for _, g := range s.GetGroupClause() {
		res.GroupBy = append(res.GroupBy, exprText(g, text))
	}
	if h := s.GetHavingClause(); h != nil {
		res.Having = exprText(h, text)
	}
	for _, o := range s.GetSortClause() {
		res.OrderBy = append(res.OrderBy, exprText(o, text))
	}
	if lc := s.GetLimitCount(); lc != nil {
		if n, ok := constInt(lc); ok {
			res.Limit = &n
		}
	}
	if lo := s.GetLimitOffset(); lo != nil {
		if n, ok := constInt(lo); ok {
			res.Offset = &n
		}
	}
}

func populateInsert(res *StrictStatement, s *pg_query.InsertStmt, text string) {
	if rv := s.GetRelation(); rv != nil {
		res.Tables = append(res.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
	}
	for _, c := range s.GetCols() {
		if rt := c.GetResTarget(); rt != nil {
			res.InsertColumns = append(res.InsertColumns, rt.GetName())
		}
	}
	if sel := s.GetSelectStmt(); sel != nil {
		if ss := sel.GetSelectStmt(); ss != nil {
			populateSelect(res, ss, text)
		}
	}
}

func populateUpdate(res *StrictStatement, s *pg_query.UpdateStmt, text string) {
	if rv := s.GetRelation(); rv != nil {
		res.Tables = append(res.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
	}
	for _, t := range s.GetTargetList() {
		rt := t.GetResTarget()
		if rt == nil {
			continue
		}
		res.SetClauses = append(res.SetClauses, rt.GetName()+" = "+exprText(rt.GetVal(), text))
	}
	if w := s.GetWhereClause(); w != nil {
		res.Where = exprText(w, text)
	}
}

func populateDelete(res *StrictStatement, s *pg_query.DeleteStmt, text string) {
	if rv := s.GetRelation(); rv != nil {
		res.Tables = append(res.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
	}
	if w := s.GetWhereClause(); w != nil {
		res.Where = exprText(w, text)
	}
}

func populateCreateTable(res *StrictStatement, s *pg_query.CreateStmt) {
	action := DDLAction{Type: "CREATE", ObjectType: "TABLE"}
	if rv := s.GetRelation(); rv != nil {
		action.Schema = rv.GetSchemaname()
		action.ObjectName = rv.GetRelname()
		res.Tables = append(res.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
	}
	for _, elt := range s.GetTableElts() {
		cd := elt.GetColumnDef()
		if cd == nil {
			continue
		}
		col := DDLColumn{Name: cd.GetColname(), Type: typeName(cd.GetTypeName()), Nullable: true}
		for _, c := range cd.GetConstraints() {
			if ct := c.GetConstraint(); ct != nil && ct.GetContype() == pg_query.ConstrType_CONSTR_NOTNULL {
				col.Nullable = false
			}
		}
		action.Columns = append(action.Columns, col)
	}
	res.DDLActions = append(res.DDLActions, action)
}

func populateDrop(res *StrictStatement, s *pg_query.DropStmt) {
	action := DDLAction{Type: "DROP", ObjectType: objectTypeName(s.GetRemoveType()), Concurrent: s.GetConcurrent()}
	for _, obj := range s.GetObjects() {
		action.ObjectName = listToDotted(obj)
	}
	res.DDLActions = append(res.DDLActions, action)
}

func populateAlterTable(res *StrictStatement, s *pg_query.AlterTableStmt) {
	tableName := ""
	schema := ""
	if rv := s.GetRelation(); rv != nil {
		tableName = rv.GetRelname()
		schema = rv.GetSchemaname()
		res.Tables = append(res.Tables, TableRef{Schema: schema, Name: tableName})
	}
	for _, c := range s.GetCmds() {
		cmd := c.GetAlterTableCmd()
		if cmd == nil {
			continue
		}
		action := DDLAction{
			Type:       alterSubcommandName(cmd.GetSubtype()),
			ObjectType: "TABLE",
			ObjectName: tableName,
			Schema:     schema,
		}
		if cd := cmd.GetDef().GetColumnDef(); cd != nil {
			action.Columns = append(action.Columns, DDLColumn{
				Name: cd.GetColname(),
				Type: typeName(cd.GetTypeName()),
			})
		} else if cmd.GetName() != "" {
			action.Columns = append(action.Columns, DDLColumn{Name: cmd.GetName()})
		}
		res.DDLActions = append(res.DDLActions, action)
	}
}

func populateCreateIndex(res *StrictStatement, s *pg_query.IndexStmt) {
	action := DDLAction{Type: "CREATE", ObjectType: "INDEX", ObjectName: s.GetIdxname(), Concurrent: s.GetConcurrent()}
	if rv := s.GetRelation(); rv != nil {
		action.Schema = rv.GetSchemaname()
		res.Tables = append(res.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
	}
	res.DDLActions = append(res.DDLActions, action)
}

func populateTruncate(res *StrictStatement, s *pg_query.TruncateStmt) {
	for _, r := range s.GetRelations() {
		rv := r.GetRangeVar()
		if rv == nil {
			continue
		}
		res.Tables = append(res.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
		res.DDLActions = append(res.DDLActions, DDLAction{Type: "TRUNCATE", ObjectType: "TABLE", ObjectName: rv.GetRelname(), Schema: rv.GetSchemaname()})
	}
}

func rangeVarRefs(node *pg_query.Node) []TableRef {
	if rv := node.GetRangeVar(); rv != nil {
		alias := ""
		if a := rv.GetAlias(); a != nil {
			alias = a.GetAliasname()
		}
		return []TableRef{{Schema: rv.GetSchemaname(), Name: rv.GetRelname(), Alias: alias}}
	}
	if j := node.GetJoinExpr(); j != nil {
		var out []TableRef
		out = append(out, rangeVarRefs(j.GetLarg())...)
		out = append(out, rangeVarRefs(j.GetRarg())...)
		return out
	}
	return nil
}

// exprText renders an expression node back to source text by slicing the
// original query string rather than re-deparsing it, so the user's own
// spelling and spacing are kept. The slice starts at the expression's
// leftmost location (see nodeLocation) and ends at the first top-level ',',
// ';' or unbalanced ')', or at a clause keyword (FROM, WHERE, GROUP BY,
// HAVING, ORDER BY, LIMIT, OFFSET) matched case-insensitively at any byte
// position, including inside identifiers and string literals.
func exprText(node *pg_query.Node, text string) string {
	if node == nil {
		return ""
	}
	loc := int(nodeLocation(node))
	if loc < 0 || loc >= len(text) {
		return ""
	}
	end := loc
	depth := 0
	for end < len(text) {
		c := text[end]
		if c == '(' {
			depth++
		} else if c == ')' {
			if depth == 0 {
				break
			}
			depth--
		} else if depth == 0 && (c == ',' || c == ';') {
			break
		} else if depth == 0 && end > loc && isClauseKeywordBoundary(text, end) {
			break
		}
		end++
	}
	return strings.TrimSpace(text[loc:end])
}

func isClauseKeywordBoundary(text string, pos int) bool {
	for _, kw := range []string{"FROM", "WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT", "OFFSET"} {
		if pos+len(kw) <= len(text) && strings.EqualFold(text[pos:pos+len(kw)], kw) {
			return true
		}
	}
	return false
}

func nodeLocation(node *pg_query.Node) int32 {
	// libpg_query locates a binary operator or AND/OR expression at its
	// operator token and a postfix cast at its "::", after the left operand;
	// leftmost picks whichever of the two locations comes first.
	leftmost := func(own int32, operand *pg_query.Node) int32 {
		if operand == nil {
			return own
		}
		if l := nodeLocation(operand); l >= 0 && (own < 0 || l < own) {
			return l
		}
		return own
	}
	switch n := node.GetNode().(type) {
	case *pg_query.Node_AConst:
		return n.AConst.GetLocation()
	case *pg_query.Node_ColumnRef:
		return n.ColumnRef.GetLocation()
	case *pg_query.Node_AExpr:
		return leftmost(n.AExpr.GetLocation(), n.AExpr.GetLexpr())
	case *pg_query.Node_FuncCall:
		return n.FuncCall.GetLocation()
	case *pg_query.Node_ParamRef:
		return n.ParamRef.GetLocation()
	case *pg_query.Node_TypeCast:
		return leftmost(n.TypeCast.GetLocation(), n.TypeCast.GetArg())
	case *pg_query.Node_BoolExpr:
		if args := n.BoolExpr.GetArgs(); len(args) > 0 {
			return leftmost(n.BoolExpr.GetLocation(), args[0])
		}
		return n.BoolExpr.GetLocation()
	case *pg_query.Node_SubLink:
		return n.SubLink.GetLocation()
	case *pg_query.Node_CaseExpr:
		return n.CaseExpr.GetLocation()
	case *pg_query.Node_SortBy:
		return nodeLocation(n.SortBy.GetNode())
	default:
		return -1
	}
}

func constInt(node *pg_query.Node) (int64, bool) {
	ac := node.GetAConst()
	if ac == nil {
		return 0, false
	}
	if iv := ac.GetIval(); iv != nil {
		return iv.GetIval(), true
	}
	return 0, false
}

func typeName(tn *pg_query.TypeName) string {
	if tn == nil {
		return ""
	}
	var parts []string
	for _, n := range tn.GetNames() {
		if s := n.GetString_(); s != nil {
			parts = append(parts, s.GetSval())
		}
	}
	return strings.Join(parts, ".")
}

func listToDotted(node *pg_query.Node) string {
	l := node.GetList()
	if l == nil {
		if s := node.GetString_(); s != nil {
			return s.GetSval()
		}
		return ""
	}
	var parts []string
	for _, item := range l.GetItems() {
		if s := item.GetString_(); s != nil {
			parts = append(parts, s.GetSval())
		}
	}
	return strings.Join(parts, ".")
}

func objectTypeName(t pg_query.ObjectType) string {
	s := t.String()
	return strings.TrimPrefix(s, "OBJECT_")
}

func alterSubcommandName(t pg_query.AlterTableType) string {
	s := t.String()
	return strings.TrimPrefix(s, "AT_")
}

func countParams(text string) int {
	count := 0
	max := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '$' {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		if j > i+1 {
			if n, err := strconv.Atoi(text[i+1 : j]); err == nil {
				count++
				if n > max {
					max = n
				}
			}
		}
	}
	if max > count {
		return max
	}
	return count
}

// locateNearToken extracts libpg_query's `at or near "X"` cursor marker from
// a syntax error message and locates X's first occurrence in text, matching
// the near-token span derivation spec §4.3 describes.
func locateNearToken(message, text string) *span.Range {
	const marker = "at or near \""
	idx := strings.Index(message, marker)
	if idx < 0 {
		return nil
	}
	rest := message[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return nil
	}
	token := rest[:end]
	if token == "" {
		return nil
	}
	pos := strings.Index(text, token)
	if pos < 0 {
		return nil
	}
	sp := span.New(pos, pos+len(token))
	return &sp
}

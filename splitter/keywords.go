package splitter

// leadingKeywords is the set of keywords that can open a new top-level
// statement, used to drive both the Pratt-style recognizer and the
// unknown-leader boundary rule (spec §4.2 rule 3). See DESIGN.md for the
// reconciliation against the Postgres grammar's top-level production list
// (spec §9 Open Question 1).
var leadingKeywords = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true, "WITH": true,
	"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true,
	"GRANT": true, "REVOKE": true, "COMMENT": true,
	"BEGIN": true, "COMMIT": true, "ROLLBACK": true, "SAVEPOINT": true,
	"SET": true, "SHOW": true, "RESET": true,
	"EXPLAIN": true, "VACUUM": true, "ANALYZE": true, "ANALYSE": true,
	"DO": true, "CALL": true, "MERGE": true, "COPY": true, "LOCK": true,
	"PREPARE": true, "EXECUTE": true, "DEALLOCATE": true,
	"LISTEN": true, "NOTIFY": true, "UNLISTEN": true,
	"REFRESH": true, "CLUSTER": true, "REINDEX": true, "SECURITY": true,
}

// isLeadingKeyword reports whether word (already upper-cased by the caller)
// can start a new statement.
func isLeadingKeyword(word string) bool { return leadingKeywords[word] }

// innerDMLContextTokens are the significant tokens after which an inner
// DML/SELECT statement leader is allowed to appear without terminating the
// enclosing DDL statement (spec §4.2 rule 3): view/table/function bodies
// (AS), rule bodies (ON/ALSO/INSTEAD), trigger bodies (BEFORE/AFTER).
var innerDMLContextTokens = map[string]bool{
	"AS": true, "ON": true, "ALSO": true, "INSTEAD": true,
	"BEFORE": true, "AFTER": true,
}

func allowsInnerDML(precedingWord string) bool {
	return innerDMLContextTokens[precedingWord]
}

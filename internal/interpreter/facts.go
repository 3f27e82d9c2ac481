package interpreter

// VarFacts answers the per-statement variable-use questions the parser
// interface of §6 computes (used_vars/written_vars/declared_vars, each
// map<statement_text, set<…>>). The interpreter only needs set membership,
// so this package works against sets of variable names rather than the
// parser's richer (type, name) declaration pairs.
type VarFacts interface {
	Used(sourceText string) map[string]struct{}
	Written(sourceText string) map[string]struct{}
	Declared(sourceText string) map[string]struct{}
}

// MapFacts is a VarFacts backed by plain maps, for tests and for any caller
// (the completer's phantom evaluation, in particular) that already has the
// per-line facts in hand rather than behind the full parser-interface
// adapter.
type MapFacts struct {
	Uses   map[string]map[string]struct{}
	Writes map[string]map[string]struct{}
	Decls  map[string]map[string]struct{}
}

func (f MapFacts) Used(text string) map[string]struct{}     { return f.Uses[text] }
func (f MapFacts) Written(text string) map[string]struct{}  { return f.Writes[text] }
func (f MapFacts) Declared(text string) map[string]struct{} { return f.Decls[text] }

func contains(set map[string]struct{}, key string) bool {
	if set == nil {
		return false
	}
	_, ok := set[key]
	return ok
}
